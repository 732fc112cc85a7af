package handlers

import (
	"context"
	"log"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"backend/internal/models"
)

// keywordFilter builds the case-insensitive matcher for a search keyword.
// The keyword is quoted so regex metacharacters match literally.
func keywordFilter(keyword string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(keyword), Options: "i"}
}

// unionJourneyIDs merges two id sets, deduplicated, first-seen order.
func unionJourneyIDs(a, b []primitive.ObjectID) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]struct{}, len(a)+len(b))
	union := make([]primitive.ObjectID, 0, len(a)+len(b))
	for _, id := range a {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		union = append(union, id)
	}
	for _, id := range b {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		union = append(union, id)
	}
	return union
}

// populateJourneys embeds each journey's detail records in place of its id
// list. Journeys without a matching detail get an empty list, not null.
func populateJourneys(journeys []models.Journey, details []models.JourneyDetail) []models.JourneyView {
	byJourney := make(map[primitive.ObjectID][]models.JourneyDetail, len(journeys))
	for _, detail := range details {
		byJourney[detail.JourneyID] = append(byJourney[detail.JourneyID], detail)
	}

	views := make([]models.JourneyView, 0, len(journeys))
	for _, journey := range journeys {
		embedded := byJourney[journey.ID]
		if embedded == nil {
			embedded = []models.JourneyDetail{}
		}
		views = append(views, models.JourneyView{
			ID:       journey.ID,
			Title:    journey.Title,
			UserName: journey.UserName,
			Details:  embedded,
		})
	}
	return views
}

// SearchJourneys returns the user's journeys whose title matches the keyword,
// united with the journeys owning a detail whose journal text matches, each
// with its detail records embedded. Two linear passes over the user's
// journeys and details; fine at this scale.
func SearchJourneys(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /users/:userName/search"
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		keyword := c.Query("keyword")
		filter := keywordFilter(keyword)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var user models.User
		err := db.Collection("users").FindOne(ctx, bson.M{"userName": c.Param("userName")}).Decode(&user)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				respondWithError(c, http.StatusNotFound, route, "user not found")
				return
			}
			log.Println("[SEARCH] [ERROR] user lookup failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		// Pass one: every journey the user owns. Title matches land in
		// titleMatches, all ids feed the detail scan.
		cursor, err := db.Collection("journeys").Find(ctx, bson.M{"userName": user.ID})
		if err != nil {
			log.Println("[SEARCH] [ERROR] journey scan failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		var journeys []models.Journey
		if err := cursor.All(ctx, &journeys); err != nil {
			log.Println("[SEARCH] [ERROR] decode journeys failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		titleRegex := regexp.MustCompile("(?i)" + filter.Pattern)
		titleMatches := make([]primitive.ObjectID, 0)
		allIDs := make([]primitive.ObjectID, 0, len(journeys))
		for _, journey := range journeys {
			allIDs = append(allIDs, journey.ID)
			if titleRegex.MatchString(journey.Title) {
				titleMatches = append(titleMatches, journey.ID)
			}
		}

		// Pass two: details under those journeys whose text matches; collect
		// their parent journey ids.
		detailCursor, err := db.Collection("journeyDetails").Find(ctx, bson.M{
			"journeyId":   bson.M{"$in": allIDs},
			"journalText": filter,
		})
		if err != nil {
			log.Println("[SEARCH] [ERROR] detail scan failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		var details []models.JourneyDetail
		if err := detailCursor.All(ctx, &details); err != nil {
			log.Println("[SEARCH] [ERROR] decode details failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		detailMatches := make([]primitive.ObjectID, 0, len(details))
		for _, detail := range details {
			detailMatches = append(detailMatches, detail.JourneyID)
		}

		qualified := unionJourneyIDs(titleMatches, detailMatches)
		if len(qualified) == 0 {
			c.JSON(http.StatusOK, []models.JourneyView{})
			return
		}

		resultCursor, err := db.Collection("journeys").Find(ctx, bson.M{"_id": bson.M{"$in": qualified}})
		if err != nil {
			log.Println("[SEARCH] [ERROR] result fetch failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		results := make([]models.Journey, 0, len(qualified))
		if err := resultCursor.All(ctx, &results); err != nil {
			log.Println("[SEARCH] [ERROR] decode results failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		// Populate: the qualified journeys go back with their detail records
		// embedded, not bare ids.
		embedCursor, err := db.Collection("journeyDetails").Find(ctx, bson.M{
			"journeyId": bson.M{"$in": qualified},
		})
		if err != nil {
			log.Println("[SEARCH] [ERROR] detail fetch failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		var embedded []models.JourneyDetail
		if err := embedCursor.All(ctx, &embedded); err != nil {
			log.Println("[SEARCH] [ERROR] decode embedded details failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		log.Printf("[%s] keyword %q matched %d journeys", route, keyword, len(results))
		c.JSON(http.StatusOK, populateJourneys(results, embedded))
	}
}
