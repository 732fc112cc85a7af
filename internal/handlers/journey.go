package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/models"
)

type JourneyRequest struct {
	Title string `json:"title" binding:"required"`
}

// CreateJourney inserts a journey owned by the named user and records its id
// in the user's journeys list. The two writes are not transactional; the
// journeys list stays rebuildable from the userName index.
func CreateJourney(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /journeys/:userName"
		defer handlePanic(c, route)

		var req JourneyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var user models.User
		err := db.Collection("users").FindOne(ctx, bson.M{"userName": c.Param("userName")}).Decode(&user)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				respondWithError(c, http.StatusNotFound, route, "user not found")
				return
			}
			log.Println("[JOURNEY] [ERROR] create journey user lookup failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		journey := models.Journey{
			Title:    strings.TrimSpace(req.Title),
			UserName: user.ID,
			Details:  []primitive.ObjectID{},
		}

		res, err := db.Collection("journeys").InsertOne(ctx, journey)
		if err != nil {
			log.Println("[JOURNEY] [ERROR] create journey insert failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		journey.ID = res.InsertedID.(primitive.ObjectID)

		_, err = db.Collection("users").UpdateByID(ctx, user.ID, bson.M{
			"$addToSet": bson.M{"journeys": journey.ID},
		})
		if err != nil {
			log.Println("[JOURNEY] [ERROR] create journey user update failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Println("[JOURNEY] [INFO] journey created:", journey.ID.Hex())
		c.JSON(http.StatusCreated, journey)
	}
}

// GetJourneys lists the named user's journeys via the owner index, not the
// user's reference list.
func GetJourneys(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /journeys/:userName"
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var user models.User
		err := db.Collection("users").FindOne(ctx, bson.M{"userName": c.Param("userName")}).Decode(&user)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				respondWithError(c, http.StatusNotFound, route, "user not found")
				return
			}
			log.Println("[JOURNEY] [ERROR] list journeys user lookup failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		cursor, err := db.Collection("journeys").Find(ctx, bson.M{"userName": user.ID})
		if err != nil {
			log.Println("[JOURNEY] [ERROR] list journeys failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		journeys := make([]models.Journey, 0)
		if err := cursor.All(ctx, &journeys); err != nil {
			log.Println("[JOURNEY] [ERROR] decode journeys failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		log.Printf("[%s] returning %d journeys", route, len(journeys))
		c.JSON(http.StatusOK, journeys)
	}
}

func GetJourney(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /journeys/:userName/:journeyId"
		defer handlePanic(c, route)

		journeyID, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("journeyId")))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid journeyId")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var journey models.Journey
		err = db.Collection("journeys").FindOne(ctx, bson.M{"_id": journeyID}).Decode(&journey)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				respondWithError(c, http.StatusNotFound, route, "journey not found")
				return
			}
			log.Println("[JOURNEY] [ERROR] get journey failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, journey)
	}
}

func UpdateJourney(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /journeys/:journeyId"
		defer handlePanic(c, route)

		journeyID, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("journeyId")))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid journeyId")
			return
		}

		var req JourneyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var updated models.Journey
		err = db.Collection("journeys").FindOneAndUpdate(
			ctx,
			bson.M{"_id": journeyID},
			bson.M{"$set": bson.M{"title": strings.TrimSpace(req.Title)}},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&updated)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				respondWithError(c, http.StatusNotFound, route, "journey not found")
				return
			}
			log.Println("[JOURNEY] [ERROR] update journey failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Println("[JOURNEY] [INFO] journey updated:", journeyID.Hex())
		c.JSON(http.StatusOK, updated)
	}
}

// DeleteJourney removes the journey and pulls its id from the recorded
// owner's journeys list. The owner comes from the journey record itself, so
// the list of the true owner is cleaned even when another authenticated user
// issues the delete. Details under the journey are not cascade-deleted.
func DeleteJourney(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /journeys/:userName/:journeyId"
		defer handlePanic(c, route)

		journeyID, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("journeyId")))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid journeyId")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var journey models.Journey
		err = db.Collection("journeys").FindOneAndDelete(ctx, bson.M{"_id": journeyID}).Decode(&journey)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				respondWithError(c, http.StatusNotFound, route, "journey not found")
				return
			}
			log.Println("[JOURNEY] [ERROR] delete journey failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		res, err := db.Collection("users").UpdateByID(ctx, journey.UserName, bson.M{
			"$pull": bson.M{"journeys": journeyID},
		})
		if err != nil {
			log.Println("[JOURNEY] [ERROR] delete journey owner update failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if res.MatchedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "user update failed")
			return
		}

		log.Println("[JOURNEY] [INFO] journey deleted:", journeyID.Hex())
		c.JSON(http.StatusOK, gin.H{"message": "Journey deleted successfully."})
	}
}
