package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/models"
	"backend/internal/storage"
)

type MultipartDetailInput struct {
	Time           time.Time
	TimeSet        bool
	Location       models.GeoPoint
	LocationSet    bool
	JournalText    string
	JournalTextSet bool
	Photo          *multipart.FileHeader
	PhotoSet       bool
}

type DetailUpdateRequest struct {
	JournalText *string `json:"journalText"`
	Time        *string `json:"time"`
}

func parseMultipartDetailRequest(c *gin.Context) (MultipartDetailInput, error) {
	if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
		log.Println("PARSE ERROR:", err)
		return MultipartDetailInput{}, err
	}

	input := MultipartDetailInput{}

	if value, ok := c.GetPostForm("time"); ok {
		parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(value))
		if err != nil {
			return MultipartDetailInput{}, fmt.Errorf("invalid time: %s", value)
		}
		input.Time = parsed
		input.TimeSet = true
	}

	if value, ok := c.GetPostForm("location"); ok {
		location, err := parseLocation(value)
		if err != nil {
			return MultipartDetailInput{}, err
		}
		input.Location = location
		input.LocationSet = true
	}

	if value, ok := c.GetPostForm("journalText"); ok {
		input.JournalText = strings.TrimSpace(value)
		input.JournalTextSet = true
	}

	file, err := c.FormFile("journalPhoto")
	if err == nil {
		input.Photo = file
		input.PhotoSet = true
	} else if !errors.Is(err, http.ErrMissingFile) && !strings.Contains(err.Error(), "no such file") {
		return MultipartDetailInput{}, err
	}

	return input, nil
}

// parseLocation decodes the GeoJSON point sent as a JSON form field.
// Coordinates arrive [longitude, latitude].
func parseLocation(raw string) (models.GeoPoint, error) {
	var location models.GeoPoint
	if err := json.Unmarshal([]byte(raw), &location); err != nil {
		return models.GeoPoint{}, fmt.Errorf("invalid location: %w", err)
	}
	if location.Type == "" {
		location.Type = "Point"
	}
	if len(location.Coordinates) != 2 {
		return models.GeoPoint{}, fmt.Errorf("location coordinates must be [longitude, latitude]")
	}
	return location, nil
}

// CreateDetail resolves the journey first, uploads the photo if present,
// inserts the detail and records its id in the journey's details list.
func CreateDetail(db *mongo.Database, uploader *storage.Uploader) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /details/:journeyId/createDetails"
		defer handlePanic(c, route)

		journeyID, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("journeyId")))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid journeyId")
			return
		}

		input, err := parseMultipartDetailRequest(c)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}
		if !input.TimeSet || !input.LocationSet || !input.JournalTextSet || input.JournalText == "" {
			respondWithError(c, http.StatusBadRequest, route, "time, location and journalText are required")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if err := db.Collection("journeys").FindOne(ctx, bson.M{"_id": journeyID}).Err(); err != nil {
			if err == mongo.ErrNoDocuments {
				respondWithError(c, http.StatusNotFound, route, "journey not found")
				return
			}
			log.Println("[DETAIL] [ERROR] create detail journey lookup failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		journalPhotoURL := ""
		if input.PhotoSet {
			journalPhotoURL, err = uploader.Upload(ctx, input.Photo)
			if err != nil {
				log.Println("[DETAIL] [ERROR] journal photo upload failed:", err)
				respondWithError(c, http.StatusBadGateway, route, "upload failed")
				return
			}
		}

		detail := models.JourneyDetail{
			Time:         input.Time,
			Location:     input.Location,
			JournalText:  input.JournalText,
			JournalPhoto: journalPhotoURL,
			JourneyID:    journeyID,
		}

		res, err := db.Collection("journeyDetails").InsertOne(ctx, detail)
		if err != nil {
			log.Println("[DETAIL] [ERROR] create detail insert failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		detail.ID = res.InsertedID.(primitive.ObjectID)

		_, err = db.Collection("journeys").UpdateByID(ctx, journeyID, bson.M{
			"$addToSet": bson.M{"details": detail.ID},
		})
		if err != nil {
			log.Println("[DETAIL] [ERROR] create detail journey update failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Println("[DETAIL] [INFO] detail created:", detail.ID.Hex())
		c.JSON(http.StatusCreated, detail)
	}
}

// GetDetails lists a journey's details, projected down to the fields the
// journey page renders.
func GetDetails(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /details/:journeyId/allDetails"
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		journeyID, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("journeyId")))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid journeyId")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		findOptions := options.Find().SetProjection(bson.M{
			"_id":          0,
			"time":         1,
			"location":     1,
			"journalText":  1,
			"journalPhoto": 1,
		})

		cursor, err := db.Collection("journeyDetails").Find(ctx, bson.M{"journeyId": journeyID}, findOptions)
		if err != nil {
			log.Println("[DETAIL] [ERROR] list details failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		details := make([]models.DetailView, 0)
		if err := cursor.All(ctx, &details); err != nil {
			log.Println("[DETAIL] [ERROR] decode details failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		log.Printf("[%s] returning %d details", route, len(details))
		c.JSON(http.StatusOK, details)
	}
}

func GetDetail(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /details/:journeyId/:detailId"
		defer handlePanic(c, route)

		detailID, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("detailId")))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid detailId")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var detail models.JourneyDetail
		err = db.Collection("journeyDetails").FindOne(ctx, bson.M{"_id": detailID}).Decode(&detail)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				respondWithError(c, http.StatusNotFound, route, "journey detail not found")
				return
			}
			log.Println("[DETAIL] [ERROR] get detail failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, detail)
	}
}

func UpdateDetail(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /details/:journeyId/:detailId/update"
		defer handlePanic(c, route)

		detailID, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("detailId")))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid detailId")
			return
		}

		var req DetailUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		updates := bson.M{}
		if req.JournalText != nil {
			updates["journalText"] = strings.TrimSpace(*req.JournalText)
		}
		if req.Time != nil {
			parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(*req.Time))
			if err != nil {
				respondWithError(c, http.StatusBadRequest, route, "invalid time")
				return
			}
			updates["time"] = parsed
		}
		if len(updates) == 0 {
			respondWithError(c, http.StatusBadRequest, route, "nothing to update")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var updated models.JourneyDetail
		err = db.Collection("journeyDetails").FindOneAndUpdate(
			ctx,
			bson.M{"_id": detailID},
			bson.M{"$set": updates},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&updated)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				respondWithError(c, http.StatusNotFound, route, "journey detail not found")
				return
			}
			log.Println("[DETAIL] [ERROR] update detail failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Println("[DETAIL] [INFO] detail updated:", detailID.Hex())
		c.JSON(http.StatusOK, updated)
	}
}

// DeleteDetail removes the detail and pulls its id from the owning journey's
// details list.
func DeleteDetail(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /details/:journeyId/:detailId"
		defer handlePanic(c, route)

		detailID, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("detailId")))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid detailId")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var detail models.JourneyDetail
		err = db.Collection("journeyDetails").FindOneAndDelete(ctx, bson.M{"_id": detailID}).Decode(&detail)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				respondWithError(c, http.StatusNotFound, route, "journey detail not found")
				return
			}
			log.Println("[DETAIL] [ERROR] delete detail failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		res, err := db.Collection("journeys").UpdateByID(ctx, detail.JourneyID, bson.M{
			"$pull": bson.M{"details": detailID},
		})
		if err != nil {
			log.Println("[DETAIL] [ERROR] delete detail journey update failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if res.MatchedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "journey update failed")
			return
		}

		log.Println("[DETAIL] [INFO] detail deleted:", detailID.Hex())
		c.JSON(http.StatusOK, gin.H{"message": "Journey detail deleted successfully."})
	}
}
