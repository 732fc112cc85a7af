package handlers

import (
	"context"
	"errors"
	"log"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"

	"backend/internal/models"
	"backend/internal/storage"
)

type MultipartUserInput struct {
	UserName    string
	UserNameSet bool
	Password    string
	PasswordSet bool
	Picture     *multipart.FileHeader
	PictureSet  bool
}

func parseMultipartUserRequest(c *gin.Context) (MultipartUserInput, error) {
	if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
		log.Println("PARSE ERROR:", err)
		return MultipartUserInput{}, err
	}

	input := MultipartUserInput{}

	if value, ok := c.GetPostForm("userName"); ok {
		input.UserName = strings.TrimSpace(value)
		input.UserNameSet = true
	}

	if value, ok := c.GetPostForm("password"); ok {
		input.Password = strings.TrimSpace(value)
		input.PasswordSet = true
	}

	file, err := c.FormFile("profilePicture")
	if err == nil {
		input.Picture = file
		input.PictureSet = true
	} else if !errors.Is(err, http.ErrMissingFile) && !strings.Contains(err.Error(), "no such file") {
		return MultipartUserInput{}, err
	}

	return input, nil
}

func GetUser(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /users/:userName"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var user models.User
		err := db.Collection("users").FindOne(ctx, bson.M{"userName": c.Param("userName")}).Decode(&user)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				respondWithError(c, http.StatusNotFound, route, "user not found")
				return
			}
			log.Println("[USER] [ERROR] get user failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, user)
	}
}

// UpdateUser applies a partial update: password and/or profile picture. A new
// picture replaces the stored URL; the previous blob is not reclaimed.
func UpdateUser(db *mongo.Database, uploader *storage.Uploader) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /users/:userName"
		defer handlePanic(c, route)

		input, err := parseMultipartUserRequest(c)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		updates := bson.M{}

		if input.PasswordSet && input.Password != "" {
			hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
			if err != nil {
				log.Println("[USER] [ERROR] update password hash failed:", err)
				respondWithError(c, http.StatusInternalServerError, route, "password hash failed")
				return
			}
			updates["passwordHash"] = string(hash)
		}

		if input.PictureSet {
			url, err := uploader.Upload(ctx, input.Picture)
			if err != nil {
				log.Println("[USER] [ERROR] profile picture upload failed:", err)
				respondWithError(c, http.StatusBadGateway, route, "upload failed")
				return
			}
			updates["profilePicture"] = url
		}

		if len(updates) == 0 {
			respondWithError(c, http.StatusBadRequest, route, "nothing to update")
			return
		}

		var updated models.User
		err = db.Collection("users").FindOneAndUpdate(
			ctx,
			bson.M{"userName": c.Param("userName")},
			bson.M{"$set": updates},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&updated)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				respondWithError(c, http.StatusNotFound, route, "user not found")
				return
			}
			log.Println("[USER] [ERROR] update user failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Println("[USER] [INFO] user updated:", updated.UserName)
		c.JSON(http.StatusOK, updated)
	}
}

// DeleteUser removes the account record only. Owned journeys and details are
// left in place, reachable by id (matches the original's non-cascading
// delete).
func DeleteUser(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /users/:userName"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("users").DeleteOne(ctx, bson.M{"userName": c.Param("userName")})
		if err != nil {
			log.Println("[USER] [ERROR] delete user failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if res.DeletedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "user not found")
			return
		}

		log.Println("[USER] [INFO] user deleted:", c.Param("userName"))
		c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully."})
	}
}
