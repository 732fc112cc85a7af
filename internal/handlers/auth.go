package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"backend/internal/models"
	"backend/internal/storage"
)

type LoginRequest struct {
	UserName string `json:"userName" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register creates a user from a multipart form: userName, password and an
// optional profilePicture which is uploaded before the record is inserted.
func Register(db *mongo.Database, uploader *storage.Uploader) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /users"
		defer handlePanic(c, route)

		input, err := parseMultipartUserRequest(c)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}
		if !input.UserNameSet || input.UserName == "" || !input.PasswordSet || input.Password == "" {
			respondWithError(c, http.StatusBadRequest, route, "userName and password are required")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		count, err := db.Collection("users").CountDocuments(ctx, bson.M{"userName": input.UserName})
		if err != nil {
			log.Println("[USER] [ERROR] register db error:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if count > 0 {
			log.Println("[USER] [ERROR] register userName exists:", input.UserName)
			respondWithError(c, http.StatusConflict, route, "username already taken")
			return
		}

		profilePictureURL := ""
		if input.PictureSet {
			profilePictureURL, err = uploader.Upload(ctx, input.Picture)
			if err != nil {
				log.Println("[USER] [ERROR] profile picture upload failed:", err)
				respondWithError(c, http.StatusBadGateway, route, "upload failed")
				return
			}
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Println("[USER] [ERROR] register password hash failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "password hash failed")
			return
		}

		user := models.User{
			UserName:       input.UserName,
			PasswordHash:   string(hash),
			ProfilePicture: profilePictureURL,
			Journeys:       []primitive.ObjectID{},
		}

		if _, err := db.Collection("users").InsertOne(ctx, user); err != nil {
			// The count above races the unique index; a concurrent duplicate
			// lands here and is still a conflict, not a server error.
			if isDuplicateUserName(err) {
				log.Println("[USER] [ERROR] register userName exists:", input.UserName)
				respondWithError(c, http.StatusConflict, route, "username already taken")
				return
			}
			log.Println("[USER] [ERROR] register insert failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Println("[USER] [INFO] user registered:", input.UserName)
		c.JSON(http.StatusCreated, gin.H{"message": "User created successfully."})
	}
}

// Login checks credentials and hands back a signed session token. Unknown
// username and wrong password produce the same response.
func Login(db *mongo.Database, jwtSecret string, accessTTL time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /users/login"
		defer handlePanic(c, route)

		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var user models.User
		err := db.Collection("users").FindOne(ctx, bson.M{"userName": strings.TrimSpace(req.UserName)}).Decode(&user)
		if err != nil {
			if err != mongo.ErrNoDocuments {
				log.Println("[AUTH] [ERROR] login user lookup failed:", err)
				respondWithError(c, http.StatusInternalServerError, route, "db error")
				return
			}
			log.Println("[AUTH] [ERROR] login invalid credentials")
			respondWithError(c, http.StatusUnauthorized, route, "invalid credentials")
			return
		}

		if !verifyPassword(user.PasswordHash, req.Password) {
			log.Println("[AUTH] [ERROR] login invalid credentials")
			respondWithError(c, http.StatusUnauthorized, route, "invalid credentials")
			return
		}

		token, err := IssueToken(user.ID, jwtSecret, accessTTL)
		if err != nil {
			log.Println("[AUTH] [ERROR] login token generation failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "token generation failed")
			return
		}

		log.Println("[AUTH] [INFO] login succeeded:", user.UserName)
		c.JSON(http.StatusOK, gin.H{
			"token": token,
			"user": gin.H{
				"userName":       user.UserName,
				"profilePicture": user.ProfilePicture,
			},
		})
	}
}

// IssueToken signs a session token carrying the user's identity.
func IssueToken(userID primitive.ObjectID, secret string, accessTTL time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"userId": userID.Hex(),
		"exp":    time.Now().Add(accessTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func verifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func isDuplicateUserName(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}
