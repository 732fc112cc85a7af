package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"

	"backend/internal/config"
	"backend/internal/database"
	"backend/internal/handlers"
	"backend/internal/middleware"
	"backend/internal/storage"
)

func main() {
	config.Load()

	client, err := database.Connect(config.AppEnv.MongoURI)
	if err != nil {
		log.Fatal(err)
	}

	db := client.Database(config.AppEnv.DBName)

	log.Println("MongoDB connected to:", db.Name())

	if err := database.EnsureUserIndexes(db); err != nil {
		log.Printf("⚠️ user index warning: %v", err)
	}
	if err := database.EnsureJourneyIndexes(db); err != nil {
		log.Printf("⚠️ journey index warning: %v", err)
	}
	if err := database.EnsureJourneyDetailIndexes(db); err != nil {
		log.Printf("⚠️ journey detail index warning: %v", err)
	}

	uploader, err := storage.NewUploader(storage.Config{
		Region:          config.AppEnv.AWSRegion,
		AccessKeyID:     config.AppEnv.AWSAccessKeyID,
		SecretAccessKey: config.AppEnv.AWSSecretAccessKey,
		BucketName:      config.AppEnv.AWSBucketName,
	})
	if err != nil {
		log.Fatal(err)
	}

	r := gin.Default()

	r.POST("/users", handlers.Register(db, uploader))
	r.POST("/users/login", handlers.Login(db, config.AppEnv.JWTSecret, config.AppEnv.AccessTokenTTL))

	auth := middleware.Auth(config.AppEnv.JWTSecret)

	users := r.Group("/users")
	users.Use(auth)
	{
		users.GET("/:userName", handlers.GetUser(db))
		users.PUT("/:userName", handlers.UpdateUser(db, uploader))
		users.DELETE("/:userName", handlers.DeleteUser(db))
		users.GET("/:userName/search", handlers.SearchJourneys(db))
	}

	journeys := r.Group("/journeys")
	journeys.Use(auth)
	{
		journeys.GET("/:userName", handlers.GetJourneys(db))
		journeys.GET("/:userName/:journeyId", handlers.GetJourney(db))
		journeys.POST("/:userName", handlers.CreateJourney(db))
		journeys.PUT("/:journeyId", handlers.UpdateJourney(db))
		journeys.DELETE("/:userName/:journeyId", handlers.DeleteJourney(db))
	}

	details := r.Group("/details")
	details.Use(auth)
	{
		details.GET("/:journeyId/allDetails", handlers.GetDetails(db))
		details.GET("/:journeyId/:detailId", handlers.GetDetail(db))
		details.POST("/:journeyId/createDetails", handlers.CreateDetail(db, uploader))
		details.PUT("/:journeyId/:detailId/update", handlers.UpdateDetail(db))
		details.DELETE("/:journeyId/:detailId", handlers.DeleteDetail(db))
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	r.Run(":" + port)
}
