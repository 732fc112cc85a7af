package database

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func EnsureUserIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("users").Indexes()

	userNameIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "userName", Value: 1}},
		Options: options.Index().
			SetName("userName_unique").
			SetUnique(true),
	}

	log.Println("EnsureUserIndexes: creating userName_unique index")
	_, err := indexes.CreateOne(ctx, userNameIndex)
	if err != nil {
		log.Println("EnsureUserIndexes: userName index error:", err)
		return err
	}
	log.Println("EnsureUserIndexes: userName_unique index created")
	return nil
}

func EnsureJourneyIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("journeys").Indexes()

	ownerIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "userName", Value: 1}},
		Options: options.Index().SetName("userName_index"),
	}

	log.Println("EnsureJourneyIndexes: creating userName_index index")
	_, err := indexes.CreateOne(ctx, ownerIndex)
	if err != nil {
		log.Println("EnsureJourneyIndexes: userName index error:", err)
		return err
	}
	log.Println("EnsureJourneyIndexes: userName_index index created")
	return nil
}

func EnsureJourneyDetailIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("journeyDetails").Indexes()

	journeyIDIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "journeyId", Value: 1}},
		Options: options.Index().SetName("journeyId_index"),
	}

	log.Println("EnsureJourneyDetailIndexes: creating journeyId_index index")
	if _, err := indexes.CreateOne(ctx, journeyIDIndex); err != nil {
		log.Println("EnsureJourneyDetailIndexes: journeyId index error:", err)
		return err
	}

	locationIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "location", Value: "2dsphere"}},
		Options: options.Index().SetName("location_2dsphere"),
	}

	log.Println("EnsureJourneyDetailIndexes: creating location_2dsphere index")
	if _, err := indexes.CreateOne(ctx, locationIndex); err != nil {
		log.Println("EnsureJourneyDetailIndexes: location index error:", err)
		return err
	}
	log.Println("EnsureJourneyDetailIndexes: indexes created")
	return nil
}
