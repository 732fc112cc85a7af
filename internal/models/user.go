package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is the account record. The journeys list is the denormalized set of
// journey ids owned by this user; it is maintained by the journey handlers
// and must stay in sync with the journeys collection.
type User struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	UserName       string               `bson:"userName" json:"userName"`
	PasswordHash   string               `bson:"passwordHash" json:"-"`
	ProfilePicture string               `bson:"profilePicture,omitempty" json:"profilePicture,omitempty"`
	Journeys       []primitive.ObjectID `bson:"journeys" json:"journeys"`
}
