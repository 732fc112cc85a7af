package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Journey groups the geotagged entries of one user. UserName holds the owning
// user's id and is set once at creation. Details mirrors the ids of the
// journeyDetails records whose journeyId points back here.
type Journey struct {
	ID       primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Title    string               `bson:"title" json:"title"`
	UserName primitive.ObjectID   `bson:"userName" json:"userName"`
	Details  []primitive.ObjectID `bson:"details" json:"details"`
}

// JourneyView is a journey with its detail records embedded in place of the
// id list, as search responses return it.
type JourneyView struct {
	ID       primitive.ObjectID `json:"id"`
	Title    string             `json:"title"`
	UserName primitive.ObjectID `json:"userName"`
	Details  []JourneyDetail    `json:"details"`
}
