package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GeoPoint is a GeoJSON point. Coordinates are [longitude, latitude] — the
// reverse of the usual "lat, lng" reading order; clients convert.
type GeoPoint struct {
	Type        string    `bson:"type" json:"type"`
	Coordinates []float64 `bson:"coordinates" json:"coordinates"`
}

// JourneyDetail is one geotagged journal entry within a journey.
type JourneyDetail struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Time         time.Time          `bson:"time" json:"time"`
	Location     GeoPoint           `bson:"location" json:"location"`
	JournalText  string             `bson:"journalText" json:"journalText"`
	JournalPhoto string             `bson:"journalPhoto,omitempty" json:"journalPhoto,omitempty"`
	JourneyID    primitive.ObjectID `bson:"journeyId" json:"journeyId"`
}

// DetailView is the listing projection: exactly the fields the journey page
// renders, no internal ids.
type DetailView struct {
	Time         time.Time `bson:"time" json:"time"`
	Location     GeoPoint  `bson:"location" json:"location"`
	JournalText  string    `bson:"journalText" json:"journalText"`
	JournalPhoto string    `bson:"journalPhoto,omitempty" json:"journalPhoto,omitempty"`
}
