package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Team struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Members   []string           `bson:"members" json:"members"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}

type Project struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	TeamID    string             `bson:"team_id,omitempty" json:"teamId,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}

type User struct {
	ID    primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name  string             `bson:"name" json:"name"`
	Email string             `bson:"email" json:"email"`
	// External identity provider subject; identity sync lives outside this
	// service and upserts by this key.
	ExternalID string    `bson:"external_id,omitempty" json:"externalId,omitempty"`
	CreatedAt  time.Time `bson:"created_at" json:"createdAt"`
}
