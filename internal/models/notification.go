package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification is one persisted fan-out record, addressed to a single user.
// Created server-side at dispatch time; only the Read flag ever changes.
type Notification struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	User       string             `bson:"user" json:"user"`
	Sender     string             `bson:"sender" json:"sender"`
	Type       string             `bson:"type" json:"type"`
	Message    string             `bson:"message" json:"message"`
	EntityID   string             `bson:"entity_id,omitempty" json:"entityId,omitempty"`
	EntityType string             `bson:"entity_type,omitempty" json:"entityType,omitempty"`
	Read       bool               `bson:"read" json:"read"`
	CreatedAt  time.Time          `bson:"created_at" json:"createdAt"`

	// Optional denormalized display fields, attached per action type.
	TaskTitle   string `bson:"task_title,omitempty" json:"taskTitle,omitempty"`
	Title       string `bson:"title,omitempty" json:"title,omitempty"`
	ProjectName string `bson:"project_name,omitempty" json:"projectName,omitempty"`
	NewRole     string `bson:"new_role,omitempty" json:"newRole,omitempty"`
}
