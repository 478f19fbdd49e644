package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Task struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	ProjectID   string             `bson:"project_id" json:"projectId"`
	Status      string             `bson:"status,omitempty" json:"status,omitempty"`
	Priority    string             `bson:"priority,omitempty" json:"priority,omitempty"`
	AssignedTo  string             `bson:"assigned_to,omitempty" json:"assignedTo,omitempty"`
	DueDate     *time.Time         `bson:"due_date,omitempty" json:"dueDate,omitempty"`
	Attachments []string           `bson:"attachments,omitempty" json:"attachments,omitempty"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updatedAt"`
}

type Comment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TaskID    string             `bson:"task_id" json:"taskId"`
	Author    string             `bson:"author" json:"author"`
	Text      string             `bson:"text" json:"text"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}

// Message is a project-scoped chat message. ReadBy tracks which users have
// seen it; this read state is separate from notification read state.
type Message struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProjectID string             `bson:"project_id" json:"projectId"`
	Sender    string             `bson:"sender" json:"sender"`
	Content   string             `bson:"content" json:"content"`
	ReadBy    []string           `bson:"read_by,omitempty" json:"readBy,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}

// Attachment is file metadata only; the blob itself lives in external
// storage addressed by URL.
type Attachment struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TaskID     string             `bson:"task_id" json:"taskId"`
	FileName   string             `bson:"file_name" json:"fileName"`
	URL        string             `bson:"url" json:"url"`
	MimeType   string             `bson:"mime_type,omitempty" json:"mimeType,omitempty"`
	SizeBytes  int64              `bson:"size_bytes,omitempty" json:"sizeBytes,omitempty"`
	UploadedBy string             `bson:"uploaded_by" json:"uploadedBy"`
	CreatedAt  time.Time          `bson:"created_at" json:"createdAt"`
}
