package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/fidelzky-bot/projectmanagerapp/internal/models"
)

// AttachmentRepo stores file metadata only; blobs live in external storage.
type AttachmentRepo struct {
	col *mongo.Collection
}

func NewAttachmentRepo(db *mongo.Database) *AttachmentRepo {
	return &AttachmentRepo{col: db.Collection("attachments")}
}

func (r *AttachmentRepo) Create(ctx context.Context, a *models.Attachment) (*models.Attachment, error) {
	a.CreatedAt = time.Now().UTC()
	res, err := r.col.InsertOne(ctx, a)
	if err != nil {
		return nil, err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		a.ID = oid
	}
	return a, nil
}

func (r *AttachmentRepo) ListByTask(ctx context.Context, taskID string) ([]models.Attachment, error) {
	cur, err := r.col.Find(ctx, bson.M{"task_id": taskID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.Attachment{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *AttachmentRepo) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
