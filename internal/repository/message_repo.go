package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fidelzky-bot/projectmanagerapp/internal/models"
)

type MessageRepo struct {
	col *mongo.Collection
}

func NewMessageRepo(db *mongo.Database) *MessageRepo {
	return &MessageRepo{col: db.Collection("messages")}
}

func (r *MessageRepo) Create(ctx context.Context, m *models.Message) (*models.Message, error) {
	m.CreatedAt = time.Now().UTC()
	if m.ReadBy == nil {
		m.ReadBy = []string{m.Sender}
	}
	res, err := r.col.InsertOne(ctx, m)
	if err != nil {
		return nil, err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		m.ID = oid
	}
	return m, nil
}

func (r *MessageRepo) ListByProject(ctx context.Context, projectID string, limit int64) ([]models.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts = opts.SetLimit(limit)
	}
	cur, err := r.col.Find(ctx, bson.M{"project_id": projectID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.Message{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	// chronological order for display
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// MarkRead records that a user has seen every message in a project.
func (r *MessageRepo) MarkRead(ctx context.Context, projectID, userID string) (int64, error) {
	res, err := r.col.UpdateMany(ctx,
		bson.M{"project_id": projectID, "read_by": bson.M{"$ne": userID}},
		bson.M{"$addToSet": bson.M{"read_by": userID}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// UnreadCount counts messages in a project the user has not seen and did
// not send.
func (r *MessageRepo) UnreadCount(ctx context.Context, projectID, userID string) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{
		"project_id": projectID,
		"sender":     bson.M{"$ne": userID},
		"read_by":    bson.M{"$ne": userID},
	})
}
