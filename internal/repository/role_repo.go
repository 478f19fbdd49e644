package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fidelzky-bot/projectmanagerapp/internal/models"
)

// RoleRepo reads and writes project role assignments. It backs the
// resolver's RoleStore.
type RoleRepo struct {
	col *mongo.Collection
}

func NewRoleRepo(db *mongo.Database) *RoleRepo {
	return &RoleRepo{col: db.Collection("project_user_roles")}
}

func (r *RoleRepo) ListRoles(ctx context.Context, projectID string) ([]models.RoleAssignment, error) {
	cur, err := r.col.Find(ctx, bson.M{"project_id": projectID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.RoleAssignment
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *RoleRepo) GetRole(ctx context.Context, projectID, userID string) (*models.RoleAssignment, error) {
	var a models.RoleAssignment
	err := r.col.FindOne(ctx, bson.M{"project_id": projectID, "user_id": userID}).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// SetRole upserts the unique (project, user) assignment.
func (r *RoleRepo) SetRole(ctx context.Context, a models.RoleAssignment) (*models.RoleAssignment, error) {
	filter := bson.M{"project_id": a.ProjectID, "user_id": a.UserID}
	update := bson.M{"$set": bson.M{"role": a.Role, "notify_all": a.NotifyAll}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var out models.RoleAssignment
	if err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *RoleRepo) RemoveRole(ctx context.Context, projectID, userID string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"project_id": projectID, "user_id": userID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
