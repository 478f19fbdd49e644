package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fidelzky-bot/projectmanagerapp/internal/models"
)

// SettingsRepo backs the resolver's PreferenceStore. The three historical
// settings shapes live in three collections; for a given project at most
// one of them should hold a record, and each getter returns nil when its
// shape is absent rather than inventing defaults.
type SettingsRepo struct {
	matrices   *mongo.Collection
	allowLists *mongo.Collection
	userPrefs  *mongo.Collection
}

func NewSettingsRepo(db *mongo.Database) *SettingsRepo {
	return &SettingsRepo{
		matrices:   db.Collection("notification_role_matrices"),
		allowLists: db.Collection("notification_settings"),
		userPrefs:  db.Collection("user_notification_settings"),
	}
}

func (r *SettingsRepo) GetRoleMatrix(ctx context.Context, projectID string) (models.RoleMatrix, error) {
	var doc models.RoleMatrixSettings
	err := r.matrices.FindOne(ctx, bson.M{"project_id": projectID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc.Roles, nil
}

func (r *SettingsRepo) GetUserAllowLists(ctx context.Context, projectID string) (*models.AllowLists, error) {
	var doc models.AllowLists
	err := r.allowLists.FindOne(ctx, bson.M{"project_id": projectID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *SettingsRepo) GetUserPreference(ctx context.Context, userID, projectID string) (*models.UserPreference, error) {
	var doc models.UserPreference
	err := r.userPrefs.FindOne(ctx, bson.M{"user_id": userID, "project_id": projectID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// GetOrCreateAllowLists returns the project's allow-list settings, creating
// an empty record when none exists. Used by the settings endpoints, not by
// the resolver (which must observe absence).
func (r *SettingsRepo) GetOrCreateAllowLists(ctx context.Context, projectID string) (*models.AllowLists, error) {
	existing, err := r.GetUserAllowLists(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	doc := &models.AllowLists{
		ProjectID:     projectID,
		StatusUpdates: []string{},
		TasksAdded:    []string{},
		Messages:      []string{},
		Comments:      []string{},
	}
	if _, err := r.allowLists.InsertOne(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// UpsertAllowLists replaces the project's allow-list settings.
func (r *SettingsRepo) UpsertAllowLists(ctx context.Context, lists *models.AllowLists) (*models.AllowLists, error) {
	filter := bson.M{"project_id": lists.ProjectID}
	update := bson.M{"$set": bson.M{
		"status_updates": lists.StatusUpdates,
		"tasks_added":    lists.TasksAdded,
		"messages":       lists.Messages,
		"comments":       lists.Comments,
	}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var out models.AllowLists
	if err := r.allowLists.FindOneAndUpdate(ctx, filter, update, opts).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpsertUserPreference replaces one user's per-project preference record.
func (r *SettingsRepo) UpsertUserPreference(ctx context.Context, pref *models.UserPreference) (*models.UserPreference, error) {
	filter := bson.M{"user_id": pref.UserID, "project_id": pref.ProjectID}
	update := bson.M{"$set": bson.M{
		"status_updates":          pref.StatusUpdates,
		"tasks_added":             pref.TasksAdded,
		"messages":                pref.Messages,
		"comments":                pref.Comments,
		"team_member_preferences": pref.TeamMemberPreferences,
	}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var out models.UserPreference
	if err := r.userPrefs.FindOneAndUpdate(ctx, filter, update, opts).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}
