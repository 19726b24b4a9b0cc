package preferences

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/common"
	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type fakeCollection struct {
	findDoc any
	findErr error

	replaceFilter any
	replaceDoc    any
	replaceErr    error
}

func (f *fakeCollection) FindOne(ctx context.Context, filter any, opts ...options.Lister[options.FindOneOptions]) *mongo.SingleResult {
	if f.findErr != nil {
		return mongo.NewSingleResultFromDocument(bson.D{}, f.findErr, nil)
	}
	return mongo.NewSingleResultFromDocument(f.findDoc, nil, nil)
}

func (f *fakeCollection) ReplaceOne(ctx context.Context, filter any, replacement any, opts ...options.Lister[options.ReplaceOptions]) (*mongo.UpdateResult, error) {
	f.replaceFilter = filter
	f.replaceDoc = replacement
	if f.replaceErr != nil {
		return nil, f.replaceErr
	}
	return &mongo.UpdateResult{UpsertedCount: 1}, nil
}

func TestMongoGet_StripsBookkeepingFields(t *testing.T) {
	coll := &fakeCollection{findDoc: bson.D{
		{Key: "_id", Value: "u-1"},
		{Key: "kanban", Value: bson.D{{Key: "todoColor", Value: "#000000"}}},
		{Key: "ui", Value: bson.D{{Key: "compactMode", Value: true}}},
		{Key: "updatedAt", Value: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
	}}
	repo := NewMongoRepository(coll)

	got, err := repo.Get(context.Background(), "u-1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"kanban":{"todoColor":"#000000"},"ui":{"compactMode":true}}`, string(got))
}

func TestMongoGet_NotFound(t *testing.T) {
	repo := NewMongoRepository(&fakeCollection{findErr: mongo.ErrNoDocuments})

	_, err := repo.Get(context.Background(), "u-1")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestMongoGet_Error(t *testing.T) {
	repo := NewMongoRepository(&fakeCollection{findErr: errors.New("no primary")})

	_, err := repo.Get(context.Background(), "u-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mongo error")
}

func TestMongoSave_UpsertsWholeDocument(t *testing.T) {
	coll := &fakeCollection{}
	repo := NewMongoRepository(coll)
	now := time.Date(2025, 5, 6, 7, 8, 9, 0, time.UTC)
	repo.now = func() time.Time { return now }

	prefs := models.DefaultPreferences()
	prefs.Theme.CardStyle = "minimal"
	require.NoError(t, repo.Save(context.Background(), "u-1", prefs))

	assert.Equal(t, bson.D{{Key: "_id", Value: "u-1"}}, coll.replaceFilter)
	assert.Equal(t, preferenceDocument{UserID: "u-1", Preferences: prefs, UpdatedAt: now}, coll.replaceDoc)
}

func TestMongoSave_Error(t *testing.T) {
	repo := NewMongoRepository(&fakeCollection{replaceErr: errors.New("write concern")})

	err := repo.Save(context.Background(), "u-1", models.DefaultPreferences())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write concern")
}
