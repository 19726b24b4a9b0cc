package preferences

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/common"
	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/server/models"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// CollectionName is the MongoDB collection holding one document per user.
const CollectionName = "preferences"

// Collection is the subset of *mongo.Collection used by MongoRepository.
type Collection interface {
	FindOne(ctx context.Context, filter any, opts ...options.Lister[options.FindOneOptions]) *mongo.SingleResult
	ReplaceOne(ctx context.Context, filter any, replacement any, opts ...options.Lister[options.ReplaceOptions]) (*mongo.UpdateResult, error)
}

type preferenceDocument struct {
	UserID             string `bson:"_id"`
	models.Preferences `bson:",inline"`
	UpdatedAt          time.Time `bson:"updatedAt"`
}

// MongoRepository keeps preferences in their own collection, keyed by user id.
type MongoRepository struct {
	coll Collection
	now  func() time.Time
}

// NewMongoRepository constructs a repository over coll.
func NewMongoRepository(coll Collection) *MongoRepository {
	return &MongoRepository{coll: coll, now: time.Now}
}

// Get returns the stored document as relaxed extended JSON, without the
// bookkeeping fields.
func (r *MongoRepository) Get(ctx context.Context, userID string) ([]byte, error) {
	raw, err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: userID}}).Raw()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("mongo error: %w", err)
	}

	elems, err := raw.Elements()
	if err != nil {
		return nil, fmt.Errorf("mongo error: %w", err)
	}
	doc := bson.D{}
	for _, e := range elems {
		switch e.Key() {
		case "_id", "updatedAt":
			continue
		}
		doc = append(doc, bson.E{Key: e.Key(), Value: e.Value()})
	}

	b, err := bson.MarshalExtJSON(doc, false, false)
	if err != nil {
		return nil, fmt.Errorf("encode preferences: %w", err)
	}
	return b, nil
}

// Save replaces (or creates) the user's document.
func (r *MongoRepository) Save(ctx context.Context, userID string, prefs models.Preferences) error {
	doc := preferenceDocument{UserID: userID, Preferences: prefs, UpdatedAt: r.now().UTC()}
	_, err := r.coll.ReplaceOne(ctx, bson.D{{Key: "_id", Value: userID}}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongo error: %w", err)
	}
	return nil
}
