package store

import (
	"context"
	"fmt"
	"time"

	"github.com/avvvet/tambola-services/internal/db"
	"github.com/avvvet/tambola-services/internal/gamesvc/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const resultsCollection = "game_results"

type MongoGameStore struct {
	db   *mongo.Database
	coll *mongo.Collection
}

func NewMongoGameStore(database *mongo.Database) *MongoGameStore {
	return &MongoGameStore{db: database, coll: database.Collection(resultsCollection)}
}

// EnsureIndexes expires archived results after retention.
func (s *MongoGameStore) EnsureIndexes(ctx context.Context, retention time.Duration) error {
	return db.CreateTTLIndexForCollection(ctx, s.db, resultsCollection, "ended_at", retention)
}

func (s *MongoGameStore) SaveResult(ctx context.Context, r models.GameResult) error {
	if _, err := s.coll.InsertOne(ctx, r); err != nil {
		return fmt.Errorf("failed to save result for game %s: %w", r.GameID, err)
	}
	return nil
}

func (s *MongoGameStore) Recent(ctx context.Context, limit int) ([]models.GameResult, error) {
	opts := options.Find().SetSort(bson.D{{Key: "ended_at", Value: -1}}).SetLimit(int64(limit))
	cur, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer cur.Close(ctx)

	results := []models.GameResult{}
	if err := cur.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode results: %w", err)
	}
	return results, nil
}
