package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"onsamuse/internal/model"
)

// HistoryRepo handles MongoDB operations for archived rounds
type HistoryRepo interface {
	Save(ctx context.Context, record *model.RoundRecord) error
	List(ctx context.Context, game string, limit int64) ([]*model.RoundRecord, error)
}

type historyRepo struct {
	rounds *mongo.Collection
}

// NewHistoryRepo creates a new history repository
func NewHistoryRepo(db *mongo.Database) HistoryRepo {
	return &historyRepo{
		rounds: db.Collection("history"),
	}
}

// EnsureIndexes creates the index List relies on
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("history").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "game", Value: 1}, {Key: "finishedAt", Value: -1}},
	})
	return err
}

func (r *historyRepo) Save(ctx context.Context, record *model.RoundRecord) error {
	opts := options.Replace().SetUpsert(true)
	_, err := r.rounds.ReplaceOne(ctx, bson.M{"_id": record.ID}, record, opts)
	return err
}

func (r *historyRepo) List(ctx context.Context, game string, limit int64) ([]*model.RoundRecord, error) {
	filter := bson.M{}
	if game != "" {
		filter["game"] = game
	}
	opts := options.Find().SetSort(bson.D{{Key: "finishedAt", Value: -1}}).SetLimit(limit)

	cursor, err := r.rounds.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	records := []*model.RoundRecord{}
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}
