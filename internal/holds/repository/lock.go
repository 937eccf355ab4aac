package repository

import (
	"context"
	"time"

	"guidecal/pkg/config"
	"guidecal/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// HoldLockRepository provides operations for advisory accept locks. The
// collection carries a TTL index on expires_at so crashed holders never leave
// a lock behind for longer than its TTL.
type HoldLockRepository interface {
	Create(ctx context.Context, lock *model.HoldLock) (*model.HoldLock, error)
	Delete(ctx context.Context, lockID string) error
}

type mongoHoldLockRepository struct {
	collection *mongo.Collection
}

func NewHoldLockRepository(cfg *config.Config) HoldLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoHoldLockRepository{
		collection: db.Collection("Hold_locks"),
	}
}

// Create returns a duplicate key error if the lock is already held.
func (r *mongoHoldLockRepository) Create(ctx context.Context, lock *model.HoldLock) (*model.HoldLock, error) {
	lock.CreatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, lock)
	if err != nil {
		return nil, err
	}

	return lock, nil
}

func (r *mongoHoldLockRepository) Delete(ctx context.Context, lockID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": lockID})
	return err
}
