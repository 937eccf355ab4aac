package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	holderrors "guidecal/internal/holds/errors"
	"guidecal/pkg/config"
	mongotx "guidecal/pkg/db/mongo"
	"guidecal/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	HoldCollectionName = "Availability_holds"
)

// HoldFilter narrows list queries. Zero-value fields are ignored.
type HoldFilter struct {
	HoldeeID      string
	HoldeeType    string
	RequesterID   string
	RequesterType string
	Status        string
}

type HoldRepository interface {
	Create(ctx context.Context, hold *model.AvailabilityHold) error
	FindByID(ctx context.Context, id string) (*model.AvailabilityHold, error)
	Find(ctx context.Context, filter HoldFilter, limit int, offset int64) ([]*model.AvailabilityHold, error)
	Count(ctx context.Context, filter HoldFilter) (int64, error)
	FindPendingInRange(ctx context.Context, holdeeID, holdeeType string, startDate, endDate time.Time) ([]*model.AvailabilityHold, error)
	TransitionStatus(ctx context.Context, id, from, to, notes string, respondedAt time.Time) error
	FindStalePending(ctx context.Context, cutoff time.Time, limit int) ([]*model.AvailabilityHold, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoHoldRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoHoldRepository(cfg *config.Config) HoldRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoHoldRepository{
		cfg:        cfg,
		collection: db.Collection(HoldCollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoHoldRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

func (r *mongoHoldRepository) Create(ctx context.Context, hold *model.AvailabilityHold) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	hold.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, hold)
	if err != nil {
		return fmt.Errorf("failed to create hold: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		hold.ID = oid.Hex()
	}
	return nil
}

func (r *mongoHoldRepository) FindByID(ctx context.Context, id string) (*model.AvailabilityHold, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", holderrors.ErrInvalidID, id)
	}

	var hold model.AvailabilityHold
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&hold)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, holderrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find hold: %w", err)
	}

	return &hold, nil
}

func (r *mongoHoldRepository) Find(ctx context.Context, filter HoldFilter, limit int, offset int64) ([]*model.AvailabilityHold, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(offset).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filterToBSON(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find holds: %w", err)
	}
	defer cursor.Close(ctx)

	var holds []*model.AvailabilityHold
	if err = cursor.All(ctx, &holds); err != nil {
		return nil, fmt.Errorf("failed to decode holds: %w", err)
	}

	return holds, nil
}

func (r *mongoHoldRepository) Count(ctx context.Context, filter HoldFilter) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, filterToBSON(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count holds: %w", err)
	}
	return count, nil
}

// FindPendingInRange returns pending holds whose inclusive date range touches
// [startDate, endDate]. Dates are UTC midnight instants.
func (r *mongoHoldRepository) FindPendingInRange(ctx context.Context, holdeeID, holdeeType string, startDate, endDate time.Time) ([]*model.AvailabilityHold, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"holdee_id":   holdeeID,
		"holdee_type": holdeeType,
		"status":      model.HoldPending,
		"start_date":  bson.M{"$lte": endDate},
		"end_date":    bson.M{"$gte": startDate},
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find holds in range: %w", err)
	}
	defer cursor.Close(ctx)

	var holds []*model.AvailabilityHold
	if err = cursor.All(ctx, &holds); err != nil {
		return nil, fmt.Errorf("failed to decode holds: %w", err)
	}

	return holds, nil
}

// TransitionStatus moves a hold from one status to another in a single
// conditional update. Returns ErrNoTransition when the hold is not in the
// expected source status, so racing responders lose cleanly.
func (r *mongoHoldRepository) TransitionStatus(ctx context.Context, id, from, to, notes string, respondedAt time.Time) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", holderrors.ErrInvalidID, id)
	}

	update := bson.M{
		"status": to,
	}
	// Expiry is not a response; a zero respondedAt leaves the field unset.
	if !respondedAt.IsZero() {
		update["responded_at"] = respondedAt
	}
	if notes != "" {
		update["response_notes"] = notes
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objectID, "status": from},
		bson.M{"$set": update},
	)
	if err != nil {
		return fmt.Errorf("failed to transition hold status: %w", err)
	}

	if result.MatchedCount == 0 {
		return holderrors.ErrNoTransition
	}

	return nil
}

func (r *mongoHoldRepository) FindStalePending(ctx context.Context, cutoff time.Time, limit int) ([]*model.AvailabilityHold, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"status":     model.HoldPending,
		"created_at": bson.M{"$lt": cutoff},
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find stale holds: %w", err)
	}
	defer cursor.Close(ctx)

	var holds []*model.AvailabilityHold
	if err = cursor.All(ctx, &holds); err != nil {
		return nil, fmt.Errorf("failed to decode stale holds: %w", err)
	}

	return holds, nil
}

func (r *mongoHoldRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}

func filterToBSON(filter HoldFilter) bson.M {
	query := bson.M{}
	if filter.HoldeeID != "" {
		query["holdee_id"] = filter.HoldeeID
	}
	if filter.HoldeeType != "" {
		query["holdee_type"] = filter.HoldeeType
	}
	if filter.RequesterID != "" {
		query["requester_id"] = filter.RequesterID
	}
	if filter.RequesterType != "" {
		query["requester_type"] = filter.RequesterType
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	return query
}
