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
	BookingRequestCollectionName = "Booking_requests"
)

type BookingRequestRepository interface {
	Create(ctx context.Context, request *model.BookingRequest) error
	FindByID(ctx context.Context, id string) (*model.BookingRequest, error)
	FindByJob(ctx context.Context, jobID string) ([]*model.BookingRequest, error)
	FindPendingByJobAndTarget(ctx context.Context, jobID, targetID string) (*model.BookingRequest, error)
	TransitionStatus(ctx context.Context, id, from, to string, respondedAt time.Time) error
	FindStalePending(ctx context.Context, cutoff time.Time, limit int) ([]*model.BookingRequest, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoBookingRequestRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoBookingRequestRepository(cfg *config.Config) BookingRequestRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRequestRepository{
		cfg:        cfg,
		collection: db.Collection(BookingRequestCollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoBookingRequestRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
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

func (r *mongoBookingRequestRepository) Create(ctx context.Context, request *model.BookingRequest) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	request.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, request)
	if err != nil {
		return fmt.Errorf("failed to create booking request: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		request.ID = oid.Hex()
	}
	return nil
}

func (r *mongoBookingRequestRepository) FindByID(ctx context.Context, id string) (*model.BookingRequest, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", holderrors.ErrInvalidID, id)
	}

	var request model.BookingRequest
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&request)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, holderrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking request: %w", err)
	}

	return &request, nil
}

func (r *mongoBookingRequestRepository) FindByJob(ctx context.Context, jobID string) ([]*model.BookingRequest, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"job_id": jobID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find booking requests: %w", err)
	}
	defer cursor.Close(ctx)

	var requests []*model.BookingRequest
	if err = cursor.All(ctx, &requests); err != nil {
		return nil, fmt.Errorf("failed to decode booking requests: %w", err)
	}

	return requests, nil
}

// FindPendingByJobAndTarget guards the one-pending-request-per-job-per-target
// rule during creation.
func (r *mongoBookingRequestRepository) FindPendingByJobAndTarget(ctx context.Context, jobID, targetID string) (*model.BookingRequest, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"job_id":    jobID,
		"target_id": targetID,
		"status":    model.HoldPending,
	}

	var request model.BookingRequest
	err := r.collection.FindOne(ctx, filter).Decode(&request)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, holderrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find pending booking request: %w", err)
	}

	return &request, nil
}

func (r *mongoBookingRequestRepository) TransitionStatus(ctx context.Context, id, from, to string, respondedAt time.Time) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", holderrors.ErrInvalidID, id)
	}

	update := bson.M{"status": to}
	// Expiry is not a response; a zero respondedAt leaves the field unset.
	if !respondedAt.IsZero() {
		update["responded_at"] = respondedAt
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objectID, "status": from},
		bson.M{"$set": update},
	)
	if err != nil {
		return fmt.Errorf("failed to transition booking request status: %w", err)
	}

	if result.MatchedCount == 0 {
		return holderrors.ErrNoTransition
	}

	return nil
}

func (r *mongoBookingRequestRepository) FindStalePending(ctx context.Context, cutoff time.Time, limit int) ([]*model.BookingRequest, error) {
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
		return nil, fmt.Errorf("failed to find stale booking requests: %w", err)
	}
	defer cursor.Close(ctx)

	var requests []*model.BookingRequest
	if err = cursor.All(ctx, &requests); err != nil {
		return nil, fmt.Errorf("failed to decode stale booking requests: %w", err)
	}

	return requests, nil
}

func (r *mongoBookingRequestRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
