package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	availrepo "guidecal/internal/availability/repository"
	holderrors "guidecal/internal/holds/errors"
	"guidecal/internal/holds/repository"
	"guidecal/internal/holds/validator"
	"guidecal/pkg/calendar"
	"guidecal/pkg/config"
	apperrors "guidecal/pkg/errors"
	"guidecal/pkg/model"
	"guidecal/pkg/notify"
	"guidecal/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/mongo"
)

// BookingRequestService runs the job-keyed variant of the hold lifecycle.
// Same state machine minus cancellation; acceptance writes the same blocked
// slot over the range.
type BookingRequestService interface {
	Request(ctx context.Context, request *model.BookingRequest) error
	GetByID(ctx context.Context, id string) (*model.BookingRequest, error)
	ListForJob(ctx context.Context, jobID string) ([]*model.BookingRequest, error)
	Respond(ctx context.Context, id, actorID, actorRole string, decision *model.HoldDecision) (*model.BookingRequest, error)
	ExpireStale(ctx context.Context) ([]*model.BookingRequest, error)
}

type bookingRequestService struct {
	repo      repository.BookingRequestRepository
	lockRepo  repository.HoldLockRepository
	slotRepo  availrepo.SlotRepository
	validator *validator.HoldValidator
	notifier  notify.Notifier
	cfg       *config.Config
}

func NewBookingRequestService(
	repo repository.BookingRequestRepository,
	lockRepo repository.HoldLockRepository,
	slotRepo availrepo.SlotRepository,
	validator *validator.HoldValidator,
	notifier notify.Notifier,
	cfg *config.Config,
) BookingRequestService {
	return &bookingRequestService{
		repo:      repo,
		lockRepo:  lockRepo,
		slotRepo:  slotRepo,
		validator: validator,
		notifier:  notifier,
		cfg:       cfg,
	}
}

func (s *bookingRequestService) Request(ctx context.Context, request *model.BookingRequest) error {
	request.Status = model.HoldPending
	request.RespondedAt = nil
	request.StartDate, _ = calendar.DayWindow(request.StartDate)
	request.EndDate, _ = calendar.DayWindow(request.EndDate)
	request.JobID = sanitizer.SanitizeID(request.JobID)
	request.TargetID = sanitizer.SanitizeID(request.TargetID)
	request.RequesterID = sanitizer.SanitizeID(request.RequesterID)
	request.Message = sanitizer.SanitizeMessage(request.Message)

	if err := s.validator.ValidateBookingRequest(request); err != nil {
		s.cfg.Log.Warn("Booking request validation failed", "error", err)
		return apperrors.Validation("Booking request validation failed", map[string]any{"error": err.Error()})
	}

	existing, err := s.repo.FindPendingByJobAndTarget(ctx, request.JobID, request.TargetID)
	if err != nil && !errors.Is(err, holderrors.ErrNotFound) {
		s.cfg.Log.Error("Failed to check pending booking requests", "job_id", request.JobID, "error", err)
		return apperrors.Internal("Failed to check pending booking requests", err)
	}
	if existing != nil && !existing.StaleAt(time.Now(), s.cfg.HoldResponseWindow) {
		return apperrors.Conflict("A pending booking request for this job and provider already exists")
	}

	blocked, err := s.targetRangeBlocked(ctx, request)
	if err != nil {
		return err
	}
	if blocked {
		return apperrors.Conflict("Requested dates overlap a blocked period on the provider's calendar")
	}

	if err := s.repo.Create(ctx, request); err != nil {
		s.cfg.Log.Error("Failed to create booking request", "job_id", request.JobID, "error", err)
		return apperrors.Internal("Failed to create booking request", err)
	}

	s.notifyRequest(ctx, notify.EventBookingRequested, request)

	s.cfg.Log.Info("Booking request created",
		"id", request.ID,
		"job_id", request.JobID,
		"target_id", request.TargetID,
		"start_date", request.StartDate,
		"end_date", request.EndDate,
	)
	return nil
}

func (s *bookingRequestService) GetByID(ctx context.Context, id string) (*model.BookingRequest, error) {
	request, err := s.loadRequest(ctx, id)
	if err != nil {
		return nil, err
	}

	s.expireIfStale(ctx, request)
	return request, nil
}

func (s *bookingRequestService) ListForJob(ctx context.Context, jobID string) ([]*model.BookingRequest, error) {
	if jobID == "" {
		return nil, apperrors.InvalidInput("Job ID cannot be empty")
	}

	requests, err := s.repo.FindByJob(ctx, jobID)
	if err != nil {
		s.cfg.Log.Error("Failed to list booking requests", "job_id", jobID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve booking requests", err)
	}

	now := time.Now()
	for _, r := range requests {
		if r.StaleAt(now, s.cfg.HoldResponseWindow) {
			r.Status = model.HoldExpired
		}
	}

	return requests, nil
}

func (s *bookingRequestService) Respond(ctx context.Context, id, actorID, actorRole string, decision *model.HoldDecision) (*model.BookingRequest, error) {
	if err := s.validator.ValidateDecision(decision); err != nil {
		return nil, apperrors.Validation("Invalid decision", map[string]any{"error": err.Error()})
	}

	request, err := s.loadRequest(ctx, id)
	if err != nil {
		return nil, err
	}

	if actorID != request.TargetID || (actorRole != "" && actorRole != request.TargetRole) {
		return nil, apperrors.Forbidden("Only the targeted provider may respond to this booking request")
	}

	now := time.Now()
	if request.Status == model.HoldExpired {
		return nil, apperrors.HoldExpired("The response window for this booking request has closed")
	}
	if request.IsTerminal() {
		return nil, apperrors.AlreadyResolved(fmt.Sprintf("Booking request is already %s", request.Status))
	}
	if request.StaleAt(now, s.cfg.HoldResponseWindow) {
		s.expireIfStale(ctx, request)
		return nil, apperrors.HoldExpired("The response window for this booking request has closed")
	}

	if decision.Decision == model.DecisionDeclined {
		if err := s.transition(ctx, request, model.HoldDeclined, now); err != nil {
			return nil, err
		}
		s.notifyRequest(ctx, notify.EventBookingDeclined, request)
		s.cfg.Log.Info("Booking request declined", "id", request.ID, "job_id", request.JobID)
		return request, nil
	}

	if err := s.accept(ctx, request, now); err != nil {
		return nil, err
	}

	s.notifyRequest(ctx, notify.EventBookingAccepted, request)
	s.cfg.Log.Info("Booking request accepted",
		"id", request.ID,
		"job_id", request.JobID,
		"target_id", request.TargetID,
	)
	return request, nil
}

func (s *bookingRequestService) ExpireStale(ctx context.Context) ([]*model.BookingRequest, error) {
	now := time.Now()
	cutoff := now.Add(-s.cfg.HoldResponseWindow)

	stale, err := s.repo.FindStalePending(ctx, cutoff, sweepBatchLimit)
	if err != nil {
		s.cfg.Log.Error("Failed to find stale booking requests", "error", err)
		return nil, apperrors.Internal("Failed to find stale booking requests", err)
	}

	var expired []*model.BookingRequest
	for _, request := range stale {
		err := s.repo.TransitionStatus(ctx, request.ID, model.HoldPending, model.HoldExpired, time.Time{})
		if err != nil {
			if errors.Is(err, holderrors.ErrNoTransition) {
				continue
			}
			s.cfg.Log.Error("Failed to expire booking request", "id", request.ID, "error", err)
			return nil, apperrors.Internal("Failed to expire stale booking requests", err)
		}
		request.Status = model.HoldExpired
		expired = append(expired, request)
	}

	s.cfg.Log.Info("Booking request expiry sweep completed", "candidates", len(stale), "expired", len(expired))
	return expired, nil
}

// --- Helpers ---

func (s *bookingRequestService) loadRequest(ctx context.Context, id string) (*model.BookingRequest, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking request ID cannot be empty")
	}

	request, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, holderrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking request", id)
		}
		if errors.Is(err, holderrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking request ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve booking request", err)
	}

	return request, nil
}

func (s *bookingRequestService) expireIfStale(ctx context.Context, request *model.BookingRequest) {
	now := time.Now()
	if !request.StaleAt(now, s.cfg.HoldResponseWindow) {
		return
	}

	err := s.repo.TransitionStatus(ctx, request.ID, model.HoldPending, model.HoldExpired, time.Time{})
	if err != nil && !errors.Is(err, holderrors.ErrNoTransition) {
		s.cfg.Log.Warn("Failed to persist booking request expiry", "id", request.ID, "error", err)
	}
	request.Status = model.HoldExpired
	request.RespondedAt = nil
}

func (s *bookingRequestService) transition(ctx context.Context, request *model.BookingRequest, to string, now time.Time) error {
	err := s.repo.TransitionStatus(ctx, request.ID, model.HoldPending, to, now)
	if err != nil {
		if errors.Is(err, holderrors.ErrNoTransition) {
			return apperrors.AlreadyResolved("Booking request was resolved by another request")
		}
		s.cfg.Log.Error("Failed to transition booking request", "id", request.ID, "to", to, "error", err)
		return apperrors.Internal("Failed to update booking request", err)
	}

	request.Status = to
	request.RespondedAt = &now
	return nil
}

func (s *bookingRequestService) accept(ctx context.Context, request *model.BookingRequest, now time.Time) error {
	lockID := fmt.Sprintf("hold_lock_%s_%s", request.TargetRole, request.TargetID)
	lock := &model.HoldLock{
		ID:        lockID,
		ExpiresAt: time.Now().Add(s.cfg.HoldLockTTL),
	}

	if _, err := s.lockRepo.Create(ctx, lock); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.Conflict("Another response for this provider is in flight. Please try again.")
		}
		return apperrors.Internal("Failed to acquire hold lock", err)
	}
	defer func() {
		// Release must outlive a caller disconnect or the lock lingers
		// until its TTL.
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.WriteTimeout)
		defer cancel()
		if releaseErr := s.lockRepo.Delete(releaseCtx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release hold lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		blocked, err := s.targetRangeBlocked(sessCtx, request)
		if err != nil {
			return err
		}
		if blocked {
			return apperrors.Conflict("The requested dates are no longer free; the booking request remains pending")
		}

		if err := s.repo.TransitionStatus(sessCtx, request.ID, model.HoldPending, model.HoldAccepted, now); err != nil {
			if errors.Is(err, holderrors.ErrNoTransition) {
				return apperrors.AlreadyResolved("Booking request was resolved by another request")
			}
			return apperrors.Internal("Failed to accept booking request", err)
		}

		return s.writeBlockedSlot(sessCtx, request)
	})
	if err != nil {
		return err
	}

	request.Status = model.HoldAccepted
	request.RespondedAt = &now
	return nil
}

func (s *bookingRequestService) writeBlockedSlot(ctx context.Context, request *model.BookingRequest) error {
	rangeStart, rangeEnd := calendar.RangeWindow(request.StartDate, request.EndDate)
	slot := &model.AvailabilitySlot{
		OwnerID:   request.TargetID,
		OwnerRole: request.TargetRole,
		StartsAt:  rangeStart,
		EndsAt:    rangeEnd,
		Status:    model.SlotBlocked,
	}

	err := s.slotRepo.Create(ctx, slot)
	if err != nil {
		s.cfg.Log.Warn("Blocked slot write failed, retrying", "request_id", request.ID, "error", err)
		err = s.slotRepo.Create(ctx, slot)
	}
	if err != nil {
		s.cfg.Log.Error("Blocked slot write failed after retry",
			"request_id", request.ID,
			"owner_id", request.TargetID,
			"starts_at", rangeStart,
			"ends_at", rangeEnd,
			"error", err,
		)
		return apperrors.PartialFailure("Accepted booking request without blocking the calendar", err, map[string]any{
			"request_id": request.ID,
			"starts_at":  rangeStart,
			"ends_at":    rangeEnd,
		})
	}

	return nil
}

func (s *bookingRequestService) targetRangeBlocked(ctx context.Context, request *model.BookingRequest) (bool, error) {
	rangeStart, rangeEnd := calendar.RangeWindow(request.StartDate, request.EndDate)
	slots, err := s.slotRepo.FindByOwnerInRange(ctx, request.TargetID, request.TargetRole, rangeStart, rangeEnd)
	if err != nil {
		s.cfg.Log.Error("Failed to check blocked ranges", "target_id", request.TargetID, "error", err)
		return false, apperrors.Internal("Failed to check calendar conflicts", err)
	}
	return calendar.RangeHasBlockingConflict(request.StartDate, request.EndDate, slots), nil
}

func (s *bookingRequestService) notifyRequest(ctx context.Context, eventType string, request *model.BookingRequest) {
	if err := s.notifier.BookingRequestEvent(ctx, eventType, request); err != nil {
		s.cfg.Log.Warn("Booking request notification failed", "event_type", eventType, "request_id", request.ID, "error", err)
	}
}
