package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
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

// sweepBatchLimit caps how many stale holds one expiry run touches. The sweep
// is idempotent, so anything beyond the cap is picked up next run.
const sweepBatchLimit = 500

type HoldService interface {
	Request(ctx context.Context, hold *model.AvailabilityHold) error
	GetByID(ctx context.Context, id string) (*model.AvailabilityHold, error)
	List(ctx context.Context, filter repository.HoldFilter, limit int, offset int64) ([]*model.AvailabilityHold, int64, error)
	Respond(ctx context.Context, id, actorID, actorRole string, decision *model.HoldDecision) (*model.AvailabilityHold, error)
	Cancel(ctx context.Context, id, actorID string) error
	ExpireStale(ctx context.Context) ([]*model.AvailabilityHold, error)
	CalendarView(ctx context.Context, ownerID, ownerRole string, from, to time.Time) ([]calendar.DayCell, error)
}

type holdService struct {
	repo      repository.HoldRepository
	lockRepo  repository.HoldLockRepository
	slotRepo  availrepo.SlotRepository
	validator *validator.HoldValidator
	notifier  notify.Notifier
	cfg       *config.Config
}

func NewHoldService(
	repo repository.HoldRepository,
	lockRepo repository.HoldLockRepository,
	slotRepo availrepo.SlotRepository,
	validator *validator.HoldValidator,
	notifier notify.Notifier,
	cfg *config.Config,
) HoldService {
	return &holdService{
		repo:      repo,
		lockRepo:  lockRepo,
		slotRepo:  slotRepo,
		validator: validator,
		notifier:  notifier,
		cfg:       cfg,
	}
}

func (s *holdService) Request(ctx context.Context, hold *model.AvailabilityHold) error {
	s.applyDefaults(hold)
	s.sanitize(hold)
	if err := s.validator.Validate(hold); err != nil {
		s.cfg.Log.Warn("Hold validation failed", "error", err)
		return apperrors.Validation("Hold validation failed", map[string]any{"error": err.Error()})
	}

	blocked, err := s.rangeBlocked(ctx, hold.HoldeeID, hold.HoldeeType, hold.StartDate, hold.EndDate)
	if err != nil {
		return err
	}
	if blocked {
		return apperrors.Conflict("Requested dates overlap a blocked period on the provider's calendar")
	}

	if err := s.repo.Create(ctx, hold); err != nil {
		s.cfg.Log.Error("Failed to create hold", "holdee_id", hold.HoldeeID, "error", err)
		return apperrors.Internal("Failed to create hold", err)
	}

	s.notifyHold(ctx, notify.EventHoldRequested, hold)

	s.cfg.Log.Info("Hold requested",
		"id", hold.ID,
		"holdee_id", hold.HoldeeID,
		"requester_id", hold.RequesterID,
		"start_date", hold.StartDate,
		"end_date", hold.EndDate,
	)
	return nil
}

func (s *holdService) GetByID(ctx context.Context, id string) (*model.AvailabilityHold, error) {
	hold, err := s.loadHold(ctx, id)
	if err != nil {
		return nil, err
	}

	s.expireIfStale(ctx, hold)
	return hold, nil
}

func (s *holdService) List(ctx context.Context, filter repository.HoldFilter, limit int, offset int64) ([]*model.AvailabilityHold, int64, error) {
	if filter.HoldeeID == "" && filter.RequesterID == "" {
		return nil, 0, apperrors.InvalidInput("Either holdee_id or requester_id is required")
	}

	var count int64
	var holds []*model.AvailabilityHold
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, filter)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count holds", "error", errCount)
			errCount = apperrors.Internal("Failed to count holds", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		holds, errFind = s.repo.Find(ctx, filter, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list holds", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve holds", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	// Present stale pending holds as expired without waiting for the sweep.
	now := time.Now()
	for _, h := range holds {
		if h.StaleAt(now, s.cfg.HoldResponseWindow) {
			h.Status = model.HoldExpired
		}
	}

	return holds, count, nil
}

func (s *holdService) Respond(ctx context.Context, id, actorID, actorRole string, decision *model.HoldDecision) (*model.AvailabilityHold, error) {
	if err := s.validator.ValidateDecision(decision); err != nil {
		return nil, apperrors.Validation("Invalid decision", map[string]any{"error": err.Error()})
	}
	notes := sanitizer.SanitizeMessage(decision.Notes)

	hold, err := s.loadHold(ctx, id)
	if err != nil {
		return nil, err
	}

	if actorID != hold.HoldeeID || (actorRole != "" && actorRole != hold.HoldeeType) {
		return nil, apperrors.Forbidden("Only the holdee may respond to this hold")
	}

	now := time.Now()
	if err := s.checkRespondable(ctx, hold, now); err != nil {
		return nil, err
	}

	if decision.Decision == model.DecisionDeclined {
		if err := s.transition(ctx, hold, model.HoldDeclined, notes, now); err != nil {
			return nil, err
		}
		s.notifyHold(ctx, notify.EventHoldDeclined, hold)
		s.cfg.Log.Info("Hold declined", "id", hold.ID, "holdee_id", hold.HoldeeID)
		return hold, nil
	}

	if err := s.accept(ctx, hold, notes, now); err != nil {
		return nil, err
	}

	s.notifyHold(ctx, notify.EventHoldAccepted, hold)
	s.cfg.Log.Info("Hold accepted",
		"id", hold.ID,
		"holdee_id", hold.HoldeeID,
		"start_date", hold.StartDate,
		"end_date", hold.EndDate,
	)
	return hold, nil
}

func (s *holdService) Cancel(ctx context.Context, id, actorID string) error {
	hold, err := s.loadHold(ctx, id)
	if err != nil {
		return err
	}

	if actorID != hold.RequesterID {
		return apperrors.Forbidden("Only the requester may cancel this hold")
	}

	now := time.Now()
	if err := s.checkRespondable(ctx, hold, now); err != nil {
		return err
	}

	if err := s.transition(ctx, hold, model.HoldCancelled, "", now); err != nil {
		return err
	}

	s.notifyHold(ctx, notify.EventHoldCancelled, hold)
	s.cfg.Log.Info("Hold cancelled", "id", hold.ID, "requester_id", hold.RequesterID)
	return nil
}

// ExpireStale transitions every pending hold past its response window to
// expired and returns the holds it flipped. Safe to run concurrently: the
// conditional transition makes racing sweeps no-ops.
func (s *holdService) ExpireStale(ctx context.Context) ([]*model.AvailabilityHold, error) {
	now := time.Now()
	cutoff := now.Add(-s.cfg.HoldResponseWindow)

	stale, err := s.repo.FindStalePending(ctx, cutoff, sweepBatchLimit)
	if err != nil {
		s.cfg.Log.Error("Failed to find stale holds", "error", err)
		return nil, apperrors.Internal("Failed to find stale holds", err)
	}

	var expired []*model.AvailabilityHold
	for _, hold := range stale {
		err := s.repo.TransitionStatus(ctx, hold.ID, model.HoldPending, model.HoldExpired, "", time.Time{})
		if err != nil {
			if errors.Is(err, holderrors.ErrNoTransition) {
				continue
			}
			s.cfg.Log.Error("Failed to expire hold", "id", hold.ID, "error", err)
			return nil, apperrors.Internal("Failed to expire stale holds", err)
		}
		hold.Status = model.HoldExpired
		expired = append(expired, hold)
	}

	s.cfg.Log.Info("Hold expiry sweep completed", "candidates", len(stale), "expired", len(expired))
	return expired, nil
}

func (s *holdService) CalendarView(ctx context.Context, ownerID, ownerRole string, from, to time.Time) ([]calendar.DayCell, error) {
	if ownerID == "" {
		return nil, apperrors.InvalidInput("Owner ID cannot be empty")
	}
	if !model.IsProviderRole(ownerRole) {
		return nil, apperrors.InvalidInput("Owner role must be 'guide' or 'transport'")
	}
	if to.Before(from) {
		return nil, apperrors.InvalidInput("Window end must not be before window start")
	}

	rangeStart, rangeEnd := calendar.RangeWindow(from, to)

	slots, err := s.slotRepo.FindByOwnerInRange(ctx, ownerID, ownerRole, rangeStart, rangeEnd)
	if err != nil {
		s.cfg.Log.Error("Failed to load slots for calendar", "owner_id", ownerID, "error", err)
		return nil, apperrors.Internal("Failed to load calendar", err)
	}

	fromDay, _ := calendar.DayWindow(from)
	toDay, _ := calendar.DayWindow(to)
	holds, err := s.repo.FindPendingInRange(ctx, ownerID, ownerRole, fromDay, toDay)
	if err != nil {
		s.cfg.Log.Error("Failed to load holds for calendar", "owner_id", ownerID, "error", err)
		return nil, apperrors.Internal("Failed to load calendar", err)
	}

	return calendar.Window(from, to, slots, holds, time.Now(), s.cfg.HoldResponseWindow), nil
}

// --- Helpers ---

func (s *holdService) loadHold(ctx context.Context, id string) (*model.AvailabilityHold, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Hold ID cannot be empty")
	}

	hold, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, holderrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Hold", id)
		}
		if errors.Is(err, holderrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid hold ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve hold", err)
	}

	return hold, nil
}

// checkRespondable rejects transitions against terminal or stale holds. A
// stale pending hold is persisted as expired on the way out.
func (s *holdService) checkRespondable(ctx context.Context, hold *model.AvailabilityHold, now time.Time) error {
	if hold.Status == model.HoldExpired {
		return apperrors.HoldExpired("The response window for this hold has closed")
	}
	if hold.IsTerminal() {
		return apperrors.AlreadyResolved(fmt.Sprintf("Hold is already %s", hold.Status))
	}
	if hold.StaleAt(now, s.cfg.HoldResponseWindow) {
		s.expireIfStale(ctx, hold)
		return apperrors.HoldExpired("The response window for this hold has closed")
	}
	return nil
}

// expireIfStale persists the derived expired state. Best effort: losing the
// race to another writer just means someone else already resolved it.
func (s *holdService) expireIfStale(ctx context.Context, hold *model.AvailabilityHold) {
	now := time.Now()
	if !hold.StaleAt(now, s.cfg.HoldResponseWindow) {
		return
	}

	err := s.repo.TransitionStatus(ctx, hold.ID, model.HoldPending, model.HoldExpired, "", time.Time{})
	if err != nil && !errors.Is(err, holderrors.ErrNoTransition) {
		s.cfg.Log.Warn("Failed to persist hold expiry", "id", hold.ID, "error", err)
	}
	hold.Status = model.HoldExpired
	hold.RespondedAt = nil
}

func (s *holdService) transition(ctx context.Context, hold *model.AvailabilityHold, to, notes string, now time.Time) error {
	err := s.repo.TransitionStatus(ctx, hold.ID, model.HoldPending, to, notes, now)
	if err != nil {
		if errors.Is(err, holderrors.ErrNoTransition) {
			return apperrors.AlreadyResolved("Hold was resolved by another request")
		}
		s.cfg.Log.Error("Failed to transition hold", "id", hold.ID, "to", to, "error", err)
		return apperrors.Internal("Failed to update hold", err)
	}

	hold.Status = to
	hold.ResponseNotes = notes
	hold.RespondedAt = &now
	return nil
}

// accept runs the conflict re-check, the pending→accepted transition, and the
// blocked slot write under an advisory per-provider lock and one transaction.
func (s *holdService) accept(ctx context.Context, hold *model.AvailabilityHold, notes string, now time.Time) error {
	lockID, err := s.acquireProviderLock(ctx, hold.HoldeeID, hold.HoldeeType)
	if err != nil {
		return err
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

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		blocked, err := s.rangeBlocked(sessCtx, hold.HoldeeID, hold.HoldeeType, hold.StartDate, hold.EndDate)
		if err != nil {
			return err
		}
		if blocked {
			return apperrors.Conflict("The requested dates are no longer free; the hold remains pending")
		}

		if err := s.repo.TransitionStatus(sessCtx, hold.ID, model.HoldPending, model.HoldAccepted, notes, now); err != nil {
			if errors.Is(err, holderrors.ErrNoTransition) {
				return apperrors.AlreadyResolved("Hold was resolved by another request")
			}
			return apperrors.Internal("Failed to accept hold", err)
		}

		return s.writeBlockedSlot(sessCtx, hold.HoldeeID, hold.HoldeeType, hold.StartDate, hold.EndDate, hold.ID)
	})
	if err != nil {
		return err
	}

	hold.Status = model.HoldAccepted
	hold.ResponseNotes = notes
	hold.RespondedAt = &now
	return nil
}

// writeBlockedSlot creates the blocked slot an acceptance commits to. One
// retry, then the transaction aborts with a partial failure so nothing is
// half-applied.
func (s *holdService) writeBlockedSlot(ctx context.Context, ownerID, ownerRole string, startDate, endDate time.Time, holdID string) error {
	rangeStart, rangeEnd := calendar.RangeWindow(startDate, endDate)
	slot := &model.AvailabilitySlot{
		OwnerID:   ownerID,
		OwnerRole: ownerRole,
		StartsAt:  rangeStart,
		EndsAt:    rangeEnd,
		Status:    model.SlotBlocked,
	}

	err := s.slotRepo.Create(ctx, slot)
	if err != nil {
		s.cfg.Log.Warn("Blocked slot write failed, retrying", "hold_id", holdID, "error", err)
		err = s.slotRepo.Create(ctx, slot)
	}
	if err != nil {
		s.cfg.Log.Error("Blocked slot write failed after retry",
			"hold_id", holdID,
			"owner_id", ownerID,
			"starts_at", rangeStart,
			"ends_at", rangeEnd,
			"error", err,
		)
		return apperrors.PartialFailure("Accepted hold without blocking the calendar", err, map[string]any{
			"hold_id":   holdID,
			"starts_at": rangeStart,
			"ends_at":   rangeEnd,
		})
	}

	return nil
}

func (s *holdService) rangeBlocked(ctx context.Context, ownerID, ownerRole string, startDate, endDate time.Time) (bool, error) {
	rangeStart, rangeEnd := calendar.RangeWindow(startDate, endDate)
	slots, err := s.slotRepo.FindByOwnerInRange(ctx, ownerID, ownerRole, rangeStart, rangeEnd)
	if err != nil {
		s.cfg.Log.Error("Failed to check blocked ranges", "owner_id", ownerID, "error", err)
		return false, apperrors.Internal("Failed to check calendar conflicts", err)
	}
	return calendar.RangeHasBlockingConflict(startDate, endDate, slots), nil
}

func (s *holdService) acquireProviderLock(ctx context.Context, providerID, providerRole string) (string, error) {
	lockID := fmt.Sprintf("hold_lock_%s_%s", providerRole, providerID)

	lock := &model.HoldLock{
		ID:        lockID,
		ExpiresAt: time.Now().Add(s.cfg.HoldLockTTL),
	}

	_, err := s.lockRepo.Create(ctx, lock)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", apperrors.Conflict("Another response for this provider is in flight. Please try again.")
		}
		return "", apperrors.Internal("Failed to acquire hold lock", err)
	}

	return lockID, nil
}

func (s *holdService) applyDefaults(hold *model.AvailabilityHold) {
	hold.Status = model.HoldPending
	hold.ResponseNotes = ""
	hold.RespondedAt = nil
	hold.StartDate, _ = calendar.DayWindow(hold.StartDate)
	hold.EndDate, _ = calendar.DayWindow(hold.EndDate)
}

func (s *holdService) sanitize(hold *model.AvailabilityHold) {
	hold.HoldeeID = sanitizer.SanitizeID(hold.HoldeeID)
	hold.RequesterID = sanitizer.SanitizeID(hold.RequesterID)
	hold.RequestMessage = sanitizer.SanitizeMessage(hold.RequestMessage)
}

func (s *holdService) notifyHold(ctx context.Context, eventType string, hold *model.AvailabilityHold) {
	if err := s.notifier.HoldEvent(ctx, eventType, hold); err != nil {
		s.cfg.Log.Warn("Hold notification failed", "event_type", eventType, "hold_id", hold.ID, "error", err)
	}
}
