package service

import (
	"context"
	"errors"
	"time"

	availerrors "guidecal/internal/availability/errors"
	"guidecal/internal/availability/repository"
	"guidecal/internal/availability/validator"
	"guidecal/pkg/config"
	apperrors "guidecal/pkg/errors"
	"guidecal/pkg/model"
)

type SlotService interface {
	Create(ctx context.Context, slot *model.AvailabilitySlot) error
	GetByID(ctx context.Context, id string) (*model.AvailabilitySlot, error)
	ListForOwner(ctx context.Context, ownerID, ownerRole string, from, to time.Time) ([]*model.AvailabilitySlot, error)
	UpdateStatus(ctx context.Context, id, actorID string, update *model.SlotUpdate) error
	Delete(ctx context.Context, id, actorID string) error
}

type slotService struct {
	repo      repository.SlotRepository
	validator *validator.SlotValidator
	cfg       *config.Config
}

func NewSlotService(
	repo repository.SlotRepository,
	validator *validator.SlotValidator,
	cfg *config.Config,
) SlotService {
	return &slotService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *slotService) Create(ctx context.Context, slot *model.AvailabilitySlot) error {
	s.applyDefaults(slot)
	if err := s.validator.Validate(slot); err != nil {
		s.cfg.Log.Warn("Slot validation failed", "error", err)
		return apperrors.Validation("Slot validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Create(ctx, slot); err != nil {
		s.cfg.Log.Error("Failed to create slot", "owner_id", slot.OwnerID, "error", err)
		return apperrors.Internal("Failed to create availability slot", err)
	}

	s.cfg.Log.Info("Availability slot created",
		"id", slot.ID,
		"owner_id", slot.OwnerID,
		"owner_role", slot.OwnerRole,
		"status", slot.Status,
		"starts_at", slot.StartsAt,
		"ends_at", slot.EndsAt,
	)
	return nil
}

func (s *slotService) GetByID(ctx context.Context, id string) (*model.AvailabilitySlot, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Slot ID cannot be empty")
	}

	slot, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, availerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Availability slot", id)
		}
		if errors.Is(err, availerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid slot ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve availability slot", err)
	}

	return slot, nil
}

func (s *slotService) ListForOwner(ctx context.Context, ownerID, ownerRole string, from, to time.Time) ([]*model.AvailabilitySlot, error) {
	if ownerID == "" {
		return nil, apperrors.InvalidInput("Owner ID cannot be empty")
	}
	if !model.IsProviderRole(ownerRole) {
		return nil, apperrors.InvalidInput("Owner role must be 'guide' or 'transport'")
	}
	if !to.After(from) {
		return nil, apperrors.InvalidInput("Range end must be after range start")
	}

	slots, err := s.repo.FindByOwnerInRange(ctx, ownerID, ownerRole, from, to)
	if err != nil {
		s.cfg.Log.Error("Failed to list slots",
			"owner_id", ownerID,
			"owner_role", ownerRole,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to retrieve availability slots", err)
	}

	return slots, nil
}

func (s *slotService) UpdateStatus(ctx context.Context, id, actorID string, update *model.SlotUpdate) error {
	if id == "" {
		return apperrors.InvalidInput("Slot ID cannot be empty")
	}
	if err := s.validator.ValidateUpdate(update); err != nil {
		s.cfg.Log.Warn("Slot update validation failed", "id", id, "error", err)
		return apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	if err := s.checkOwnership(ctx, id, actorID); err != nil {
		return err
	}

	if err := s.repo.UpdateStatus(ctx, id, update.Status); err != nil {
		if errors.Is(err, availerrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Availability slot", id)
		}
		s.cfg.Log.Error("Failed to update slot status", "id", id, "error", err)
		return apperrors.Internal("Failed to update availability slot", err)
	}

	s.cfg.Log.Info("Availability slot status updated", "id", id, "status", update.Status)
	return nil
}

// Delete is idempotent for an already-deleted slot, so double-submits
// succeed. A slot owned by someone else still reads as not found.
func (s *slotService) Delete(ctx context.Context, id, actorID string) error {
	if id == "" {
		return apperrors.InvalidInput("Slot ID cannot be empty")
	}
	if actorID == "" {
		return apperrors.Unauthorized("Actor identity is required")
	}

	slot, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, availerrors.ErrNotFound) {
			s.cfg.Log.Debug("Slot already deleted", "id", id)
			return nil
		}
		if errors.Is(err, availerrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid slot ID format")
		}
		return apperrors.Internal("Failed to check slot ownership", err)
	}

	if slot.OwnerID != actorID {
		return apperrors.NotFoundWithID("Availability slot", id)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, availerrors.ErrNotFound) {
			return nil
		}
		s.cfg.Log.Error("Failed to delete slot", "id", id, "error", err)
		return apperrors.Internal("Failed to delete availability slot", err)
	}

	s.cfg.Log.Info("Availability slot deleted", "id", id)
	return nil
}

// checkOwnership treats a slot owned by someone else as not found, so callers
// cannot probe for other providers' slot IDs. A missing actor identity is
// rejected outright.
func (s *slotService) checkOwnership(ctx context.Context, id, actorID string) error {
	if actorID == "" {
		return apperrors.Unauthorized("Actor identity is required")
	}

	slot, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, availerrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Availability slot", id)
		}
		if errors.Is(err, availerrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid slot ID format")
		}
		return apperrors.Internal("Failed to check slot ownership", err)
	}

	if slot.OwnerID != actorID {
		return apperrors.NotFoundWithID("Availability slot", id)
	}
	return nil
}

func (s *slotService) applyDefaults(slot *model.AvailabilitySlot) {
	if slot.Status == "" {
		slot.Status = model.SlotAvailable
	}
	slot.StartsAt = slot.StartsAt.UTC()
	slot.EndsAt = slot.EndsAt.UTC()
}
