package model

import (
	"time"
)

const (
	HoldPending   = "pending"
	HoldAccepted  = "accepted"
	HoldDeclined  = "declined"
	HoldExpired   = "expired"
	HoldCancelled = "cancelled"
)

// AvailabilityHold is a time-boxed request by an agency or DMC for a provider
// to reserve a date range. StartDate and EndDate are date-granularity values
// stored as UTC midnight instants; the range is inclusive on both ends.
// Once the status leaves pending it never changes again.
type AvailabilityHold struct {
	ID             string     `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	HoldeeID       string     `json:"holdee_id" bson:"holdee_id" validate:"required,min=1,max=100"`
	HoldeeType     string     `json:"holdee_type" bson:"holdee_type" validate:"required,oneof=guide transport"`
	RequesterID    string     `json:"requester_id" bson:"requester_id" validate:"required,min=1,max=100"`
	RequesterType  string     `json:"requester_type" bson:"requester_type" validate:"required,oneof=agency dmc"`
	StartDate      time.Time  `json:"start_date" bson:"start_date" validate:"required"`
	EndDate        time.Time  `json:"end_date" bson:"end_date" validate:"required"`
	Status         string     `json:"status" bson:"status" validate:"required,oneof=pending accepted declined expired cancelled"`
	RequestMessage string     `json:"request_message,omitempty" bson:"request_message,omitempty" validate:"omitempty,max=2000"`
	ResponseNotes  string     `json:"response_notes,omitempty" bson:"response_notes,omitempty" validate:"omitempty,max=2000"`
	CreatedAt      time.Time  `json:"created_at" bson:"created_at" validate:"omitempty"`
	RespondedAt    *time.Time `json:"responded_at,omitempty" bson:"responded_at,omitempty" validate:"omitempty"`
}

// IsTerminal reports whether the hold has left the pending state.
func (h *AvailabilityHold) IsTerminal() bool {
	return h.Status != HoldPending
}

// StaleAt reports whether a still-pending hold is past its response window at
// the given instant. Expiry is a derived state: readers must treat a stale
// pending hold as expired even before the sweep persists the transition.
func (h *AvailabilityHold) StaleAt(now time.Time, window time.Duration) bool {
	return h.Status == HoldPending && now.Sub(h.CreatedAt) > window
}

const (
	DecisionAccepted = "accepted"
	DecisionDeclined = "declined"
)

type HoldDecision struct {
	Decision string `json:"decision" validate:"required,oneof=accepted declined"`
	Notes    string `json:"notes,omitempty" validate:"omitempty,max=2000"`
}
