package model

import (
	"time"
)

// BookingRequest is the job-keyed variant of AvailabilityHold used on the
// provider-facing calendar. It runs the same state machine minus cancellation
// and shares the rule that acceptance writes a blocked slot over the range.
type BookingRequest struct {
	ID            string     `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	JobID         string     `json:"job_id" bson:"job_id" validate:"required,min=1,max=100"`
	RequesterID   string     `json:"requester_id" bson:"requester_id" validate:"required,min=1,max=100"`
	RequesterRole string     `json:"requester_role" bson:"requester_role" validate:"required,oneof=agency dmc"`
	TargetID      string     `json:"target_id" bson:"target_id" validate:"required,min=1,max=100"`
	TargetRole    string     `json:"target_role" bson:"target_role" validate:"required,oneof=guide transport"`
	StartDate     time.Time  `json:"start_date" bson:"start_date" validate:"required"`
	EndDate       time.Time  `json:"end_date" bson:"end_date" validate:"required"`
	Status        string     `json:"status" bson:"status" validate:"required,oneof=pending accepted declined expired"`
	Message       string     `json:"message,omitempty" bson:"message,omitempty" validate:"omitempty,max=2000"`
	CreatedAt     time.Time  `json:"created_at" bson:"created_at" validate:"omitempty"`
	RespondedAt   *time.Time `json:"responded_at,omitempty" bson:"responded_at,omitempty" validate:"omitempty"`
}

func (b *BookingRequest) IsTerminal() bool {
	return b.Status != HoldPending
}

func (b *BookingRequest) StaleAt(now time.Time, window time.Duration) bool {
	return b.Status == HoldPending && now.Sub(b.CreatedAt) > window
}
