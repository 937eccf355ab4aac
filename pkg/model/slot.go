package model

import (
	"time"
)

const (
	SlotAvailable   = "available"
	SlotBlocked     = "blocked"
	SlotUnavailable = "unavailable"
)

// AvailabilitySlot is a stored availability interval on a provider's calendar.
// The interval is half-open: [StartsAt, EndsAt). Overlapping slots of
// different status may coexist; precedence is resolved at read time by the
// calendar evaluator.
type AvailabilitySlot struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	OwnerID   string    `json:"owner_id" bson:"owner_id" validate:"required,min=1,max=100"`
	OwnerRole string    `json:"owner_role" bson:"owner_role" validate:"required,oneof=guide transport"`
	StartsAt  time.Time `json:"starts_at" bson:"starts_at" validate:"required"`
	EndsAt    time.Time `json:"ends_at" bson:"ends_at" validate:"required"`
	Status    string    `json:"status" bson:"status" validate:"required,oneof=available blocked unavailable"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

type SlotUpdate struct {
	Status string `json:"status" validate:"required,oneof=available blocked unavailable"`
}
