// Package notify dispatches hold lifecycle events to the notification
// pipeline. Delivery is best-effort by contract: the mailer downstream owns
// retries, and a failed publish never fails the triggering operation.
package notify

import (
	"context"

	"guidecal/pkg/logger"
	"guidecal/pkg/model"
)

const (
	EventHoldRequested = "hold.requested"
	EventHoldAccepted  = "hold.accepted"
	EventHoldDeclined  = "hold.declined"
	EventHoldCancelled = "hold.cancelled"

	EventBookingRequested = "booking_request.requested"
	EventBookingAccepted  = "booking_request.accepted"
	EventBookingDeclined  = "booking_request.declined"
)

type Notifier interface {
	HoldEvent(ctx context.Context, eventType string, hold *model.AvailabilityHold) error
	BookingRequestEvent(ctx context.Context, eventType string, request *model.BookingRequest) error
}

// LogNotifier is the fallback when no broker is reachable at startup: events
// still land in the log stream where they can be scraped or replayed.
type LogNotifier struct {
	log *logger.Logger
}

func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) HoldEvent(_ context.Context, eventType string, hold *model.AvailabilityHold) error {
	n.log.Info("Hold notification",
		"event_type", eventType,
		"hold_id", hold.ID,
		"holdee_id", hold.HoldeeID,
		"requester_id", hold.RequesterID,
	)
	return nil
}

func (n *LogNotifier) BookingRequestEvent(_ context.Context, eventType string, request *model.BookingRequest) error {
	n.log.Info("Booking request notification",
		"event_type", eventType,
		"request_id", request.ID,
		"job_id", request.JobID,
		"target_id", request.TargetID,
	)
	return nil
}
