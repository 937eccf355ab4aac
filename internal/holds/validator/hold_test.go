package validator

import (
	"testing"
	"time"

	"guidecal/pkg/logger"
	"guidecal/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestValidator() *HoldValidator {
	log := logger.New(logger.Config{
		Level:   logger.LevelError,
		Format:  logger.FormatText,
		Service: "test",
	})
	return NewHoldValidator(log)
}

// futureDate is a UTC midnight n days from now. Date fixtures are relative so
// the past-date precondition never trips as the suite ages.
func futureDate(days int) time.Time {
	now := time.Now().UTC().AddDate(0, 0, days)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func validHold() *model.AvailabilityHold {
	start := futureDate(30)
	return &model.AvailabilityHold{
		HoldeeID:      "guide-7",
		HoldeeType:    model.RoleGuide,
		RequesterID:   "agency-3",
		RequesterType: model.RoleAgency,
		StartDate:     start,
		EndDate:       start.AddDate(0, 0, 4),
		Status:        model.HoldPending,
	}
}

func TestHoldValidator_Validate(t *testing.T) {
	v := newTestValidator()

	t.Run("valid hold passes", func(t *testing.T) {
		assert.NoError(t, v.Validate(validHold()))
	})

	t.Run("single-day hold passes", func(t *testing.T) {
		hold := validHold()
		hold.EndDate = hold.StartDate
		assert.NoError(t, v.Validate(hold))
	})

	t.Run("end before start fails", func(t *testing.T) {
		hold := validHold()
		hold.EndDate = hold.StartDate.AddDate(0, 0, -1)
		err := v.Validate(hold)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "end_date must not be before start_date")
	})

	t.Run("provider cannot be requester", func(t *testing.T) {
		hold := validHold()
		hold.RequesterType = model.RoleGuide
		err := v.Validate(hold)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "RequesterType")
	})

	t.Run("agency cannot be holdee", func(t *testing.T) {
		hold := validHold()
		hold.HoldeeType = model.RoleAgency
		err := v.Validate(hold)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "HoldeeType")
	})

	t.Run("requester holding itself fails", func(t *testing.T) {
		hold := validHold()
		hold.RequesterID = hold.HoldeeID
		err := v.Validate(hold)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "requester_id must differ from holdee_id")
	})

	t.Run("start today passes", func(t *testing.T) {
		hold := validHold()
		hold.StartDate = futureDate(0)
		hold.EndDate = hold.StartDate.AddDate(0, 0, 1)
		assert.NoError(t, v.Validate(hold))
	})

	t.Run("start in the past fails", func(t *testing.T) {
		hold := validHold()
		hold.StartDate = futureDate(-1)
		hold.EndDate = hold.StartDate.AddDate(0, 0, 3)
		err := v.Validate(hold)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "start_date must not be in the past")
	})

	t.Run("oversized message fails", func(t *testing.T) {
		hold := validHold()
		hold.RequestMessage = strings2500()
		err := v.Validate(hold)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "RequestMessage")
	})
}

func TestHoldValidator_ValidateBookingRequest(t *testing.T) {
	v := newTestValidator()

	valid := func() *model.BookingRequest {
		start := futureDate(30)
		return &model.BookingRequest{
			JobID:         "job-11",
			RequesterID:   "dmc-2",
			RequesterRole: model.RoleDMC,
			TargetID:      "transport-5",
			TargetRole:    model.RoleTransport,
			StartDate:     start,
			EndDate:       start.AddDate(0, 0, 2),
			Status:        model.HoldPending,
		}
	}

	t.Run("valid request passes", func(t *testing.T) {
		assert.NoError(t, v.ValidateBookingRequest(valid()))
	})

	t.Run("missing job ID fails", func(t *testing.T) {
		r := valid()
		r.JobID = ""
		err := v.ValidateBookingRequest(r)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "JobID")
	})

	t.Run("requester targeting itself fails", func(t *testing.T) {
		r := valid()
		r.TargetID = r.RequesterID
		err := v.ValidateBookingRequest(r)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "requester_id must differ from target_id")
	})

	t.Run("cancelled is not a booking request status", func(t *testing.T) {
		r := valid()
		r.Status = model.HoldCancelled
		err := v.ValidateBookingRequest(r)
		require.Error(t, err)
	})
}

func TestHoldValidator_ValidateDecision(t *testing.T) {
	v := newTestValidator()

	t.Run("accepted passes", func(t *testing.T) {
		assert.NoError(t, v.ValidateDecision(&model.HoldDecision{Decision: model.DecisionAccepted}))
	})

	t.Run("declined with notes passes", func(t *testing.T) {
		assert.NoError(t, v.ValidateDecision(&model.HoldDecision{Decision: model.DecisionDeclined, Notes: "already booked"}))
	})

	t.Run("empty decision fails", func(t *testing.T) {
		require.Error(t, v.ValidateDecision(&model.HoldDecision{}))
	})

	t.Run("unknown decision fails", func(t *testing.T) {
		require.Error(t, v.ValidateDecision(&model.HoldDecision{Decision: "maybe"}))
	})
}

func strings2500() string {
	b := make([]byte, 2500)
	for i := range b {
		b[i] = 'a'
	}
	return string(b)
}
