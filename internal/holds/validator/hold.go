package validator

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"guidecal/pkg/logger"
	"guidecal/pkg/model"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type HoldValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewHoldValidator(log *logger.Logger) *HoldValidator {
	return &HoldValidator{
		validate: validator.New(),
		logger:   log,
	}
}

func (v *HoldValidator) Validate(hold *model.AvailabilityHold) error {
	if err := v.validate.Struct(hold); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	var errs ValidationErrors

	// The date range is inclusive, so a single-day hold has equal dates.
	if hold.EndDate.Before(hold.StartDate) {
		errs = append(errs, ValidationError{
			Field:   "EndDate",
			Message: "end_date must not be before start_date",
		})
	}
	if hold.RequesterID == hold.HoldeeID {
		errs = append(errs, ValidationError{
			Field:   "RequesterID",
			Message: "requester_id must differ from holdee_id",
		})
	}
	if hold.StartDate.Before(todayUTC()) {
		errs = append(errs, ValidationError{
			Field:   "StartDate",
			Message: "start_date must not be in the past",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (v *HoldValidator) ValidateBookingRequest(request *model.BookingRequest) error {
	if err := v.validate.Struct(request); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	var errs ValidationErrors

	if request.EndDate.Before(request.StartDate) {
		errs = append(errs, ValidationError{
			Field:   "EndDate",
			Message: "end_date must not be before start_date",
		})
	}
	if request.RequesterID == request.TargetID {
		errs = append(errs, ValidationError{
			Field:   "RequesterID",
			Message: "requester_id must differ from target_id",
		})
	}
	if request.StartDate.Before(todayUTC()) {
		errs = append(errs, ValidationError{
			Field:   "StartDate",
			Message: "start_date must not be in the past",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (v *HoldValidator) ValidateDecision(decision *model.HoldDecision) error {
	if err := v.validate.Struct(decision); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

// todayUTC is the current date at UTC midnight. Date preconditions compare
// against it so a hold starting today stays valid for the whole day.
func todayUTC() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func (v *HoldValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
