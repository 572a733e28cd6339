package scheduling

import (
	"errors"
	"fmt"

	"github.com/saudeviva/clinic-agenda/internal/appointment"
)

// Rejection reasons carried by ValidationError and ConflictError.
const (
	ReasonEmptyPatientName     = "empty_patient_name"
	ReasonOutsideBusinessHours = "outside_business_hours"
	ReasonPastDatetime         = "past_datetime"
	ReasonSlotTaken            = "slot_taken"
)

// ValidationError means the booking request itself is invalid. Always
// recoverable; the caller should correct the input and retry.
type ValidationError struct {
	Reason  string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Reason, e.Message)
	}
	return e.Reason
}

// ConflictError means the request is valid in isolation but collides with an
// existing appointment. The caller should offer another time.
type ConflictError struct {
	Reason string
	With   appointment.Appointment
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: conflicts with the appointment for %s at %s",
		e.Reason, e.With.PatientName, e.With.StartAt.Format("2006-01-02 15:04"))
}

// RejectionReason extracts the machine-readable reason from a create failure,
// or "" if the error is not a business-rule rejection.
func RejectionReason(err error) string {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr.Reason
	}
	var cErr *ConflictError
	if errors.As(err, &cErr) {
		return cErr.Reason
	}
	return ""
}
