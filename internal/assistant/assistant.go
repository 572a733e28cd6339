// Package assistant talks to the clinic's language-model collaborator: it
// turns free-text booking requests into structured fields and writes friendly
// confirmation messages. Its output is never trusted; everything it extracts
// still goes through full scheduling validation.
package assistant

import (
	"context"
	"fmt"
	"time"

	"github.com/saudeviva/clinic-agenda/internal/appointment"
)

// ParsedRequest is the structured booking request extracted from free text.
type ParsedRequest struct {
	PatientName string
	StartAt     time.Time
}

// ParseError reports free text that could not be mapped to a booking request.
type ParseError struct {
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("assistant: could not understand request %q: %v", e.Text, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Assistant is the external AI collaborator consumed by the CLI layer.
type Assistant interface {
	ParseRequest(ctx context.Context, text string) (ParsedRequest, error)
	GenerateConfirmation(ctx context.Context, appt appointment.Appointment) (string, error)
}
