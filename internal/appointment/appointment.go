// Package appointment holds the appointment record type and its durable
// file-backed store.
package appointment

import (
	"fmt"
	"strings"
	"time"
)

// TimeLayout is the minute-precision layout appointments are persisted with.
const TimeLayout = "2006-01-02T15:04"

// Appointment is a scheduled patient slot. The ID is assigned by the store at
// creation time and never reused, including after cancellation.
type Appointment struct {
	ID          string
	PatientName string
	StartAt     time.Time
}

// record is the on-disk shape of an appointment.
type record struct {
	ID          string `json:"id"`
	PatientName string `json:"patient_name"`
	StartAt     string `json:"start_at"`
}

func toRecord(a Appointment) record {
	return record{
		ID:          a.ID,
		PatientName: a.PatientName,
		StartAt:     a.StartAt.Format(TimeLayout),
	}
}

// fromRecord validates the persisted shape at the store boundary so malformed
// rows surface as storage errors instead of leaking into business logic.
func fromRecord(r record) (Appointment, error) {
	if strings.TrimSpace(r.ID) == "" {
		return Appointment{}, fmt.Errorf("appointment record missing id")
	}
	if strings.TrimSpace(r.PatientName) == "" {
		return Appointment{}, fmt.Errorf("appointment record %s missing patient_name", r.ID)
	}
	startAt, err := parseStartAt(r.StartAt)
	if err != nil {
		return Appointment{}, fmt.Errorf("appointment record %s: %w", r.ID, err)
	}
	return Appointment{
		ID:          r.ID,
		PatientName: r.PatientName,
		StartAt:     startAt,
	}, nil
}

// parseStartAt accepts the store's own layout plus second-precision ISO-8601
// variants written by earlier versions of the app.
func parseStartAt(value string) (time.Time, error) {
	for _, layout := range []string{TimeLayout, "2006-01-02T15:04:05", time.RFC3339} {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t.Truncate(time.Minute), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable start_at %q", value)
}
