// Package scheduling enforces the clinic's booking rules and coordinates the
// appointment store.
package scheduling

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/saudeviva/clinic-agenda/internal/appointment"
	"github.com/saudeviva/clinic-agenda/internal/observability/metrics"
	"github.com/saudeviva/clinic-agenda/pkg/logging"
)

// Hours is the weekday booking window as minutes from midnight. Open is
// inclusive, Close exclusive: a start minute of Close is already outside.
type Hours struct {
	Open  int
	Close int
}

// ParseHours builds an Hours window from two HH:MM clock strings.
func ParseHours(open, close string) (Hours, error) {
	openMin, err := parseClock(open)
	if err != nil {
		return Hours{}, fmt.Errorf("scheduling: open time: %w", err)
	}
	closeMin, err := parseClock(close)
	if err != nil {
		return Hours{}, fmt.Errorf("scheduling: close time: %w", err)
	}
	if closeMin <= openMin {
		return Hours{}, fmt.Errorf("scheduling: close %s must be after open %s", close, open)
	}
	return Hours{Open: openMin, Close: closeMin}, nil
}

func parseClock(value string) (int, error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return 0, fmt.Errorf("invalid clock value %q", value)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// Config carries the business rules the scheduler enforces.
type Config struct {
	Hours        Hours
	SlotDuration time.Duration
}

// DefaultConfig returns the clinic's standard rules: Mon-Fri 08:00-18:00,
// 30-minute slots.
func DefaultConfig() Config {
	return Config{
		Hours:        Hours{Open: 8 * 60, Close: 18 * 60},
		SlotDuration: 30 * time.Minute,
	}
}

// Scheduler validates booking requests and orchestrates store operations.
type Scheduler struct {
	store   appointment.Store
	cfg     Config
	logger  *logging.Logger
	metrics *metrics.SchedulerMetrics
	now     func() time.Time
}

// Option customizes a Scheduler during construction.
type Option func(*Scheduler)

// WithLogger overrides the default logger.
func WithLogger(logger *logging.Logger) Option {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics attaches booking instrumentation.
func WithMetrics(m *metrics.SchedulerMetrics) Option {
	return func(s *Scheduler) {
		s.metrics = m
	}
}

// WithClock overrides the clock used for past-datetime checks, used by tests.
func WithClock(clock func() time.Time) Option {
	return func(s *Scheduler) {
		if clock != nil {
			s.now = clock
		}
	}
}

// New constructs a scheduler over the given store.
func New(store appointment.Store, cfg Config, opts ...Option) *Scheduler {
	if store == nil {
		panic("scheduling: store required")
	}
	if cfg.SlotDuration <= 0 {
		cfg.SlotDuration = 30 * time.Minute
	}
	if cfg.Hours == (Hours{}) {
		cfg.Hours = DefaultConfig().Hours
	}
	s := &Scheduler{
		store:  store,
		cfg:    cfg,
		logger: logging.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateAppointment validates a candidate booking and persists it on success.
// Checks run in a fixed order so the first violation reported is
// deterministic: empty name, business hours, past datetime, then conflicts.
func (s *Scheduler) CreateAppointment(ctx context.Context, patientName string, startAt time.Time) (appointment.Appointment, error) {
	patientName = strings.TrimSpace(patientName)
	startAt = startAt.Truncate(time.Minute)

	if patientName == "" {
		return appointment.Appointment{}, s.reject(&ValidationError{
			Reason:  ReasonEmptyPatientName,
			Message: "patient name is required",
		})
	}

	if !s.withinBusinessHours(startAt) {
		return appointment.Appointment{}, s.reject(&ValidationError{
			Reason: ReasonOutsideBusinessHours,
			Message: fmt.Sprintf("bookings are Monday to Friday between %s and %s",
				formatClock(s.cfg.Hours.Open), formatClock(s.cfg.Hours.Close)),
		})
	}

	if startAt.Before(s.now()) {
		return appointment.Appointment{}, s.reject(&ValidationError{
			Reason:  ReasonPastDatetime,
			Message: "the requested time has already passed",
		})
	}

	sameDay, err := s.store.FindByDate(ctx, startAt)
	if err != nil {
		return appointment.Appointment{}, fmt.Errorf("scheduling: conflict check: %w", err)
	}
	candidateEnd := startAt.Add(s.cfg.SlotDuration)
	for _, existing := range sameDay {
		existingEnd := existing.StartAt.Add(s.cfg.SlotDuration)
		if startAt.Before(existingEnd) && candidateEnd.After(existing.StartAt) {
			return appointment.Appointment{}, s.reject(&ConflictError{
				Reason: ReasonSlotTaken,
				With:   existing,
			})
		}
	}

	stored, err := s.store.Add(ctx, appointment.Appointment{
		PatientName: patientName,
		StartAt:     startAt,
	})
	if err != nil {
		return appointment.Appointment{}, fmt.Errorf("scheduling: persist: %w", err)
	}

	s.metrics.ObserveCreated()
	s.logger.Info("appointment created",
		"appointment_id", stored.ID,
		"patient", stored.PatientName,
		"start_at", stored.StartAt.Format(appointment.TimeLayout),
	)
	return stored, nil
}

// ListAppointments returns all active appointments ordered by start time.
func (s *Scheduler) ListAppointments(ctx context.Context) ([]appointment.Appointment, error) {
	appts, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("scheduling: list: %w", err)
	}
	sort.Slice(appts, func(i, j int) bool {
		if appts[i].StartAt.Equal(appts[j].StartAt) {
			return appts[i].ID < appts[j].ID
		}
		return appts[i].StartAt.Before(appts[j].StartAt)
	})
	return appts, nil
}

// CancelAppointment removes the appointment with the given identifier. An
// unknown id reports false, never an error.
func (s *Scheduler) CancelAppointment(ctx context.Context, id string) (bool, error) {
	removed, err := s.store.Remove(ctx, id)
	if err != nil {
		return false, fmt.Errorf("scheduling: cancel: %w", err)
	}
	if removed {
		s.metrics.ObserveCancelled()
		s.logger.Info("appointment cancelled", "appointment_id", id)
	}
	return removed, nil
}

func (s *Scheduler) withinBusinessHours(startAt time.Time) bool {
	switch startAt.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	minute := startAt.Hour()*60 + startAt.Minute()
	return minute >= s.cfg.Hours.Open && minute < s.cfg.Hours.Close
}

func (s *Scheduler) reject(err error) error {
	reason := RejectionReason(err)
	s.metrics.ObserveRejected(reason)
	s.logger.Debug("booking rejected", "reason", reason)
	return err
}

func formatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
