// Package cli implements the interactive console menu. It is thin glue over
// the scheduler and the assistant; all business rules live below it.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/saudeviva/clinic-agenda/internal/appointment"
	"github.com/saudeviva/clinic-agenda/internal/assistant"
	"github.com/saudeviva/clinic-agenda/internal/scheduling"
	"github.com/saudeviva/clinic-agenda/pkg/logging"
)

// Menu drives the interactive booking console.
type Menu struct {
	in         *bufio.Scanner
	out        io.Writer
	scheduler  *scheduling.Scheduler
	assistant  assistant.Assistant
	clinicName string
	logger     *logging.Logger
}

// New builds a menu over the given reader/writer pair. assistant may be nil,
// in which case natural-language booking is unavailable and the menu says so.
func New(in io.Reader, out io.Writer, scheduler *scheduling.Scheduler, asst assistant.Assistant, clinicName string, logger *logging.Logger) *Menu {
	if scheduler == nil {
		panic("cli: scheduler required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Menu{
		in:         bufio.NewScanner(in),
		out:        out,
		scheduler:  scheduler,
		assistant:  asst,
		clinicName: clinicName,
		logger:     logger,
	}
}

// Run loops over the menu until the user exits or input ends.
func (m *Menu) Run(ctx context.Context) error {
	for {
		fmt.Fprintf(m.out, "\n--- %s ---\n", m.clinicName)
		fmt.Fprintln(m.out, "1. Book appointment (natural language)")
		fmt.Fprintln(m.out, "2. Book appointment (manual)")
		fmt.Fprintln(m.out, "3. List appointments")
		fmt.Fprintln(m.out, "4. Cancel appointment")
		fmt.Fprintln(m.out, "5. Exit")

		choice, ok := m.prompt("Choose an option: ")
		if !ok {
			return nil
		}

		switch strings.TrimSpace(choice) {
		case "1":
			m.handleNaturalLanguage(ctx)
		case "2":
			m.handleManual(ctx)
		case "3":
			m.handleList(ctx)
		case "4":
			m.handleCancel(ctx)
		case "5":
			fmt.Fprintln(m.out, "Thank you for using the booking system. Goodbye!")
			return nil
		default:
			fmt.Fprintln(m.out, "Invalid option. Try again.")
		}
	}
}

func (m *Menu) handleNaturalLanguage(ctx context.Context) {
	if m.assistant == nil {
		fmt.Fprintln(m.out, "Natural-language booking is not configured. Use manual booking instead.")
		return
	}

	fmt.Fprintln(m.out, "\n--- Natural-Language Booking ---")
	text, ok := m.prompt("Describe the booking (e.g. 'Book Maria for tomorrow at 10am'): ")
	if !ok {
		return
	}

	parsed, err := m.assistant.ParseRequest(ctx, text)
	if err != nil {
		var parseErr *assistant.ParseError
		if errors.As(err, &parseErr) {
			fmt.Fprintln(m.out, "Sorry, I could not understand that request. Try manual booking.")
		} else {
			fmt.Fprintf(m.out, "The assistant is unavailable right now: %v\n", err)
		}
		return
	}

	fmt.Fprintf(m.out, "Extracted: patient %s, date %s, time %s\n",
		parsed.PatientName, parsed.StartAt.Format("2006-01-02"), parsed.StartAt.Format("15:04"))
	confirm, ok := m.prompt("Is this correct? (y/n): ")
	if !ok || !strings.EqualFold(strings.TrimSpace(confirm), "y") {
		fmt.Fprintln(m.out, "Booking aborted.")
		return
	}

	m.bookAndConfirm(ctx, parsed.PatientName, parsed.StartAt)
}

func (m *Menu) handleManual(ctx context.Context) {
	fmt.Fprintln(m.out, "\n--- Manual Booking ---")
	name, ok := m.prompt("Patient name: ")
	if !ok {
		return
	}
	date, ok := m.prompt("Date (YYYY-MM-DD): ")
	if !ok {
		return
	}
	clock, ok := m.prompt("Time (HH:MM): ")
	if !ok {
		return
	}

	startAt, err := time.ParseInLocation("2006-01-02 15:04",
		strings.TrimSpace(date)+" "+strings.TrimSpace(clock), time.Local)
	if err != nil {
		fmt.Fprintln(m.out, "[ERROR] Invalid date or time. Use YYYY-MM-DD and HH:MM.")
		return
	}

	m.bookAndConfirm(ctx, name, startAt)
}

func (m *Menu) bookAndConfirm(ctx context.Context, patientName string, startAt time.Time) {
	appt, err := m.scheduler.CreateAppointment(ctx, patientName, startAt)
	if err != nil {
		fmt.Fprintf(m.out, "\n[ERROR] Could not book: %s\n", rejectionMessage(err))
		return
	}

	fmt.Fprintf(m.out, "\n[SUCCESS] Appointment booked. ID: %s\n", appt.ID)

	// The booking already succeeded; a confirmation failure only downgrades
	// the message, it never unwinds the appointment.
	if m.assistant != nil {
		if msg, err := m.assistant.GenerateConfirmation(ctx, appt); err == nil {
			fmt.Fprintln(m.out, "\n--- Confirmation Message ---")
			fmt.Fprintln(m.out, msg)
			fmt.Fprintln(m.out, "----------------------------")
			return
		} else {
			m.logger.Warn("confirmation generation failed", "error", err)
		}
	}
	fmt.Fprintf(m.out, "Confirmed for %s on %s at %s.\n",
		appt.PatientName, appt.StartAt.Format("02/01/2006"), appt.StartAt.Format("15:04"))
}

func (m *Menu) handleList(ctx context.Context) {
	fmt.Fprintln(m.out, "\n--- Booked Appointments ---")
	appts, err := m.scheduler.ListAppointments(ctx)
	if err != nil {
		fmt.Fprintf(m.out, "[ERROR] Could not read the appointment book: %v\n", err)
		return
	}
	if len(appts) == 0 {
		fmt.Fprintln(m.out, "No appointments booked.")
		return
	}
	for _, appt := range appts {
		fmt.Fprintf(m.out, "ID: %s | Patient: %s | Date: %s\n",
			appt.ID, appt.PatientName, appt.StartAt.Format("02/01/2006 15:04"))
	}
}

func (m *Menu) handleCancel(ctx context.Context) {
	fmt.Fprintln(m.out, "\n--- Cancel Appointment ---")
	id, ok := m.prompt("Enter the appointment ID to cancel: ")
	if !ok {
		return
	}

	removed, err := m.scheduler.CancelAppointment(ctx, strings.TrimSpace(id))
	if err != nil {
		fmt.Fprintf(m.out, "[ERROR] Could not cancel: %v\n", err)
		return
	}
	if removed {
		fmt.Fprintln(m.out, "[STATUS] Appointment cancelled.")
	} else {
		fmt.Fprintln(m.out, "[STATUS] No appointment with that ID.")
	}
}

// prompt prints the label and reads one line; ok is false once input ends.
func (m *Menu) prompt(label string) (string, bool) {
	fmt.Fprint(m.out, label)
	if !m.in.Scan() {
		return "", false
	}
	return m.in.Text(), true
}

func rejectionMessage(err error) string {
	switch scheduling.RejectionReason(err) {
	case scheduling.ReasonEmptyPatientName:
		return "the patient name is empty."
	case scheduling.ReasonOutsideBusinessHours:
		return "the time is outside business hours (Mon-Fri)."
	case scheduling.ReasonPastDatetime:
		return "the requested time is in the past."
	case scheduling.ReasonSlotTaken:
		var cErr *scheduling.ConflictError
		if errors.As(err, &cErr) {
			return fmt.Sprintf("that slot conflicts with the appointment for %s.", cErr.With.PatientName)
		}
		return "that slot is already taken."
	}

	var storageErr *appointment.StorageError
	if errors.As(err, &storageErr) {
		return fmt.Sprintf("the appointment book could not be read (%v). Fix or remove the data file and retry.", storageErr)
	}
	return err.Error()
}
