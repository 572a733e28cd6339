package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/saudeviva/clinic-agenda/internal/appointment"
	"github.com/saudeviva/clinic-agenda/pkg/logging"
)

// Service implements Assistant over an injected LLMClient.
type Service struct {
	llm        LLMClient
	modelID    string
	clinicName string
	doctorName string
	logger     *logging.Logger
	now        func() time.Time
}

// ServiceOption customizes a Service during construction.
type ServiceOption func(*Service)

// WithLogger overrides the default logger.
func WithLogger(logger *logging.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the clock used to anchor relative dates, used by tests.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *Service) {
		if clock != nil {
			s.now = clock
		}
	}
}

// NewService builds the LLM-backed assistant. modelID is passed through on
// every request; clients bound to a fixed model ignore it.
func NewService(llm LLMClient, modelID, clinicName, doctorName string, opts ...ServiceOption) *Service {
	if llm == nil {
		panic("assistant: llm client required")
	}
	s := &Service{
		llm:        llm,
		modelID:    modelID,
		clinicName: clinicName,
		doctorName: doctorName,
		logger:     logging.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type parsePayload struct {
	PatientName string `json:"patient_name"`
	Date        string `json:"date"`
	Time        string `json:"time"`
}

// ParseRequest extracts patient name, date and time from a free-text booking
// request. The model sees today's date so relative phrasing like "tomorrow"
// resolves deterministically.
func (s *Service) ParseRequest(ctx context.Context, text string) (ParsedRequest, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return ParsedRequest{}, &ParseError{Text: text, Err: errors.New("empty request")}
	}

	today := s.now()
	system := fmt.Sprintf(`You are the booking assistant for %s. The doctor is %s.
Extract the patient name, appointment date and appointment time from the user's request.
Today is %s (%s). Resolve relative dates like "tomorrow" or "next Friday" against today.
Convert times like "3 in the afternoon" or "10h" to 24-hour HH:MM.
Reply with ONLY a JSON object of the form
{"patient_name": "...", "date": "YYYY-MM-DD", "time": "HH:MM"}
and nothing else. If any field cannot be determined, use an empty string for it.`,
		s.clinicName, s.doctorName, today.Format("2006-01-02"), today.Weekday())

	resp, err := s.llm.Complete(ctx, LLMRequest{
		Model:       s.modelID,
		System:      []string{system},
		Messages:    []ChatMessage{{Role: ChatRoleUser, Content: text}},
		MaxTokens:   200,
		Temperature: 0,
	})
	if err != nil {
		return ParsedRequest{}, &ParseError{Text: text, Err: err}
	}

	raw := extractJSONObject(stripCodeFences(resp.Text))
	var payload parsePayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		s.logger.Debug("assistant returned non-JSON parse output", "output", resp.Text)
		return ParsedRequest{}, &ParseError{Text: text, Err: fmt.Errorf("decode model output: %w", err)}
	}

	if strings.TrimSpace(payload.PatientName) == "" {
		return ParsedRequest{}, &ParseError{Text: text, Err: errors.New("model found no patient name")}
	}
	if payload.Date == "" || payload.Time == "" {
		return ParsedRequest{}, &ParseError{Text: text, Err: errors.New("model found no date/time")}
	}

	startAt, err := time.ParseInLocation("2006-01-02 15:04", payload.Date+" "+payload.Time, time.Local)
	if err != nil {
		return ParsedRequest{}, &ParseError{Text: text, Err: fmt.Errorf("model produced invalid date/time: %w", err)}
	}

	return ParsedRequest{
		PatientName: strings.TrimSpace(payload.PatientName),
		StartAt:     startAt,
	}, nil
}

// GenerateConfirmation writes a short, friendly confirmation message for an
// already-persisted appointment. Errors here never unwind the booking.
func (s *Service) GenerateConfirmation(ctx context.Context, appt appointment.Appointment) (string, error) {
	prompt := fmt.Sprintf(`Write a short, warm appointment confirmation for patient %s.
The appointment is with %s at %s.
Date: %s. Time: %s.
Ask the patient to arrive 10 minutes early. Keep it under four sentences.`,
		appt.PatientName, s.doctorName, s.clinicName,
		appt.StartAt.Format("02/01/2006"), appt.StartAt.Format("15:04"))

	resp, err := s.llm.Complete(ctx, LLMRequest{
		Model:       s.modelID,
		System:      []string{fmt.Sprintf("You are a friendly, efficient assistant at %s.", s.clinicName)},
		Messages:    []ChatMessage{{Role: ChatRoleUser, Content: prompt}},
		MaxTokens:   150,
		Temperature: 0.7,
	})
	if err != nil {
		return "", fmt.Errorf("assistant: confirmation: %w", err)
	}
	if strings.TrimSpace(resp.Text) == "" {
		return "", errors.New("assistant: confirmation: model returned no text")
	}
	return strings.TrimSpace(resp.Text), nil
}

func stripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

func extractJSONObject(text string) string {
	if strings.HasPrefix(text, "{") {
		return text
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		return text[start : end+1]
	}
	return text
}
