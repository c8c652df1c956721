package audit

import (
	"context"
	"log/slog"
	"time"
)

// Phase marks which half of an exchange with the venue an Event describes.
type Phase string

const (
	PhaseRequest  Phase = "request"
	PhaseResponse Phase = "response"
	PhaseError    Phase = "error"
)

// Event 审计事件
// Query carries the outbound parameters with the signature redacted; the
// secret and the signature hex never appear in an Event.
type Event struct {
	Time   time.Time `json:"time"`
	Phase  Phase     `json:"phase"`
	Method string    `json:"method,omitempty"`
	URL    string    `json:"url,omitempty"`
	Query  string    `json:"query,omitempty"`
	Status int       `json:"status,omitempty"`
	Body   string    `json:"body,omitempty"`
	Note   string    `json:"note,omitempty"`
}

// Recorder receives one Event per observable step of an order attempt.
// Implementations must not block the order path longer than necessary.
type Recorder interface {
	Record(ctx context.Context, event Event)
}

// SlogRecorder emits audit events through a structured logger.
type SlogRecorder struct {
	logger *slog.Logger
}

func NewSlogRecorder(logger *slog.Logger) *SlogRecorder {
	return &SlogRecorder{logger: logger}
}

// Record implements Recorder.
func (r *SlogRecorder) Record(ctx context.Context, event Event) {
	attrs := []any{"phase", string(event.Phase)}
	if event.Method != "" {
		attrs = append(attrs, "method", event.Method, "url", event.URL, "query", event.Query)
	}
	if event.Status != 0 {
		attrs = append(attrs, "status", event.Status)
	}
	if event.Body != "" {
		attrs = append(attrs, "body", event.Body)
	}
	if event.Note != "" {
		attrs = append(attrs, "note", event.Note)
	}
	if event.Phase == PhaseError {
		r.logger.ErrorContext(ctx, "exchange audit", attrs...)
		return
	}
	r.logger.InfoContext(ctx, "exchange audit", attrs...)
}

// MultiRecorder fans one event out to several recorders.
type MultiRecorder struct {
	recorders []Recorder
}

func NewMultiRecorder(recorders ...Recorder) *MultiRecorder {
	return &MultiRecorder{recorders: recorders}
}

// Record implements Recorder.
func (m *MultiRecorder) Record(ctx context.Context, event Event) {
	for _, r := range m.recorders {
		r.Record(ctx, event)
	}
}

// NopRecorder discards everything. Useful where no audit sink is configured.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, Event) {}
