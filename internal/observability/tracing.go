package observability

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

type SpanStatus string

const (
	SpanStatusOK    SpanStatus = "OK"
	SpanStatusError SpanStatus = "ERROR"
)

// Span times one unit of work inside a request, such as the request itself or
// one rendered fragment. Finished spans are written to the log, not exported.
type Span struct {
	TraceID   string
	SpanID    string
	ParentID  string
	Operation string
	Start     time.Time
	Duration  time.Duration
	Tags      map[string]string
	Status    SpanStatus
	Error     string

	finished bool
}

type spanContextKey struct{}

// StartSpan opens a span under the span already in ctx, if any, sharing its trace.
func StartSpan(ctx context.Context, operation string) (context.Context, *Span) {
	span := &Span{
		TraceID:   newID(32),
		SpanID:    newID(16),
		Operation: operation,
		Start:     time.Now(),
		Status:    SpanStatusOK,
		Tags:      make(map[string]string),
	}
	if parent := GetSpan(ctx); parent != nil {
		span.TraceID = parent.TraceID
		span.ParentID = parent.SpanID
	}
	return context.WithValue(ctx, spanContextKey{}, span), span
}

func GetSpan(ctx context.Context) *Span {
	span, _ := ctx.Value(spanContextKey{}).(*Span)
	return span
}

// Finish fixes the span's duration. Later calls are ignored.
func (s *Span) Finish() {
	if s.finished {
		return
	}
	s.finished = true
	s.Duration = time.Since(s.Start)
}

func (s *Span) Finished() bool { return s.finished }

func (s *Span) SetTag(key, value string) {
	if s.Tags == nil {
		s.Tags = make(map[string]string)
	}
	s.Tags[key] = value
}

func (s *Span) SetError(err error) {
	s.Status = SpanStatusError
	if err != nil {
		s.Error = err.Error()
	}
}

// LogValue flattens the span into a log group; tags are sorted by key.
func (s *Span) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("operation", s.Operation),
		slog.String("trace_id", s.TraceID),
		slog.String("span_id", s.SpanID),
	}
	if s.ParentID != "" {
		attrs = append(attrs, slog.String("parent_id", s.ParentID))
	}
	attrs = append(attrs, slog.String("status", string(s.Status)))
	if s.finished {
		attrs = append(attrs, slog.Duration("duration", s.Duration))
	}
	if s.Error != "" {
		attrs = append(attrs, slog.String("error", s.Error))
	}
	for _, k := range slices.Sorted(maps.Keys(s.Tags)) {
		attrs = append(attrs, slog.String(k, s.Tags[k]))
	}
	return slog.GroupValue(attrs...)
}

// newID returns n hex characters taken from a random UUID (n <= 32).
func newID(n int) string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:n]
}
