package observability

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Trace levels.
const (
	TraceInfo    = "INFO"
	TraceSuccess = "SUCCESS"
	TraceError   = "ERROR"
	TraceWarning = "WARNING"
)

// TraceRecord is one pipeline event kept in the trace buffer.
type TraceRecord struct {
	Timestamp time.Time      `json:"timestamp"`
	Operation string         `json:"operation"`
	Message   string         `json:"message"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Level     string         `json:"level"`
	TraceID   string         `json:"trace_id"`
}

// TraceStats summarizes the current buffer contents.
type TraceStats struct {
	Total     int            `json:"total"`
	ByLevel   map[string]int `json:"by_level"`
	ErrorRate float64        `json:"error_rate"`
}

// Tracer keeps a bounded, concurrency-safe ring buffer of pipeline events.
// When the buffer is full the oldest record is dropped.
type Tracer struct {
	mu      sync.Mutex
	records []TraceRecord
	start   int
	count   int
}

// NewTracer builds a tracer holding at most capacity records.
func NewTracer(capacity int) *Tracer {
	if capacity <= 0 {
		capacity = 1000
	}
	return &Tracer{records: make([]TraceRecord, capacity)}
}

// NewTraceID mints the correlation id for one conversational turn.
func NewTraceID() string {
	return uuid.NewString()
}

// Record appends one event, evicting the oldest when full.
func (t *Tracer) Record(level, traceID, operation, message string, metadata map[string]any) {
	if t == nil {
		return
	}
	rec := TraceRecord{
		Timestamp: time.Now().UTC(),
		Operation: operation,
		Message:   message,
		Metadata:  metadata,
		Level:     level,
		TraceID:   traceID,
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.count < len(t.records) {
		t.records[(t.start+t.count)%len(t.records)] = rec
		t.count++
		return
	}
	t.records[t.start] = rec
	t.start = (t.start + 1) % len(t.records)
}

// Info records an informational event.
func (t *Tracer) Info(traceID, operation, message string, metadata map[string]any) {
	t.Record(TraceInfo, traceID, operation, message, metadata)
}

// Success records a completed step.
func (t *Tracer) Success(traceID, operation, message string, metadata map[string]any) {
	t.Record(TraceSuccess, traceID, operation, message, metadata)
}

// Error records a failed step.
func (t *Tracer) Error(traceID, operation, message string, metadata map[string]any) {
	t.Record(TraceError, traceID, operation, message, metadata)
}

// Warning records a degraded step.
func (t *Tracer) Warning(traceID, operation, message string, metadata map[string]any) {
	t.Record(TraceWarning, traceID, operation, message, metadata)
}

// snapshot copies the live records oldest-first.
func (t *Tracer) snapshot() []TraceRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]TraceRecord, 0, t.count)
	for i := 0; i < t.count; i++ {
		out = append(out, t.records[(t.start+i)%len(t.records)])
	}
	return out
}

// ByTraceID returns every record for one turn, oldest-first.
func (t *Tracer) ByTraceID(traceID string) []TraceRecord {
	if t == nil {
		return nil
	}
	var out []TraceRecord
	for _, rec := range t.snapshot() {
		if rec.TraceID == traceID {
			out = append(out, rec)
		}
	}
	return out
}

// ByOperation returns every record for one operation name.
func (t *Tracer) ByOperation(operation string) []TraceRecord {
	if t == nil {
		return nil
	}
	var out []TraceRecord
	for _, rec := range t.snapshot() {
		if rec.Operation == operation {
			out = append(out, rec)
		}
	}
	return out
}

// ByLevel returns every record at one level.
func (t *Tracer) ByLevel(level string) []TraceRecord {
	if t == nil {
		return nil
	}
	var out []TraceRecord
	for _, rec := range t.snapshot() {
		if rec.Level == level {
			out = append(out, rec)
		}
	}
	return out
}

// Recent returns the newest n records, oldest-first.
func (t *Tracer) Recent(n int) []TraceRecord {
	if t == nil {
		return nil
	}
	recs := t.snapshot()
	if n <= 0 || n >= len(recs) {
		return recs
	}
	return recs[len(recs)-n:]
}

// Stats tallies the buffer by level.
func (t *Tracer) Stats() TraceStats {
	stats := TraceStats{ByLevel: make(map[string]int)}
	if t == nil {
		return stats
	}
	recs := t.snapshot()
	stats.Total = len(recs)
	for _, rec := range recs {
		stats.ByLevel[rec.Level]++
	}
	if stats.Total > 0 {
		stats.ErrorRate = float64(stats.ByLevel[TraceError]) / float64(stats.Total)
	}
	return stats
}

// Clear drops every buffered record.
func (t *Tracer) Clear() {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.start = 0
	t.count = 0
}
