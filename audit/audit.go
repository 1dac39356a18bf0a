// Package audit records ledger-mutating sale operations as an append-only
// JSONL trail: one JSON object per line, written in call order.
package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Event is one recorded operation.
type Event struct {
	ID     string    `json:"id"`     // uuid, assigned by the recorder if empty
	Time   time.Time `json:"time"`   // assigned by the recorder if zero
	Sale   string    `json:"sale"`   // issued-token address, hex
	Actor  string    `json:"actor"`  // caller address, hex
	Action string    `json:"action"` // operation name, e.g. "deposit"
	Amount string    `json:"amount"` // decimal token amount
}

// Recorder appends events to a writer, one JSON line each.
// It is safe for concurrent use.
type Recorder struct {
	mu  sync.Mutex
	w   io.Writer
	c   io.Closer // non-nil when the recorder owns the destination
	log zerolog.Logger
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithLogger mirrors every recorded event to log at debug level.
func WithLogger(log zerolog.Logger) RecorderOption {
	return func(r *Recorder) { r.log = log }
}

// NewRecorder creates a recorder writing to w.
func NewRecorder(w io.Writer, opts ...RecorderOption) *Recorder {
	r := &Recorder{w: w, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Open creates a recorder appending to the file at path, creating it if
// needed. The caller must Close the recorder when done.
func Open(path string, opts ...RecorderOption) (*Recorder, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("audit: open trail: %w", err)
	}
	r := NewRecorder(f, opts...)
	r.c = f
	return r, nil
}

// Record appends one event. Missing ID and Time fields are filled in.
func (r *Recorder) Record(ev Event) error {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.Time.IsZero() {
		ev.Time = time.Now().UTC()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("audit: encode event: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := r.w.Write(append(data, '\n')); err != nil {
		r.log.Error().Err(err).Str("action", ev.Action).Msg("audit write failed")
		return fmt.Errorf("audit: write event: %w", err)
	}
	r.log.Debug().
		Str("sale", ev.Sale).
		Str("actor", ev.Actor).
		Str("action", ev.Action).
		Str("amount", ev.Amount).
		Msg("audit event")
	return nil
}

// Close closes the underlying file if the recorder owns one.
func (r *Recorder) Close() error {
	if r.c == nil {
		return nil
	}
	return r.c.Close()
}

// ReadEvents parses a JSONL trail back into events. Blank lines are skipped;
// a malformed line fails the whole read with its line number.
func ReadEvents(r io.Reader) ([]Event, error) {
	var events []Event
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if line == "" {
			continue
		}
		var ev Event
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			return nil, fmt.Errorf("audit: line %d: invalid JSON: %w", lineNum, err)
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("audit: read trail: %w", err)
	}
	return events, nil
}

// ReadFile parses the JSONL trail at path.
func ReadFile(path string) ([]Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("audit: open trail: %w", err)
	}
	defer f.Close()
	return ReadEvents(f)
}
