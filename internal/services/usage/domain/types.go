// Package domain holds usage event types independent of transport or storage
package domain

import (
	"context"
	"time"
)

// Outcome is the terminal state of one explanation request
type Outcome string

// Outcomes recorded for explanation requests
const (
	OutcomeSuccess          Outcome = "success"
	OutcomeGenerationFailed Outcome = "generation_failed"
	OutcomePersistFailed    Outcome = "persist_failed"
	OutcomeCancelled        Outcome = "cancelled"
)

// Event is one row of explanation_events
type Event struct {
	At          time.Time
	RequestID   string
	UserID      string
	Language    string
	Mode        string
	Provider    string
	Stream      bool
	Outcome     Outcome
	CodeChars   int
	OutputChars int
	Latency     time.Duration
	Warnings    []string
}

// Summary counts a caller's explanation requests since a point in time
type Summary struct {
	Since      time.Time         `json:"since"`
	Total      uint64            `json:"total"`
	ByLanguage map[string]uint64 `json:"byLanguage"`
	ByOutcome  map[string]uint64 `json:"byOutcome"`
}

// SinkPort accepts events; it never fails the caller
type SinkPort interface {
	Record(ctx context.Context, e Event)
}

// ReaderPort summarizes recorded events
type ReaderPort interface {
	Summary(ctx context.Context, userID string, since time.Time) (Summary, error)
}

// Nop drops every event
type Nop struct{}

// Record implements SinkPort
func (Nop) Record(context.Context, Event) {}
