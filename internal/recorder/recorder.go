package recorder

import (
	"time"

	"github.com/google/uuid"

	"BreadthSentinel/internal/model"
)

// RunEvent holds the outcome of one evaluation run.
type RunEvent struct {
	RunID         string
	StartedAt     time.Time
	Mode          string // "live" or "backfill"
	LookbackDays  int
	Status        string // "OK" or "FAILED"
	Reason        string
	GeneratedDays int
	FromDate      string
	ToDate        string
	LitCount      int
	TriggerCount  int
	LatestState   string
}

// Run statuses.
const (
	StatusOK     = "OK"
	StatusFailed = "FAILED"
)

// NewRunID returns a fresh run identifier.
func NewRunID() string { return uuid.NewString() }

// Recorder persists run history for analysis.
type Recorder interface {
	RecordRun(evt *RunEvent) error
	RecordSignals(runID string, rows []model.BreadthRow) error
	Close() error
}
