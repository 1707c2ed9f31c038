package model

// State is the classifier output label. The text values are persisted as-is.
type State string

const (
	StateTriggered          State = "TRIGGERED"
	StateWatchStrictInitial State = "WATCH (STRICT-INITIAL)"
	StateWatchStrictCluster State = "WATCH (STRICT-CLUSTER)"
	StateWatchLite          State = "WATCH (LITE)"
	StateWatchLiteBase      State = "WATCH (LITE-BASE)"
	StateNoSignal           State = "NO SIGNAL"
)

// Mode is the classifier confidence tier.
type Mode string

const (
	ModeStrict Mode = "strict"
	ModeLite   Mode = "lite"
)

// Risk is the coarse risk level attached to a state.
type Risk string

const (
	RiskLow  Risk = "low"
	RiskMid  Risk = "mid"
	RiskHigh Risk = "high"
)

// BaseSignal is the result of the daily highs/lows threshold test.
type BaseSignal struct {
	Signal         bool
	ThresholdCount *int
}

// BreadthRow is one joined and classified trading day.
type BreadthRow struct {
	Date         string
	Advances     *int
	Declines     *int
	NetAdvances  *int
	NewHighs     *int
	NewLows      *int
	IssuesTraded *int
	Trin         *float64

	BaseSignal     bool
	ThresholdCount *int

	// Diagnostics filled by the classifier, not persisted.
	Oscillator         *float64
	TrendCondition     *bool
	ClusterSignalCount int

	State     State
	Mode      Mode
	Risk      Risk
	Triggered bool
	LampOn    bool
}

// RunSummary is returned to the driving process after a successful run.
type RunSummary struct {
	RunID         string `json:"run_id"`
	GeneratedDays int    `json:"generated_days"`
	FromDate      string `json:"from_date"`
	ToDate        string `json:"to_date"`
	LitCount      int    `json:"lit_count"`
	TriggerCount  int    `json:"trigger_count"`

	Latest   *BreadthRow    `json:"-"`
	Previous *HistoryRecord `json:"-"`
	Rows     []BreadthRow   `json:"-"`
}
