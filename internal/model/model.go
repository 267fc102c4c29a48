// Package model holds the types shared across the agent's pipeline:
// metrics and observations produced by the parsers (C2), and the
// persistent Check Record / Executable Entry types owned by the
// Transition Engine (C5) and Scheduler (C4) respectively.
package model

import (
	"time"

	"github.com/preemptive/monchero-agent/internal/healthstate"
	"github.com/preemptive/monchero-agent/internal/threshold"
)

// Dialect selects which of the three output conventions an Executable
// Entry's stdout should be parsed as, or whether it's a config-declared
// command/nagios-style invocation.
type Dialect string

const (
	DialectNative  Dialect = "native"
	DialectCheckMK Dialect = "checkmk"
	DialectNagios  Dialect = "nagios"
	DialectScript  Dialect = "script"
	DialectCommand Dialect = "command"
)

// Metric is a named numeric observation with optional alerting ranges.
// UOM is recorded but never acted on.
type Metric struct {
	Value    float64          `json:"value"`
	UOM      string           `json:"uom,omitempty"`
	Warning  *threshold.Range `json:"-"`
	Critical *threshold.Range `json:"-"`
}

// Observation is the parsed result of one invocation of one check. A
// single plugin invocation may yield several Observations keyed by
// check name (the native multi-check format).
type Observation struct {
	CheckName       string
	Status          healthstate.State
	Message         string
	ExtendedMessage string
	Metrics         map[string]Metric

	// Interval, when non-nil, overrides the Executable Entry's configured
	// interval for subsequent scheduling. Supplements spec.md's Data Model
	// with behavior the original agent applies unconditionally to
	// native-dialect output (status['interval']).
	Interval *time.Duration
}

// CheckRecord is the persistent per-check entry in the in-memory store.
type CheckRecord struct {
	Status           healthstate.State `json:"status"`
	StatusReason     string            `json:"status_reason"`
	Message          string            `json:"message"`
	Metrics          map[string]Metric `json:"metrics,omitempty"`
	Timestamp        time.Time         `json:"timestamp"`
	ExtendedMessage  string            `json:"extended_message,omitempty"`
	SoftStatus       *healthstate.State `json:"soft_status,omitempty"`
	SoftStatusReason string            `json:"soft_status_reason,omitempty"`
	RepeatCount      int               `json:"repeat_count,omitempty"`
}

// ExecutableEntry is the scheduler-owned descriptor for one periodically
// run check.
type ExecutableEntry struct {
	CheckName string
	Filename  string
	Arguments []string
	Interval  time.Duration
	Dialect   Dialect
	NextDue   time.Time

	// Repeat is the number of consecutive confirmations required before a
	// new worst-state hardens into the recorded hard status. Zero means
	// changes apply immediately.
	Repeat int

	// Exit-code classification lists for script/command dialects (§4.2).
	// A nil/empty list means "not configured" for that tier.
	OkayExitCodes     []int
	WarningExitCodes  []int
	CriticalExitCodes []int

	// HeapIndex is maintained by internal/scheduler's container/heap
	// implementation to support heap.Fix/Remove; callers outside that
	// package must not set it.
	HeapIndex int
}
