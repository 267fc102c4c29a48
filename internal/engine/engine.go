// Package engine implements the Transition Engine (C5): it folds a
// check's observation (and any per-metric threshold evaluations) into
// the in-memory Check Record store, enforcing soft/hard state "flap"
// suppression and emitting change events for confirmed transitions.
package engine

import (
	"fmt"
	"time"

	"github.com/preemptive/monchero-agent/internal/healthstate"
	"github.com/preemptive/monchero-agent/internal/model"
	"github.com/preemptive/monchero-agent/internal/threshold"
)

// ChangeEvent is emitted when a check's hard status actually changes
// (immediately for repeat==0, or once a soft state hardens for repeat>0).
type ChangeEvent struct {
	Check       string
	From        healthstate.State
	To          healthstate.State
	Reason      string
	Timestamp   time.Time
	RepeatCount int
}

// Engine owns the Check Record store. It is not safe for concurrent use;
// per §5 it is driven exclusively by the agent's single control thread.
type Engine struct {
	records map[string]*model.CheckRecord
}

// New returns an Engine with an empty store.
func New() *Engine {
	return &Engine{records: map[string]*model.CheckRecord{}}
}

// Records exposes the store for the Reporter to snapshot. Callers must
// not mutate the returned map or its values.
func (e *Engine) Records() map[string]*model.CheckRecord {
	return e.records
}

// Apply folds one observation into the store for checkName (§4.5): it
// loads (or synthesizes) the prior record, computes the metric-derived
// state, folds it with the observation's own status, and either updates
// the record immediately (repeat==0) or tracks a soft state until repeat
// consecutive confirmations harden it. It returns a non-nil ChangeEvent
// only when the hard status actually changed on this call. Any return to
// the prior hard state resets soft fields without emitting an event.
func (e *Engine) Apply(checkName string, obs model.Observation, repeat int, now time.Time) *ChangeEvent {
	prior, existed := e.records[checkName]
	if !existed {
		prior = &model.CheckRecord{Status: obs.Status}
	}

	metricState, metricReason := worstMetricState(checkName, obs.Metrics)
	worst := healthstate.Worst(obs.Status, metricState)

	var reason string
	if metricState == worst && metricState != obs.Status {
		reason = metricReason
	} else {
		reason = fmt.Sprintf("Check '%s' set the state to %s", checkName, obs.Status)
	}

	record := &model.CheckRecord{
		Message:         obs.Message,
		Metrics:         obs.Metrics,
		Timestamp:       now,
		ExtendedMessage: obs.ExtendedMessage,
		Status:          prior.Status,
		StatusReason:    reason,
	}

	if worst == prior.Status {
		e.records[checkName] = record
		return nil
	}

	if repeat <= 0 {
		record.Status = worst
		e.records[checkName] = record
		return &ChangeEvent{Check: checkName, From: prior.Status, To: worst, Reason: reason, Timestamp: now}
	}

	count := prior.RepeatCount + 1
	if count >= repeat {
		record.Status = worst
		e.records[checkName] = record
		return &ChangeEvent{Check: checkName, From: prior.Status, To: worst, Reason: reason, Timestamp: now, RepeatCount: repeat}
	}

	record.StatusReason = prior.StatusReason
	record.RepeatCount = count
	record.SoftStatus = &worst
	record.SoftStatusReason = reason
	e.records[checkName] = record
	return nil
}

// worstMetricState folds §4.1's per-metric evaluation across an
// observation's metrics with max(OK,Warning,Critical); metrics never
// drive Unknown. Returns OK with an empty reason when there are no
// metrics or none trip. reason names whichever metric drove the worst
// result.
func worstMetricState(checkName string, metrics map[string]model.Metric) (healthstate.State, string) {
	worst := healthstate.OK
	reason := ""
	for label, metric := range metrics {
		state := threshold.WorstForMetric(metric.Value, metric.Warning, metric.Critical)
		if state != worst && healthstate.Worst(worst, state) == state {
			worst = state
			reason = fmt.Sprintf("Check '%s' metric '%s' set the state to %s", checkName, label, state)
		}
	}
	return worst, reason
}
