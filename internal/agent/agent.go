// Package agent wires the core components (C1-C8) into one long-lived
// value per §9's "replace module-level globals with an explicit struct"
// design note, and drives the single-threaded cooperative scheduling
// loop described in §5.
package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/preemptive/monchero-agent/internal/config"
	"github.com/preemptive/monchero-agent/internal/engine"
	"github.com/preemptive/monchero-agent/internal/healthstate"
	"github.com/preemptive/monchero-agent/internal/model"
	"github.com/preemptive/monchero-agent/internal/parser"
	"github.com/preemptive/monchero-agent/internal/reporter"
	"github.com/preemptive/monchero-agent/internal/runner"
	"github.com/preemptive/monchero-agent/internal/scheduler"
)

// minSuspension is the smallest delay worth actually sleeping for; below
// it the control loop just executes the due entry immediately, matching
// §5's "sleeping for head-delay/2" suspension point without busy-looping
// at sub-millisecond granularity.
const minSuspension = 100 * time.Millisecond

// ReportInterval is how often the control loop snapshots the store,
// matching §4.4/§4.6's ~50s snapshot cadence. Check executions do not
// trigger reports themselves.
const ReportInterval = 50 * time.Second

// Agent owns the Scheduler, Engine, Reporter and merged Config, and is
// the sole driver of the control loop (§5). It is not safe for
// concurrent use.
type Agent struct {
	Scheduler      *scheduler.Scheduler
	Engine         *engine.Engine
	Reporter       *reporter.Reporter
	Config         config.Config
	Log            zerolog.Logger
	ReportInterval time.Duration
}

// New returns an Agent ready to Run, given a populated scheduler.
func New(sched *scheduler.Scheduler, eng *engine.Engine, rep *reporter.Reporter, cfg config.Config, log zerolog.Logger) *Agent {
	return &Agent{
		Scheduler:      sched,
		Engine:         eng,
		Reporter:       rep,
		Config:         cfg,
		Log:            log,
		ReportInterval: ReportInterval,
	}
}

// Run drives the control loop until ctx is canceled. Per §9's redesign of
// the source's "sleep 10s on empty queue forever" behavior, a scheduler
// that starts out empty is a hard startup error rather than a silent
// idle loop.
func (a *Agent) Run(ctx context.Context) error {
	if a.Scheduler.Len() == 0 {
		return fmt.Errorf("agent: no executable entries discovered; refusing to start idle")
	}

	lastReport := time.Now()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		head := a.Scheduler.PeekHead()
		now := time.Now()
		delay := head.NextDue.Sub(now)

		if delay < minSuspension {
			entry := a.Scheduler.PopAndReschedule(now)
			a.runEntry(ctx, entry, now)
		} else if waitErr := a.sleep(ctx, delay/2); waitErr != nil {
			return nil
		}

		if time.Since(lastReport) >= a.ReportInterval {
			a.Reporter.Report(ctx, a.Engine.Records(), time.Now())
			lastReport = time.Now()
		}
	}
}

// sleep waits for d or until ctx is canceled, returning ctx.Err() in the
// latter case.
func (a *Agent) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		d = time.Millisecond
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// runEntry executes one due Executable Entry synchronously: runs the
// child process, parses its output per dialect, and folds every resulting
// observation into the Transition Engine, firing configured actions for
// any resulting change event.
func (a *Agent) runEntry(ctx context.Context, entry *model.ExecutableEntry, now time.Time) {
	timeout := runner.Timeout(entry.Interval)
	result, err := runner.Run(ctx, timeout, entry.Filename, entry.Arguments)
	if err != nil {
		a.Log.Warn().Str("check", entry.CheckName).Str("filename", entry.Filename).Err(err).Msg("plugin did not run to completion")
		obs := model.Observation{
			CheckName: entry.CheckName,
			Status:    healthstate.Unknown,
			Message:   fmt.Sprintf("plugin did not run: %s", err),
		}
		a.applyObservation(ctx, entry.CheckName, obs, now)
		return
	}

	if len(result.Stderr) > 0 {
		a.Log.Warn().Str("check", entry.CheckName).Str("filename", entry.Filename).Str("stderr", string(result.Stderr)).Msg("plugin wrote to stderr")
	}

	observations := a.parseOutput(entry, result)
	if len(observations) == 0 {
		obs := model.Observation{
			CheckName: entry.CheckName,
			Status:    healthstate.Unknown,
			Message:   "plugin produced no parseable output",
		}
		a.applyObservation(ctx, entry.CheckName, obs, now)
		return
	}

	for checkName, obs := range observations {
		if obs.Interval != nil {
			entry.Interval = *obs.Interval
		}
		a.applyObservation(ctx, checkName, obs, now)
	}
}

// parseOutput dispatches to the dialect-appropriate parser (§4.2).
func (a *Agent) parseOutput(entry *model.ExecutableEntry, result runner.Result) map[string]model.Observation {
	switch entry.Dialect {
	case model.DialectNative:
		return parser.ParseNative(a.Log, entry.Filename, result.Stdout)
	case model.DialectCheckMK:
		return parser.ParseCheckMK(a.Log, entry.Filename, result.Stdout)
	default:
		return parser.ParseGeneric(a.Log, entry, entry.CheckName, result.ExitCode, result.Stdout)
	}
}

// applyObservation folds one observation into the Transition Engine and
// runs any action the resulting change event configures.
func (a *Agent) applyObservation(ctx context.Context, checkName string, obs model.Observation, now time.Time) {
	repeat := a.Config.CheckConfig[checkName].Repeat

	event := a.Engine.Apply(checkName, obs, repeat, now)
	if event == nil {
		return
	}

	a.Log.Info().
		Str("check", event.Check).
		Str("from", event.From.String()).
		Str("to", event.To.String()).
		Str("reason", event.Reason).
		Msg("check state changed")

	cfg, ok := a.Config.CheckConfig[checkName]
	if !ok {
		return
	}
	action, ok := engine.ResolveAction(cfg, event.To)
	if !ok {
		return
	}
	a.runAction(ctx, checkName, action)
}

// runAction invokes a configured action executable, bounded by the same
// maximum timeout as a check invocation. Its outcome is logged only; an
// action never feeds back into the Transition Engine.
func (a *Agent) runAction(ctx context.Context, checkName string, action config.ActionConfig) {
	result, err := runner.Run(ctx, runner.MaxTimeout, action.Executable, action.Arguments)
	if err != nil {
		a.Log.Error().Str("check", checkName).Str("executable", action.Executable).Err(err).Msg("action did not run to completion")
		return
	}
	a.Log.Info().Str("check", checkName).Str("executable", action.Executable).Int("exit_code", result.ExitCode).Msg("action ran")
}
