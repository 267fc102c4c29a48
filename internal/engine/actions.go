package engine

import (
	"github.com/preemptive/monchero-agent/internal/config"
	"github.com/preemptive/monchero-agent/internal/healthstate"
)

// ResolveAction picks the action configured to run for a change event
// landing a check in newState, per §4.5's precedence: a state-specific
// action_<newstate> wins over the unconditional "action" fallback. The
// second return value is false when neither is configured.
func ResolveAction(cfg config.CheckConfig, newState healthstate.State) (config.ActionConfig, bool) {
	var specific *config.ActionConfig
	switch newState {
	case healthstate.OK:
		specific = cfg.ActionOK
	case healthstate.Warning:
		specific = cfg.ActionWarning
	case healthstate.Critical:
		specific = cfg.ActionCritical
	}
	if specific != nil {
		return *specific, true
	}
	if cfg.Action != nil {
		return *cfg.Action, true
	}
	return config.ActionConfig{}, false
}
