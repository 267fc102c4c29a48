package parser

import (
	"github.com/atc0005/go-nagios"

	"github.com/preemptive/monchero-agent/internal/healthstate"
	"github.com/preemptive/monchero-agent/internal/model"
)

// ExitCodeStatus maps a child process exit code to a health state per
// §4.2. For the "nagios" dialect, the classic 0/1/2/else mapping always
// applies. Otherwise the per-check okay/warning/critical exit-code lists
// are consulted with the fallback hierarchy: explicit match first; a zero
// code with no lists configured is OK; any list configured with no match
// is Unknown; otherwise a nonzero code with nothing configured is
// Critical.
func ExitCodeStatus(code int, dialect model.Dialect, okay, warning, critical []int) healthstate.State {
	if dialect == model.DialectNagios {
		switch code {
		case nagios.StateOKExitCode:
			return healthstate.OK
		case nagios.StateWARNINGExitCode:
			return healthstate.Warning
		case nagios.StateCRITICALExitCode:
			return healthstate.Critical
		default:
			return healthstate.Unknown
		}
	}

	if containsInt(okay, code) {
		return healthstate.OK
	}
	if containsInt(warning, code) {
		return healthstate.Warning
	}
	if containsInt(critical, code) {
		return healthstate.Critical
	}

	if len(okay) > 0 || len(warning) > 0 || len(critical) > 0 {
		return healthstate.Unknown
	}

	if code == 0 {
		return healthstate.OK
	}

	return healthstate.Critical
}

func containsInt(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
