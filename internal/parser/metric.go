package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/preemptive/monchero-agent/internal/model"
	"github.com/preemptive/monchero-agent/internal/threshold"
)

// ParseNagiosMetric parses the Nagios/CheckMK metric grammar (§4.2.3):
//
//	value[UOM];[warn];[crit];[min];[max]
//
// Value is digits with an optional dot and optional leading sign; any
// trailing non-numeric characters are the UOM, preserved but unused.
// warn/crit are threshold ranges (§4.1); min/max are parsed away but not
// retained, matching the original agent.
//
// An unparseable warning or critical range is discarded permissively
// rather than failing the whole metric (§9 design note): only an
// unparseable value is an error.
func ParseNagiosMetric(token string) (model.Metric, error) {
	fields := strings.Split(token, ";")

	numPart, uom := splitValueUOM(fields[0])
	value, err := strconv.ParseFloat(numPart, 64)
	if err != nil {
		return model.Metric{}, fmt.Errorf("invalid metric value %q: %w", fields[0], err)
	}

	m := model.Metric{Value: value, UOM: uom}

	if len(fields) > 1 && fields[1] != "" {
		if r, err := threshold.Parse(fields[1]); err == nil {
			m.Warning = &r
		}
	}
	if len(fields) > 2 && fields[2] != "" {
		if r, err := threshold.Parse(fields[2]); err == nil {
			m.Critical = &r
		}
	}
	// fields[3] (min) and fields[4] (max), if present, are parsed away by
	// the Nagios convention but never retained.

	return m, nil
}

// splitValueUOM separates a numeric prefix (optional sign, digits, optional
// dot and more digits) from a trailing unit-of-measurement suffix.
func splitValueUOM(s string) (numPart, uom string) {
	i := 0
	if i < len(s) && (s[i] == '-' || s[i] == '+') {
		i++
	}
	seenDot := false
	for i < len(s) {
		c := s[i]
		if c >= '0' && c <= '9' {
			i++
			continue
		}
		if c == '.' && !seenDot {
			seenDot = true
			i++
			continue
		}
		break
	}
	return s[:i], s[i:]
}
