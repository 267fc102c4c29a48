// Package threshold parses and evaluates Nagios-style threshold ranges:
// the "[@][min][:[max]]" grammar from the Nagios Plugin Development
// Guidelines, as this agent actually implements it (ported from
// parse_nagios_range/check_metric_in_range in the original agent), which
// differs from the textbook guideline in one place: a bare number with no
// colon sets the minimum alone and leaves the maximum unbounded, rather
// than meaning "0 to N".
//
//	10      alert if value >= 10            (min 10, no max)
//	10:     alert if value >= 10            (min 10, no max)
//	~:10    never alerts                    (outside mode trips only with a min)
//	10:20   alert if 10 <= value < 20       (outside mode, [10, 20))
//	@10:20  alert if value < 10 or > 20     (inside mode, [10, 20])
//
// This package has zero external dependencies.
package threshold

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/preemptive/monchero-agent/internal/healthstate"
)

// Mode selects whether a Range alerts on values outside or inside its
// bounds.
type Mode int

const (
	// Outside is the default: the range trips when the value falls
	// within [Min, Max).
	Outside Mode = iota
	// Inside trips when the value falls outside [Min, Max].
	Inside
)

// BadRange is returned by Parse when the input can't be interpreted as a
// threshold range: a non-numeric bound, or a max that does not exceed min.
type BadRange struct {
	Input  string
	Reason string
}

func (e *BadRange) Error() string {
	return fmt.Sprintf("bad range %q: %s", e.Input, e.Reason)
}

// Range is a parsed threshold: optional min/max bounds and a mode. A nil
// Min means unbounded below (-infinity); a nil Max means unbounded above
// (+infinity).
type Range struct {
	Min  *float64
	Max  *float64
	Mode Mode
}

// Parse parses a token of the form "[@][min][:[max]]".
//
// Rules:
//   - A leading '@' flips Mode from Outside to Inside.
//   - No colon: the token is the minimum alone; the maximum is unset.
//   - Empty min before the colon means min = 0; '~' means min unset (-inf).
//   - Empty max after the colon means max unset (+inf).
//   - Fails with *BadRange when a required number isn't one, or when both
//     bounds are set and max does not exceed min.
func Parse(s string) (Range, error) {
	if s == "" {
		return Range{}, &BadRange{Input: s, Reason: "must not be empty"}
	}

	r := Range{Mode: Outside}
	rest := s
	if strings.HasPrefix(rest, "@") {
		r.Mode = Inside
		rest = rest[1:]
	}

	if idx := strings.IndexByte(rest, ':'); idx >= 0 {
		minStr, maxStr := rest[:idx], rest[idx+1:]

		switch minStr {
		case "~":
			r.Min = nil
		case "":
			zero := 0.0
			r.Min = &zero
		default:
			v, err := strconv.ParseFloat(minStr, 64)
			if err != nil {
				return Range{}, &BadRange{Input: s, Reason: fmt.Sprintf("invalid minimum %q", minStr)}
			}
			r.Min = &v
		}

		if maxStr == "" {
			r.Max = nil
		} else {
			v, err := strconv.ParseFloat(maxStr, 64)
			if err != nil {
				return Range{}, &BadRange{Input: s, Reason: fmt.Sprintf("invalid maximum %q", maxStr)}
			}
			r.Max = &v
		}
	} else {
		// No colon: the token is the minimum alone.
		v, err := strconv.ParseFloat(rest, 64)
		if err != nil {
			return Range{}, &BadRange{Input: s, Reason: fmt.Sprintf("invalid value %q", rest)}
		}
		r.Min = &v
		r.Max = nil
	}

	if r.Min != nil && r.Max != nil && *r.Max <= *r.Min {
		return Range{}, &BadRange{Input: s, Reason: fmt.Sprintf("max %s must exceed min %s", formatFloat(*r.Max), formatFloat(*r.Min))}
	}

	return r, nil
}

// Violated reports whether value trips this range, per the outside/inside
// rule given in the package doc:
//
//	outside: (min set ∧ value ≥ min) ∧ (max unset ∨ value < max)
//	inside:  (min set ∧ value < min) ∨ (max set ∧ value > max)
func (r Range) Violated(value float64) bool {
	if r.Mode == Inside {
		if r.Min != nil && value < *r.Min {
			return true
		}
		if r.Max != nil && value > *r.Max {
			return true
		}
		return false
	}

	if r.Min == nil || value < *r.Min {
		return false
	}
	return r.Max == nil || value < *r.Max
}

// String serializes the Range back to Nagios range notation; Parse(r.String())
// reproduces equivalent trip behavior.
func (r Range) String() string {
	var b strings.Builder
	if r.Mode == Inside {
		b.WriteByte('@')
	}

	switch {
	case r.Min == nil && r.Max == nil:
		b.WriteString("~:")
	case r.Min == nil:
		b.WriteString("~:")
		b.WriteString(formatFloat(*r.Max))
	case r.Max == nil:
		b.WriteString(formatFloat(*r.Min))
		b.WriteByte(':')
	default:
		b.WriteString(formatFloat(*r.Min))
		b.WriteByte(':')
		b.WriteString(formatFloat(*r.Max))
	}
	return b.String()
}

// formatFloat formats a float64 as a compact string: integers without a
// decimal point (e.g. "80"), and fractional values with minimal precision
// (e.g. "1.5").
func formatFloat(v float64) string {
	if v == math.Trunc(v) && !math.IsInf(v, 0) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WorstForMetric implements check_metric_in_range: given a value and
// optional warning/critical ranges, returns the worst health state the
// value justifies. Critical is evaluated before warning; the first range
// that trips wins. A nil range never trips.
func WorstForMetric(value float64, warning, critical *Range) healthstate.State {
	if critical != nil && critical.Violated(value) {
		return healthstate.Critical
	}
	if warning != nil && warning.Violated(value) {
		return healthstate.Warning
	}
	return healthstate.OK
}
