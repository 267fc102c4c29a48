// Package healthstate defines the canonical four-value health state enum
// shared by every check in the agent, along with the "wash" logic that
// normalizes arbitrary plugin status tokens into it.
package healthstate

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// State is one of the four canonical health states. The zero value is OK.
type State int

const (
	OK State = iota
	Warning
	Critical
	Unknown
)

// String returns the canonical display name used in the state file and in
// reason strings.
func (s State) String() string {
	switch s {
	case OK:
		return "OK"
	case Warning:
		return "Warning"
	case Critical:
		return "Critical"
	case Unknown:
		return "Unknown"
	default:
		return "Unknown"
	}
}

// rank gives OK < Warning < Critical < Unknown an explicit total order for
// comparisons unrelated to escalation (e.g. Worst). Escalation itself
// never promotes into Unknown except when the observation status is
// itself Unknown; see Worst.
func (s State) rank() int {
	switch s {
	case OK:
		return 0
	case Warning:
		return 1
	case Critical:
		return 2
	default:
		return 3
	}
}

// Less reports whether s is strictly less severe than other under
// OK < Warning < Critical < Unknown.
func (s State) Less(other State) bool {
	return s.rank() < other.rank()
}

// Worst returns the more severe of two states under OK < Warning < Critical,
// never promoting to Unknown unless one of the inputs already is Unknown.
// This implements choose_maximum_status from the original agent: Unknown
// only propagates when it's already present, it's never the "winner" of a
// numeric comparison between OK/Warning/Critical.
func Worst(a, b State) State {
	if a == Unknown {
		return a
	}
	if b == Unknown {
		return b
	}
	if a.rank() >= b.rank() {
		return a
	}
	return b
}

// Unmappable is returned by Normalize when no input shape recognizes the
// status token. Callers should store status = Unknown with a synthetic
// reason rather than propagating this as an error.
var Unmappable = State(-1)

// Normalize washes an arbitrary "status" token into one of the four
// canonical states. It accepts the canonical strings (any case, trimmed),
// and the integers/integer-strings 0/1/2/3. Anything else returns
// Unmappable.
func Normalize(raw any) State {
	switch v := raw.(type) {
	case State:
		return v
	case int:
		return normalizeInt(v)
	case int64:
		return normalizeInt(int(v))
	case float64:
		if v != math.Trunc(v) {
			return Unmappable
		}
		return normalizeInt(int(v))
	case string:
		return normalizeString(v)
	default:
		return Unmappable
	}
}

func normalizeInt(v int) State {
	switch v {
	case 0:
		return OK
	case 1:
		return Warning
	case 2:
		return Critical
	case 3:
		return Unknown
	default:
		return Unmappable
	}
}

// MarshalJSON renders the state as its canonical display name, matching
// the state.json schema.
func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON parses a canonical display name back into a State. Unlike
// Normalize, an unrecognized token is a hard error here: the state file is
// a format this agent itself writes, so a mismatch means corruption, not a
// plugin's loose status token.
func (s *State) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return err
	}
	v := normalizeString(str)
	if v == Unmappable {
		return fmt.Errorf("healthstate: unrecognized state %q", str)
	}
	*s = v
	return nil
}

func normalizeString(v string) State {
	v = strings.ToLower(strings.TrimSpace(v))
	switch v {
	case "ok", "0":
		return OK
	case "warning", "1":
		return Warning
	case "critical", "2":
		return Critical
	case "unknown", "3":
		return Unknown
	default:
		return Unmappable
	}
}
