package parser

import (
	"fmt"
	"strconv"
	"strings"
)

// toNumber coerces a YAML-decoded scalar to a float64. Strings are trimmed
// and parsed with strconv.ParseFloat whether or not they contain a '.'.
func toNumber(v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case float32:
		return float64(t), nil
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, fmt.Errorf("could not convert %q to a number", t)
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("could not convert %q to a number", t)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("could not convert %v (type %T) to a number", v, v)
	}
}
