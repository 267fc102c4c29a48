package parser

import (
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/preemptive/monchero-agent/internal/healthstate"
	"github.com/preemptive/monchero-agent/internal/model"
	"github.com/preemptive/monchero-agent/internal/threshold"
)

// ParseNative decodes native-dialect (YAML) check output into zero or more
// Observations keyed by check name (§4.2). The top level may be a single
// mapping or a sequence of mappings; each item must carry a status field
// and should carry check_name, which is lifted into the returned map's
// key. Malformed items are logged and dropped; the whole output is
// dropped only when the top-level shape is neither a mapping nor a
// sequence.
func ParseNative(log zerolog.Logger, filename string, output []byte) map[string]model.Observation {
	var raw any
	if err := yaml.Unmarshal(output, &raw); err != nil {
		log.Warn().Str("filename", filename).Err(err).Msg("could not parse native output")
		return nil
	}

	switch v := raw.(type) {
	case []any:
		result := map[string]model.Observation{}
		for _, item := range v {
			m, ok := item.(map[string]any)
			if !ok {
				log.Warn().Str("filename", filename).Msg("native output item was not a mapping - skipping it")
				continue
			}
			name, obs, ok := observationFromMapping(log, filename, m)
			if !ok {
				continue
			}
			if _, dup := result[name]; dup {
				log.Warn().Str("filename", filename).Str("check", name).Msg("duplicate check name in output - last write wins")
			}
			result[name] = obs
		}
		return result
	case map[string]any:
		name, obs, ok := observationFromMapping(log, filename, v)
		if !ok {
			return nil
		}
		return map[string]model.Observation{name: obs}
	default:
		log.Warn().Str("filename", filename).Msg("native output was not a mapping or sequence - skipping it")
		return nil
	}
}

func observationFromMapping(log zerolog.Logger, filename string, m map[string]any) (string, model.Observation, bool) {
	rawStatus, ok := m["status"]
	if !ok {
		log.Warn().Str("filename", filename).Msg("native output does not contain a 'status' key - skipping it")
		return "", model.Observation{}, false
	}

	name, _ := m["check_name"].(string)

	obs := model.Observation{
		CheckName: name,
		Status:    healthstate.Normalize(rawStatus),
	}
	if obs.Status == healthstate.Unmappable {
		obs.Status = healthstate.Unknown
		obs.Message = "Check did not provide a status"
	}
	if msg, ok := m["message"].(string); ok {
		obs.Message = msg
	}
	if ext, ok := m["extended_message"].(string); ok {
		obs.ExtendedMessage = ext
	}
	if rawMetrics, ok := m["metrics"].(map[string]any); ok {
		obs.Metrics = nativeMetrics(log, filename, rawMetrics)
	}
	if rawInterval, ok := m["interval"]; ok {
		if n, err := toNumber(rawInterval); err == nil {
			d := time.Duration(n * float64(time.Second))
			obs.Interval = &d
		}
	}

	return name, obs, true
}

func nativeMetrics(log zerolog.Logger, filename string, raw map[string]any) map[string]model.Metric {
	metrics := map[string]model.Metric{}
	for label, rawDetails := range raw {
		details, ok := rawDetails.(map[string]any)
		if !ok {
			continue
		}
		metric := model.Metric{}
		if v, ok := details["value"]; ok {
			n, err := toNumber(v)
			if err != nil {
				log.Debug().Str("filename", filename).Str("metric", label).Msg("metric value not a number")
				continue
			}
			metric.Value = n
		}
		if uom, ok := details["uom"].(string); ok {
			metric.UOM = uom
		}
		metric.Warning = nativeRange(details["warning_min"], details["warning_max"])
		metric.Critical = nativeRange(details["critical_min"], details["critical_max"])
		metrics[label] = metric
	}
	return metrics
}

// nativeRange builds a Range directly from already-numeric min/max
// fields, as native dialect metrics carry (unlike the Nagios dialects,
// which carry range tokens like "80:90"). A nil result means neither
// bound was present.
func nativeRange(rawMin, rawMax any) *threshold.Range {
	if rawMin == nil && rawMax == nil {
		return nil
	}
	r := threshold.Range{Mode: threshold.Outside}
	if rawMin != nil {
		if n, err := toNumber(rawMin); err == nil {
			r.Min = &n
		}
	}
	if rawMax != nil {
		if n, err := toNumber(rawMax); err == nil {
			r.Max = &n
		}
	}
	return &r
}
