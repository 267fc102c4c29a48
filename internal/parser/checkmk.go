package parser

import (
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/preemptive/monchero-agent/internal/healthstate"
	"github.com/preemptive/monchero-agent/internal/model"
)

// ParseCheckMK parses CheckMK local-check output (§4.2): one observation
// per non-empty line, tokenized as "status name metrics message...", with
// double-quoted names honored so a check name may contain spaces.
func ParseCheckMK(log zerolog.Logger, filename string, output []byte) map[string]model.Observation {
	result := map[string]model.Observation{}

	for _, line := range strings.Split(string(output), "\n") {
		if line == "" {
			continue
		}

		parts := tokenizeCheckMKLine(line)
		if len(parts) < 3 {
			log.Debug().Str("filename", filename).Str("line", line).Msg("skipping malformed checkmk line")
			continue
		}

		statusCode, err := strconv.Atoi(parts[0])
		if err != nil {
			log.Debug().Str("filename", filename).Str("line", line).Msg("non-integer status in checkmk line")
			continue
		}

		name := strings.Trim(parts[1], `"`)
		metricsString := parts[2]
		message := strings.Join(parts[3:], " ")

		status := healthstate.Normalize(statusCode)
		if status == healthstate.Unmappable {
			status = healthstate.Unknown
		}

		obs := model.Observation{
			CheckName: name,
			Status:    status,
		}

		if metricsString != "-" {
			obs.Metrics = map[string]model.Metric{}
			for _, item := range strings.Split(metricsString, "|") {
				key, value, ok := strings.Cut(item, "=")
				if !ok {
					log.Debug().Str("filename", filename).Str("metric", item).Msg("could not parse checkmk metric")
					continue
				}
				metric, err := ParseNagiosMetric(value)
				if err != nil {
					log.Debug().Str("filename", filename).Str("metric", item).Err(err).Msg("could not parse checkmk metric")
					continue
				}
				obs.Metrics[key] = metric
			}
		}

		// CheckMK separates message from extended-message with the literal
		// two-character sequence \n (backslash-n), not an actual newline.
		if before, after, found := strings.Cut(message, `\n`); found {
			message = before
			obs.ExtendedMessage = after
		}
		obs.Message = message

		if _, dup := result[name]; dup {
			log.Warn().Str("filename", filename).Str("check", name).Msg("duplicate check name in output - last write wins")
		}
		result[name] = obs
	}

	return result
}

// tokenizeCheckMKLine splits a CheckMK line on whitespace, honoring
// double-quoted tokens that may contain embedded spaces — the Go
// equivalent of the original agent's `[^"\s]\S*|".+?"` regex.
func tokenizeCheckMKLine(line string) []string {
	var tokens []string
	i := 0
	for i < len(line) {
		for i < len(line) && line[i] == ' ' {
			i++
		}
		if i >= len(line) {
			break
		}
		if line[i] == '"' {
			end := strings.IndexByte(line[i+1:], '"')
			if end < 0 {
				tokens = append(tokens, line[i:])
				break
			}
			tokens = append(tokens, line[i:i+1+end+1])
			i = i + 1 + end + 1
			continue
		}
		start := i
		for i < len(line) && line[i] != ' ' {
			i++
		}
		tokens = append(tokens, line[start:i])
	}
	return tokens
}
