package parser

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/preemptive/monchero-agent/internal/model"
)

// ParseGeneric parses script/command/nagios-dialect output (§4.2): the
// exit code drives the status via ExitCodeStatus; the first stdout line
// is the message (further split into message/metrics for the nagios
// dialect, which supports inline Nagios perfdata after a '|'); remaining
// lines become the extended message.
func ParseGeneric(log zerolog.Logger, entry *model.ExecutableEntry, checkName string, exitCode int, output []byte) map[string]model.Observation {
	status := ExitCodeStatus(exitCode, entry.Dialect, entry.OkayExitCodes, entry.WarningExitCodes, entry.CriticalExitCodes)

	lines := strings.Split(string(output), "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	var message string
	var metrics map[string]model.Metric
	if len(lines) > 0 {
		message = lines[0]
	}

	if entry.Dialect == model.DialectNagios {
		message, metrics = ParseNagiosOutputString(log, message)
	}

	if message == "" {
		message = "(no output)"
	}

	obs := model.Observation{
		CheckName: checkName,
		Status:    status,
		Message:   message,
		Metrics:   metrics,
	}
	if len(lines) > 1 {
		obs.ExtendedMessage = strings.Join(lines[1:], "\n")
	}

	return map[string]model.Observation{checkName: obs}
}

// ParseNagiosOutputString splits a Nagios plugin's first line into a
// message and its inline perfdata, honoring quoted labels that may
// contain spaces: "label=value[UOM];[warn];[crit];[min];[max]" tokens
// separated by spaces after the '|' delimiter.
func ParseNagiosOutputString(log zerolog.Logger, line string) (string, map[string]model.Metric) {
	message, metricsString, found := strings.Cut(line, "|")
	if !found {
		return line, nil
	}
	message = strings.TrimRight(message, " ")

	metricsString = strings.TrimSpace(metricsString)
	if metricsString == "" {
		return message, nil
	}

	metrics := map[string]model.Metric{}
	for _, token := range tokenizePerfdata(metricsString) {
		label, value, ok := strings.Cut(token, "=")
		if !ok {
			log.Debug().Str("token", token).Msg("nagios metric token was not parseable")
			continue
		}
		label = strings.Trim(label, "'")
		metric, err := ParseNagiosMetric(value)
		if err != nil {
			log.Debug().Str("token", token).Err(err).Msg("nagios metric token was not parseable")
			continue
		}
		metrics[label] = metric
	}
	return message, metrics
}

// tokenizePerfdata splits a Nagios perfdata string on spaces, honoring a
// single-quoted label so "'disk space'=80%;90;95" stays one token.
func tokenizePerfdata(s string) []string {
	var tokens []string
	i := 0
	for i < len(s) {
		for i < len(s) && s[i] == ' ' {
			i++
		}
		if i >= len(s) {
			break
		}
		if s[i] == '\'' {
			end := strings.IndexByte(s[i+1:], '\'')
			if end >= 0 {
				closeIdx := i + 1 + end + 1
				// token runs from the opening quote through the value
				// that follows the closing quote's '='.
				rest := s[closeIdx:]
				if strings.HasPrefix(rest, "=") {
					valEnd := strings.IndexByte(rest, ' ')
					if valEnd < 0 {
						valEnd = len(rest)
					}
					tokens = append(tokens, s[i:closeIdx]+rest[:valEnd])
					i = closeIdx + valEnd
					continue
				}
			}
		}
		start := i
		for i < len(s) && s[i] != ' ' {
			i++
		}
		tokens = append(tokens, s[start:i])
	}
	return tokens
}
