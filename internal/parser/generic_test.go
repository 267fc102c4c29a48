package parser

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/preemptive/monchero-agent/internal/healthstate"
	"github.com/preemptive/monchero-agent/internal/model"
)

func TestParseGenericNagiosDialect(t *testing.T) {
	// S4 from spec.md §8.
	output := []byte("HTTP OK: HTTP/1.1 200 OK - 659 bytes in 0.025 second response time |time=0.025030s;;;0.000000 size=659B;;;0")
	entry := &model.ExecutableEntry{Dialect: model.DialectNagios}

	got := ParseGeneric(zerolog.Nop(), entry, "http", 0, output)
	obs := got["http"]

	if obs.Status != healthstate.OK {
		t.Errorf("Status = %v, want OK", obs.Status)
	}
	want := "HTTP OK: HTTP/1.1 200 OK - 659 bytes in 0.025 second response time"
	if obs.Message != want {
		t.Errorf("Message = %q, want %q", obs.Message, want)
	}
	if len(obs.Metrics) != 2 {
		t.Fatalf("Metrics = %+v, want 2 entries", obs.Metrics)
	}
	if obs.Metrics["time"].Value != 0.02503 {
		t.Errorf("time = %v, want 0.02503", obs.Metrics["time"].Value)
	}
	if obs.Metrics["size"].Value != 659 {
		t.Errorf("size = %v, want 659", obs.Metrics["size"].Value)
	}
}

func TestParseGenericScriptDialectNoMetrics(t *testing.T) {
	entry := &model.ExecutableEntry{Dialect: model.DialectScript}
	output := []byte("all good\nextra line one\nextra line two\n")

	got := ParseGeneric(zerolog.Nop(), entry, "widget", 0, output)
	obs := got["widget"]

	if obs.Status != healthstate.OK {
		t.Errorf("Status = %v, want OK", obs.Status)
	}
	if obs.Message != "all good" {
		t.Errorf("Message = %q, want %q", obs.Message, "all good")
	}
	if obs.ExtendedMessage != "extra line one\nextra line two" {
		t.Errorf("ExtendedMessage = %q", obs.ExtendedMessage)
	}
	if obs.Metrics != nil {
		t.Errorf("Metrics = %+v, want nil for script dialect", obs.Metrics)
	}
}

func TestParseGenericEmptyOutput(t *testing.T) {
	entry := &model.ExecutableEntry{Dialect: model.DialectScript}
	got := ParseGeneric(zerolog.Nop(), entry, "quiet", 0, []byte(""))
	obs := got["quiet"]
	if obs.Message != "(no output)" {
		t.Errorf("Message = %q, want %q", obs.Message, "(no output)")
	}
}

func TestParseGenericCommandDialectExitCodeLists(t *testing.T) {
	entry := &model.ExecutableEntry{
		Dialect:           model.DialectCommand,
		WarningExitCodes:  []int{1},
		CriticalExitCodes: []int{2},
	}
	got := ParseGeneric(zerolog.Nop(), entry, "job", 2, []byte("failed\n"))
	if got["job"].Status != healthstate.Critical {
		t.Errorf("Status = %v, want Critical", got["job"].Status)
	}
}
