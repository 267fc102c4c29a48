package parser

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/preemptive/monchero-agent/internal/healthstate"
)

func TestParseCheckMKBasic(t *testing.T) {
	// S3 from spec.md §8.
	line := "0 memcache connect_ms=5.27|set_get_delete_ms=7.22 Connected in 5.27 mS"
	got := ParseCheckMK(zerolog.Nop(), "memcache", []byte(line))

	obs, ok := got["memcache"]
	if !ok {
		t.Fatalf("ParseCheckMK() = %+v, missing 'memcache'", got)
	}
	if obs.Status != healthstate.OK {
		t.Errorf("Status = %v, want OK", obs.Status)
	}
	if obs.Message != "Connected in 5.27 mS" {
		t.Errorf("Message = %q, want %q", obs.Message, "Connected in 5.27 mS")
	}
	if len(obs.Metrics) != 2 {
		t.Fatalf("Metrics = %+v, want 2 entries", obs.Metrics)
	}
	if obs.Metrics["connect_ms"].Value != 5.27 {
		t.Errorf("connect_ms = %v, want 5.27", obs.Metrics["connect_ms"].Value)
	}
	if obs.Metrics["set_get_delete_ms"].Value != 7.22 {
		t.Errorf("set_get_delete_ms = %v, want 7.22", obs.Metrics["set_get_delete_ms"].Value)
	}
}

func TestParseCheckMKQuotedName(t *testing.T) {
	line := `0 "nginx threads" ActiveConn=1|reading=0|writing=1|waiting=0 OK - threads`
	got := ParseCheckMK(zerolog.Nop(), "nginx", []byte(line))

	obs, ok := got["nginx threads"]
	if !ok {
		t.Fatalf("ParseCheckMK() = %+v, missing 'nginx threads'", got)
	}
	if len(obs.Metrics) != 4 {
		t.Errorf("Metrics = %+v, want 4 entries", obs.Metrics)
	}
}

func TestParseCheckMKNoMetrics(t *testing.T) {
	line := `0 bacula_backups - OK because this host does not participate in regular backups`
	got := ParseCheckMK(zerolog.Nop(), "bacula", []byte(line))
	obs := got["bacula_backups"]
	if obs.Metrics != nil {
		t.Errorf("Metrics = %+v, want nil for '-'", obs.Metrics)
	}
}

func TestParseCheckMKExtendedMessage(t *testing.T) {
	line := `0 svc - message here\nextended detail`
	got := ParseCheckMK(zerolog.Nop(), "svc", []byte(line))
	obs := got["svc"]
	if obs.Message != "message here" {
		t.Errorf("Message = %q, want %q", obs.Message, "message here")
	}
	if obs.ExtendedMessage != "extended detail" {
		t.Errorf("ExtendedMessage = %q, want %q", obs.ExtendedMessage, "extended detail")
	}
}

func TestParseCheckMKMalformedLineSkipped(t *testing.T) {
	got := ParseCheckMK(zerolog.Nop(), "x", []byte("not enough fields\n"))
	if len(got) != 0 {
		t.Fatalf("ParseCheckMK() = %+v, want empty", got)
	}
}

func TestParseCheckMKNonIntegerStatusSkipped(t *testing.T) {
	got := ParseCheckMK(zerolog.Nop(), "x", []byte("OK svc - msg\n"))
	if len(got) != 0 {
		t.Fatalf("ParseCheckMK() = %+v, want empty", got)
	}
}

func TestTokenizeCheckMKLine(t *testing.T) {
	tests := []struct {
		line string
		want []string
	}{
		{`0 svc - msg here`, []string{"0", "svc", "-", "msg", "here"}},
		{`0 "my svc" - msg`, []string{"0", `"my svc"`, "-", "msg"}},
	}
	for _, tt := range tests {
		got := tokenizeCheckMKLine(tt.line)
		if len(got) != len(tt.want) {
			t.Fatalf("tokenizeCheckMKLine(%q) = %v, want %v", tt.line, got, tt.want)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("tokenizeCheckMKLine(%q)[%d] = %q, want %q", tt.line, i, got[i], tt.want[i])
			}
		}
	}
}
