package engine

import (
	"testing"

	"github.com/preemptive/monchero-agent/internal/config"
	"github.com/preemptive/monchero-agent/internal/healthstate"
)

func TestResolveActionPrefersStateSpecific(t *testing.T) {
	cfg := config.CheckConfig{
		Action:         &config.ActionConfig{Executable: "/bin/default"},
		ActionCritical: &config.ActionConfig{Executable: "/bin/page-oncall"},
	}

	got, ok := ResolveAction(cfg, healthstate.Critical)
	if !ok || got.Executable != "/bin/page-oncall" {
		t.Fatalf("ResolveAction(Critical) = %+v, %v, want page-oncall", got, ok)
	}

	got, ok = ResolveAction(cfg, healthstate.Warning)
	if !ok || got.Executable != "/bin/default" {
		t.Fatalf("ResolveAction(Warning) = %+v, %v, want default fallback", got, ok)
	}
}

func TestResolveActionNoneConfigured(t *testing.T) {
	_, ok := ResolveAction(config.CheckConfig{}, healthstate.Critical)
	if ok {
		t.Fatal("ResolveAction() = true, want false when nothing configured")
	}
}
