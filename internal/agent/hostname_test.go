package agent

import "testing"

func TestResolveHostnameNeverEmpty(t *testing.T) {
	got := ResolveHostname()
	if got == "" {
		t.Fatal("ResolveHostname() = \"\", want a non-empty value")
	}
}
