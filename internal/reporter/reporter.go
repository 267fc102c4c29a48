// Package reporter implements the Reporter (C6): it snapshots the Check
// Record store to disk and, when a remote server is configured, POSTs
// the same payload to it. Both are best-effort: failures are logged and
// never interrupt checking (§7 PersistError / TransportError).
package reporter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/preemptive/monchero-agent/internal/model"
)

// Snapshot is the wire/disk representation described in §6: agent
// version, hostname, an ISO-8601 UTC-with-offset timestamp (time.Time's
// default JSON encoding already produces this), and the full store.
type Snapshot struct {
	Version   string                         `json:"version"`
	Hostname  string                         `json:"hostname"`
	Timestamp time.Time                      `json:"timestamp"`
	Checks    map[string]*model.CheckRecord `json:"checks"`
}

// Reporter owns the state file path and the optional remote endpoint. It
// is driven by the agent's single control thread; see §5.
type Reporter struct {
	Version    string
	Hostname   string
	StatePath  string
	RemoteURL  string // empty disables remote submission
	HTTPClient *http.Client
	Log        zerolog.Logger
}

// New returns a Reporter writing to <dataDir>/state.json and, if
// remoteURL is non-empty, POSTing to it with the given connect+read
// timeout.
func New(version, hostname, dataDir, remoteURL string, timeout time.Duration, log zerolog.Logger) *Reporter {
	return &Reporter{
		Version:    version,
		Hostname:   hostname,
		StatePath:  filepath.Join(dataDir, "state.json"),
		RemoteURL:  remoteURL,
		HTTPClient: &http.Client{Timeout: timeout},
		Log:        log,
	}
}

// Report snapshots records, writes the state file, and POSTs to the
// remote server if configured. Every failure is logged; none is
// returned, matching §7's propagation policy for PersistError and
// TransportError.
func (r *Reporter) Report(ctx context.Context, records map[string]*model.CheckRecord, now time.Time) {
	snap := Snapshot{
		Version:   r.Version,
		Hostname:  r.Hostname,
		Timestamp: now,
		Checks:    records,
	}

	if err := r.writeStateFile(snap); err != nil {
		r.Log.Error().Err(err).Str("path", r.StatePath).Msg("could not write state file")
	}

	if r.RemoteURL == "" {
		return
	}
	if err := r.postRemote(ctx, snap); err != nil {
		r.Log.Error().Err(err).Str("url", r.RemoteURL).Msg("could not submit state to remote server")
	}
}

// writeStateFile serializes snap as pretty-printed UTF-8 JSON and writes
// it atomically: a temp file in the same directory, then a rename.
func (r *Reporter) writeStateFile(snap Snapshot) error {
	body, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	dir := filepath.Dir(r.StatePath)
	tmp, err := os.CreateTemp(dir, ".state-*.json.tmp")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp state file: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.StatePath); err != nil {
		return fmt.Errorf("rename temp state file into place: %w", err)
	}
	return nil
}

// postRemote POSTs a compact JSON encoding of snap to RemoteURL.
func (r *Reporter) postRemote(ctx context.Context, snap Snapshot) error {
	body, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.RemoteURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("remote server returned %s", resp.Status)
	}
	return nil
}

// SubmitURL builds the {scheme}://{server}/api/submit_state URL per §6.
// Scheme is https unless tlsDisabled is true.
func SubmitURL(server string, tlsDisabled bool) string {
	if server == "" {
		return ""
	}
	scheme := "https"
	if tlsDisabled {
		scheme = "http"
	}
	return fmt.Sprintf("%s://%s/api/submit_state", scheme, server)
}
