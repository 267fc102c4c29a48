// Package discovery enumerates executable files under plugin directories
// and merges them with explicitly configured commands (C7).
package discovery

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/preemptive/monchero-agent/internal/config"
	"github.com/preemptive/monchero-agent/internal/model"
)

var skippedSuffixes = []string{".bak", ".rpmsave", ".old", ".orig"}

// ScanPluginDirectory enumerates dir's immediate children (§4.7):
// eligible regular executable files become default-interval Executable
// Entries; immediate subdirectories named with a non-negative integer N
// become a one-level-deep child scan whose entries get interval=N
// seconds instead. A subdirectory's own subdirectories are never
// descended into.
func ScanPluginDirectory(dir string, dialect model.Dialect, defaultInterval time.Duration) ([]*model.ExecutableEntry, error) {
	children, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var out []*model.ExecutableEntry
	for _, child := range children {
		if child.IsDir() {
			if n, ok := nonNegativeInt(child.Name()); ok {
				sub, err := scanFlat(filepath.Join(dir, child.Name()), dialect, time.Duration(n)*time.Second)
				if err == nil {
					out = append(out, sub...)
				}
			}
			continue
		}
		if entry := entryFor(dir, child, dialect, defaultInterval); entry != nil {
			out = append(out, entry)
		}
	}
	return out, nil
}

// scanFlat scans one directory's regular files only, never descending
// into further subdirectories (enforcing the "exactly one level" rule).
func scanFlat(dir string, dialect model.Dialect, interval time.Duration) ([]*model.ExecutableEntry, error) {
	children, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []*model.ExecutableEntry
	for _, child := range children {
		if child.IsDir() {
			continue
		}
		if entry := entryFor(dir, child, dialect, interval); entry != nil {
			out = append(out, entry)
		}
	}
	return out, nil
}

func entryFor(dir string, child os.DirEntry, dialect model.Dialect, interval time.Duration) *model.ExecutableEntry {
	name := child.Name()
	if !eligibleName(name) {
		return nil
	}
	info, err := child.Info()
	if err != nil || !info.Mode().IsRegular() || info.Mode()&0o111 == 0 {
		return nil
	}
	filename := filepath.Join(dir, name)
	return &model.ExecutableEntry{
		CheckName: name,
		Filename:  filename,
		Interval:  interval,
		Dialect:   dialect,
	}
}

func eligibleName(name string) bool {
	return !IsBackupFile(name)
}

// IsBackupFile reports whether name is a dotfile or carries one of the
// backup-file suffixes this agent always skips (.bak, .rpmsave, .old,
// .orig), shared with cmd/monchero-inventory's library scan.
func IsBackupFile(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	for _, suffix := range skippedSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

func nonNegativeInt(name string) (int, bool) {
	n, err := strconv.Atoi(name)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// MergeConfigured enrolls the merged configuration's command_config and
// nagios_config sections (§4.7): each entry whose filename is executable
// is added, honoring per-entry arguments/interval/check_name. Config-
// declared checks can override the base name exposed in observations.
func MergeConfigured(entries []*model.ExecutableEntry, cfg config.Config, defaultInterval time.Duration) []*model.ExecutableEntry {
	entries = mergeSection(entries, cfg.CommandConfig, model.DialectCommand, defaultInterval)
	entries = mergeSection(entries, cfg.NagiosConfig, model.DialectNagios, defaultInterval)
	return entries
}

func mergeSection(entries []*model.ExecutableEntry, section map[string]config.CommandEntry, dialect model.Dialect, defaultInterval time.Duration) []*model.ExecutableEntry {
	for key, decl := range section {
		if !isExecutable(decl.Filename) {
			continue
		}
		checkName := decl.CheckName
		if checkName == "" {
			checkName = key
		}
		interval := defaultInterval
		if decl.Interval > 0 {
			interval = time.Duration(decl.Interval) * time.Second
		}
		entries = append(entries, &model.ExecutableEntry{
			CheckName:         checkName,
			Filename:          decl.Filename,
			Arguments:         decl.Arguments,
			Interval:          interval,
			Dialect:           dialect,
			OkayExitCodes:     decl.OkayExitCodes,
			WarningExitCodes:  decl.WarningExitCodes,
			CriticalExitCodes: decl.CriticalExitCodes,
		})
	}
	return entries
}

func isExecutable(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	return info.Mode()&0o111 != 0
}

// ApplyExitCodeConfig attaches the configured okay/warning/critical
// exit-code lists (§4.2's `script_config` section) to directory-
// discovered script-dialect entries, matched by check name, and honors a
// configured check_name override. Only script-dialect entries are
// dispatched through ExitCodeStatus (native and CheckMK output carry
// their own embedded status and never consult these lists), so this is
// the only dialect handled here; command-dialect entries get their
// classification straight from command_config in mergeSection instead,
// since that section already names the entry directly. Entries with no
// matching script_config key are left unmodified.
func ApplyExitCodeConfig(entries []*model.ExecutableEntry, cfg config.Config) {
	for _, entry := range entries {
		if entry.Dialect != model.DialectScript {
			continue
		}
		decl, ok := cfg.ScriptConfig[entry.CheckName]
		if !ok {
			continue
		}
		entry.OkayExitCodes = decl.OkayExitCodes
		entry.WarningExitCodes = decl.WarningExitCodes
		entry.CriticalExitCodes = decl.CriticalExitCodes
		if decl.CheckName != "" {
			entry.CheckName = decl.CheckName
		}
	}
}
