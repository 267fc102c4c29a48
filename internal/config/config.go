// Package config provides the typed, merged configuration record C8
// reads (§1, §4.7, §4.5). The loader itself is a named external
// collaborator per spec.md §1 — out of the core's scope — but it's
// implemented here as a thin YAML-directory reader so the pipeline
// links and runs end-to-end.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ActionConfig names an executable and its argument list, run in
// response to a check's state change (§4.5).
type ActionConfig struct {
	Executable string   `yaml:"executable"`
	Arguments  []string `yaml:"arguments"`
}

// CheckConfig is the per-check-name configuration: the repeat threshold
// and the action precedence set (action_ok/action_warning/
// action_critical, falling back to the unconditional action).
type CheckConfig struct {
	Repeat        int           `yaml:"repeat"`
	Action        *ActionConfig `yaml:"action"`
	ActionOK      *ActionConfig `yaml:"action_ok"`
	ActionWarning *ActionConfig `yaml:"action_warning"`
	ActionCritical *ActionConfig `yaml:"action_critical"`
}

// ExitCodeConfig is per-check-name exit-code classification (§4.2). Only
// the script_config section is applied, to script-dialect executables;
// plugin_config is parsed but not consumed.
type ExitCodeConfig struct {
	CheckName         string `yaml:"check_name"`
	OkayExitCodes     []int  `yaml:"okay_exit_codes"`
	WarningExitCodes  []int  `yaml:"warning_exit_codes"`
	CriticalExitCodes []int  `yaml:"critical_exit_codes"`
}

// CommandEntry declares an explicitly-enrolled check (§4.7's
// command_config/nagios_config sections): a filename to run on a
// schedule, independent of directory discovery.
type CommandEntry struct {
	Filename  string   `yaml:"filename"`
	Arguments []string `yaml:"arguments"`
	Interval  int      `yaml:"interval"`
	CheckName string   `yaml:"check_name"`

	// Exit-code classification (§4.2), applied the same way script_config
	// applies it to directory-discovered entries.
	OkayExitCodes     []int `yaml:"okay_exit_codes"`
	WarningExitCodes  []int `yaml:"warning_exit_codes"`
	CriticalExitCodes []int `yaml:"critical_exit_codes"`
}

// Config is the fully merged configuration record, mirroring the
// original agent's check_config dict-of-dicts.
type Config struct {
	CheckConfig   map[string]CheckConfig    `yaml:"check_config"`
	PluginConfig  map[string]ExitCodeConfig `yaml:"plugin_config"`
	ScriptConfig  map[string]ExitCodeConfig `yaml:"script_config"`
	CommandConfig map[string]CommandEntry   `yaml:"command_config"`
	NagiosConfig  map[string]CommandEntry   `yaml:"nagios_config"`
}

// Empty returns a Config with every section initialized to an empty, but
// non-nil, map.
func Empty() Config {
	return Config{
		CheckConfig:   map[string]CheckConfig{},
		PluginConfig:  map[string]ExitCodeConfig{},
		ScriptConfig:  map[string]ExitCodeConfig{},
		CommandConfig: map[string]CommandEntry{},
		NagiosConfig:  map[string]CommandEntry{},
	}
}

// LoadDirectory reads every *.yaml/*.yml file in dir (sorted by name for
// deterministic merge order) and merges them into one Config; a later
// file's keys override an earlier file's for the same section+key.
// Unreadable or unparseable files are skipped with the error collected,
// not fatal to the whole load (§7 ConfigError).
func LoadDirectory(dir string) (Config, []error) {
	cfg := Empty()

	entries, err := os.ReadDir(dir)
	if err != nil {
		return cfg, []error{fmt.Errorf("read check-config directory %s: %w", dir, err)}
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext == ".yaml" || ext == ".yml" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var errs []error
	for _, name := range names {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			errs = append(errs, fmt.Errorf("read %s: %w", path, err))
			continue
		}
		var fragment Config
		if err := yaml.Unmarshal(data, &fragment); err != nil {
			errs = append(errs, fmt.Errorf("parse %s: %w", path, err))
			continue
		}
		cfg.merge(fragment)
	}

	return cfg, errs
}

func (c *Config) merge(other Config) {
	for k, v := range other.CheckConfig {
		c.CheckConfig[k] = v
	}
	for k, v := range other.PluginConfig {
		c.PluginConfig[k] = v
	}
	for k, v := range other.ScriptConfig {
		c.ScriptConfig[k] = v
	}
	for k, v := range other.CommandConfig {
		c.CommandConfig[k] = v
	}
	for k, v := range other.NagiosConfig {
		c.NagiosConfig[k] = v
	}
}
