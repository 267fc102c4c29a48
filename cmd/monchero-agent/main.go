package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	arg "github.com/alexflint/go-arg"
	"github.com/rs/zerolog"

	"github.com/preemptive/monchero-agent/internal/agent"
	"github.com/preemptive/monchero-agent/internal/config"
	"github.com/preemptive/monchero-agent/internal/discovery"
	"github.com/preemptive/monchero-agent/internal/engine"
	"github.com/preemptive/monchero-agent/internal/model"
	"github.com/preemptive/monchero-agent/internal/reporter"
	"github.com/preemptive/monchero-agent/internal/scheduler"
)

// version is the agent's self-reported version, recorded in state.json
// and the remote submission payload.
const version = "0.1.0"

// Args holds every CLI flag the agent takes, each overridable by a
// MONCHERO_* environment variable per the original's configargparse
// bindings (§6).
type Args struct {
	Interval       int           `arg:"-i,--interval,env:MONCHERO_INTERVAL" default:"60" help:"default check interval in seconds"`
	LogLevel       string        `arg:"--log-level,env:MONCHERO_LOG_LEVEL" default:"info" help:"debug|info|warning|error|critical"`
	DataDir        string        `arg:"--data-dir,env:MONCHERO_DATA_DIR" default:"/var/lib/monchero-agent" help:"directory holding state.json"`
	NodeName       string        `arg:"--node-name,env:MONCHERO_NODE_NAME" help:"override automatic hostname resolution"`
	NativeDir      string        `arg:"--native-dir,env:MONCHERO_NATIVE_DIR" help:"native-dialect (YAML) plugin directory"`
	CheckMKDir     string        `arg:"--checkmk-dir,env:MONCHERO_CHECKMK_DIR" help:"checkmk-dialect plugin directory"`
	ScriptDir      string        `arg:"--script-dir,env:MONCHERO_SCRIPT_DIR" help:"script-dialect plugin directory"`
	CheckConfigDir string        `arg:"--check-config-dir,env:MONCHERO_CHECK_CONFIG_DIR" help:"directory of check-config YAML files"`
	RemoteServer   string        `arg:"--remote-server,env:MONCHERO_REMOTE_SERVER" help:"remote server host[:port] to submit state to"`
	NoTLS          bool          `arg:"--no-tls,env:MONCHERO_NO_TLS" help:"disable TLS for remote submission"`
	RemoteTimeout  time.Duration `arg:"--remote-timeout,env:MONCHERO_REMOTE_TIMEOUT" default:"10s" help:"remote submission connect+read timeout"`
}

// Description returns the program description for go-arg help output.
func (Args) Description() string {
	return "Schedules plugin checks, evaluates thresholds, and reports host health state."
}

// Version returns the program version string for go-arg's --version flag.
func (Args) Version() string {
	return fmt.Sprintf("monchero-agent %s", version)
}

func main() {
	os.Exit(run())
}

func run() int {
	var args Args
	parser, err := arg.NewParser(arg.Config{Program: "monchero-agent"}, &args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := parser.Parse(os.Args[1:]); err != nil {
		switch {
		case errors.Is(err, arg.ErrHelp):
			parser.WriteHelp(os.Stdout)
			return 0
		case errors.Is(err, arg.ErrVersion):
			fmt.Println(args.Version())
			return 0
		default:
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}

	log := agent.NewLogger(args.LogLevel)

	if err := os.MkdirAll(args.DataDir, 0o755); err != nil {
		log.Error().Err(err).Str("dir", args.DataDir).Msg("could not create data directory")
		return 1
	}

	hostname := args.NodeName
	if hostname == "" {
		hostname = agent.ResolveHostname()
	}

	cfg := config.Empty()
	if args.CheckConfigDir != "" {
		loaded, errs := config.LoadDirectory(args.CheckConfigDir)
		for _, e := range errs {
			log.Warn().Err(e).Msg("check-config load error")
		}
		cfg = loaded
	}

	defaultInterval := time.Duration(args.Interval) * time.Second

	var entries []*model.ExecutableEntry
	entries = discoverInto(entries, args.NativeDir, model.DialectNative, defaultInterval, log)
	entries = discoverInto(entries, args.CheckMKDir, model.DialectCheckMK, defaultInterval, log)
	entries = discoverInto(entries, args.ScriptDir, model.DialectScript, defaultInterval, log)
	entries = discovery.MergeConfigured(entries, cfg, defaultInterval)
	discovery.ApplyExitCodeConfig(entries, cfg)

	sched := scheduler.New()
	for _, e := range entries {
		sched.Insert(e)
	}

	remoteURL := reporter.SubmitURL(args.RemoteServer, args.NoTLS)
	rep := reporter.New(version, hostname, args.DataDir, remoteURL, args.RemoteTimeout, log)

	a := agent.New(sched, engine.New(), rep, cfg, log)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := a.Run(ctx); err != nil {
		log.Error().Err(err).Msg("agent exited")
		return 1
	}
	return 0
}

func discoverInto(entries []*model.ExecutableEntry, dir string, dialect model.Dialect, defaultInterval time.Duration, log zerolog.Logger) []*model.ExecutableEntry {
	if dir == "" {
		return entries
	}
	found, err := discovery.ScanPluginDirectory(dir, dialect, defaultInterval)
	if err != nil {
		log.Warn().Str("dir", dir).Err(err).Msg("could not scan plugin directory")
		return entries
	}
	return append(entries, found...)
}
