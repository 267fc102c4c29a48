package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	arg "github.com/alexflint/go-arg"

	"github.com/preemptive/monchero-agent/internal/agent"
	"github.com/preemptive/monchero-agent/internal/inventory"
)

const version = "0.0.1"

// Args mirrors monchero-inventory.py's flag surface: a library directory
// to probe and a live plugin directory to install accepted checks into.
type Args struct {
	PluginLibDirectory     string `arg:"--plugin-lib-directory" default:"/usr/lib/monchero/lib" help:"directory containing the library of checks"`
	MoncheroPluginDirectory string `arg:"--monchero-plugin-directory,env:MONCHERO_PLUGIN_DIRECTORY" default:"/usr/lib/monchero/plugins" help:"directory to install accepted check plugins into"`
	LogLevel               string `arg:"-l,--log-level,env:MONCHERO_LOG_LEVEL" default:"info" help:"debug|info|warning|error|critical"`
}

func (Args) Description() string {
	return "Probes a library of candidate checks and enrolls the ones that exit 0 into the plugin directory."
}

func (Args) Version() string {
	return fmt.Sprintf("monchero-inventory %s", version)
}

func main() {
	os.Exit(run())
}

func run() int {
	var args Args
	parser, err := arg.NewParser(arg.Config{Program: "monchero-inventory"}, &args)
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

	found, err := inventory.Scan(context.Background(), args.PluginLibDirectory, log)
	if err != nil {
		log.Error().Err(err).Str("dir", args.PluginLibDirectory).Msg("could not scan library directory")
		return 1
	}

	if err := inventory.Install(found, args.MoncheroPluginDirectory, log); err != nil {
		log.Error().Err(err).Str("dir", args.MoncheroPluginDirectory).Msg("could not install inventory")
		return 1
	}

	log.Info().Int("count", len(found)).Msg("inventory complete")
	return 0
}
