// BoxPack packs rectangles into as few L x L boxes as possible.
//
// Usage:
//
//	boxpack solve -i rects.csv -l 100 [--profile balanced] [--pdf layout.pdf]
//	boxpack compare -i instance.json
//	boxpack generate -n 200 --l 100 -o instance.json
//	boxpack serve --addr :8080
//	boxpack profiles
//
// Settings are read from an optional config file (--config), BOXPACK_*
// environment variables and flags, in increasing precedence.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/pflag"

	"github.com/piwi3910/BoxPack/internal/config"
	"github.com/piwi3910/BoxPack/internal/logging"
	"github.com/piwi3910/BoxPack/internal/project"
)

const service = "boxpack"

type command struct {
	summary string
	run     func(args []string, stdout, stderr io.Writer) error
}

var commands = map[string]command{
	"solve":    {"pack an instance and write the solution", runSolve},
	"compare":  {"run the default scenarios side by side", runCompare},
	"generate": {"draw a random instance", runGenerate},
	"serve":    {"serve the HTTP API", runServe},
	"profiles": {"list the solver profiles", runProfiles},
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		usage(stderr)
		return 2
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(stderr, "boxpack: unknown command %q\n\n", args[0])
		usage(stderr)
		return 2
	}
	if err := cmd.run(args[1:], stdout, stderr); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "boxpack %s: %v\n", args[0], err)
		return 1
	}
	return 0
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: boxpack <command> [flags]")
	fmt.Fprintln(w)
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-9s %s\n", name, commands[name].summary)
	}
}

// env is the state shared by every command after flag parsing.
type env struct {
	cfg     config.Config
	logger  *logging.Logger
	app     project.AppConfig
	appPath string
}

func (e *env) close() {
	_ = e.logger.Close()
}

// globalFlags registers the flags every command accepts.
func globalFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "config file (yaml, toml or json)")
	fs.String("app-config", project.DefaultConfigPath(), "user preferences file")
	fs.String("log-level", "", "log level: debug, info, warn, error")
	fs.String("log-format", "", "console log format: text or json")
	fs.String("log-file", "", "write JSON logs to this rotated file")
}

// setup parses args, binds the flags in bindings (config key -> flag name)
// and loads the configuration, logger and user preferences.
func setup(fs *pflag.FlagSet, args []string, stderr io.Writer, bindings map[string]string) (*env, error) {
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	loader := config.NewLoader()
	all := map[string]string{
		"log.level":  "log-level",
		"log.format": "log-format",
		"log.file":   "log-file",
	}
	for k, v := range bindings {
		all[k] = v
	}
	for key, name := range all {
		if err := loader.BindFlag(key, fs.Lookup(name)); err != nil {
			return nil, err
		}
	}

	configPath, _ := fs.GetString("config")
	cfg, err := loader.Load(configPath)
	if err != nil {
		return nil, err
	}

	var logger *logging.Logger
	if cfg.Log.File != "" {
		logger = logging.New(cfg.Log, service)
	} else {
		logger = logging.NewWriter(stderr, cfg.Log, service)
	}

	appPath, _ := fs.GetString("app-config")
	app, err := project.LoadAppConfig(appPath)
	if err != nil {
		logger.Warn("ignoring unreadable app config", "path", appPath, "error", err)
		app = project.DefaultAppConfig()
	}

	return &env{cfg: cfg, logger: logger, app: app, appPath: appPath}, nil
}
