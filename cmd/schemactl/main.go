// Command schemactl browses and edits JSON Schemas stored in a schema registry.
//
// Usage:
//
//	schemactl [global flags] <command> [flags] [args]
//
// Run "schemactl help" for the list of commands.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/reglet-dev/schemactl/config"
	"github.com/reglet-dev/schemactl/editor"
	"github.com/reglet-dev/schemactl/editor/filesystem"
	"github.com/reglet-dev/schemactl/editor/ports"
	"github.com/reglet-dev/schemactl/netutil"
	"github.com/reglet-dev/schemactl/prompt"
	"github.com/reglet-dev/schemactl/registry"
	"github.com/reglet-dev/schemactl/registry/apicurio"
	"github.com/reglet-dev/schemactl/registry/oci"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, os.Getenv)
	stop()
	os.Exit(code)
}

type globalFlags struct {
	configPath string
	registry   string
	backend    string
	group      string
	logLevel   string
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, getenv func(string) string) int {
	g, rest, err := parseGlobal(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 2
	}
	if len(rest) == 0 {
		printUsage(stderr)
		return 2
	}
	switch rest[0] {
	case "-h", "--help", "help":
		printUsage(stdout)
		return 0
	}

	cfg, err := loadConfig(g, getenv)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	logger, err := newLogger(cfg, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	var reg ports.SchemaRegistry
	if rest[0] != "config" {
		reg, err = openRegistry(cfg, logger)
		if err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return 1
		}
	}

	a := newApp(cfg, reg, logger, stdout, stderr)
	if err := a.dispatch(ctx, rest); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func parseGlobal(args []string, stderr io.Writer) (globalFlags, []string, error) {
	var g globalFlags
	fs := flag.NewFlagSet("schemactl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { printUsage(stderr) }
	fs.StringVar(&g.configPath, "config", "", "path to config file (default ~/.schemactl/config.yaml)")
	fs.StringVar(&g.registry, "registry", "", "registry API URL, overrides config and environment")
	fs.StringVar(&g.backend, "backend", "", "registry backend: apicurio, oci or memory")
	fs.StringVar(&g.group, "group", "", "group used for bare schema IDs")
	fs.StringVar(&g.logLevel, "log-level", "", "log level: debug, info, warn or error")
	if err := fs.Parse(args); err != nil {
		return g, nil, err
	}
	return g, fs.Args(), nil
}

func loadConfig(g globalFlags, getenv func(string) string) (*config.Config, error) {
	path := g.configPath
	if path == "" {
		var err error
		if path, err = config.DefaultPath(); err != nil {
			return nil, err
		}
	}

	cfg, err := config.Load(path, getenv)
	if err != nil {
		return nil, err
	}

	// Flags take precedence over the file and the environment.
	if g.registry != "" {
		cfg.Registry.URL = g.registry
	}
	if g.backend != "" {
		cfg.Registry.Backend = g.backend
	}
	if g.group != "" {
		cfg.Registry.Group = g.group
	}
	if g.logLevel != "" {
		cfg.Log.Level = g.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, w io.Writer) (*slog.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

func openRegistry(cfg *config.Config, logger *slog.Logger) (ports.SchemaRegistry, error) {
	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		return nil, err
	}
	client := netutil.NewHTTPClient(timeout, cfg.Registry.InsecureSkipVerify)

	switch cfg.Registry.Backend {
	case config.BackendApicurio:
		logger.Debug("using apicurio registry", "url", netutil.StripCredentials(cfg.Registry.URL))
		if cfg.Registry.InsecureSkipVerify && !netutil.IsHTTPS(cfg.Registry.URL) {
			logger.Warn("insecure_skip_verify has no effect on a non-HTTPS registry URL",
				"url", netutil.StripCredentials(cfg.Registry.URL))
		}
		c, err := apicurio.New(cfg.Registry.URL,
			apicurio.WithHTTPClient(client),
			apicurio.WithLogger(logger),
			apicurio.WithMaxBodySize(cfg.Registry.MaxBodySize),
			apicurio.WithSearchLimit(cfg.Registry.SearchLimit),
		)
		if err != nil {
			return nil, err
		}
		return c, nil
	case config.BackendOCI:
		logger.Debug("using oci registry", "host", cfg.Registry.OCI.Host, "prefix", cfg.Registry.OCI.Prefix)
		open := oci.RemoteRepositories(cfg.Registry.OCI.Host, cfg.Registry.OCI.Prefix, cfg.Registry.OCI.PlainHTTP, client)
		return oci.New(open, oci.WithLogger(logger)), nil
	case config.BackendMemory:
		logger.Warn("using in-memory registry; changes are lost on exit")
		return registry.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Registry.Backend)
	}
}

// app holds what every command needs.
type app struct {
	cfg      *config.Config
	svc      *editor.Service
	terminal *prompt.Terminal
	logger   *slog.Logger
	stdout   io.Writer
	stderr   io.Writer
}

func newApp(cfg *config.Config, reg ports.SchemaRegistry, logger *slog.Logger, stdout, stderr io.Writer) *app {
	a := &app{
		cfg:      cfg,
		terminal: prompt.NewTerminal(),
		logger:   logger,
		stdout:   stdout,
		stderr:   stderr,
	}
	if reg != nil {
		a.svc = editor.NewService(reg,
			editor.WithLogger(logger),
			editor.WithGroup(cfg.Registry.Group),
			editor.WithBaselineRepository(filesystem.NewFileBaselineRepository(), cfg.Lockfile),
		)
	}
	return a
}

func (a *app) dispatch(ctx context.Context, args []string) error {
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "list":
		return a.runList(ctx, rest)
	case "create":
		return a.runCreate(ctx, rest)
	case "show":
		return a.runShow(ctx, rest)
	case "versions":
		return a.runVersions(ctx, rest)
	case "edit":
		return a.runEdit(ctx, rest)
	case "add-field":
		return a.runAddField(ctx, rest)
	case "remove-field":
		return a.runRemoveField(ctx, rest)
	case "pull":
		return a.runPull(ctx, rest)
	case "push":
		return a.runPush(ctx, rest)
	case "diff":
		return a.runDiff(ctx, rest)
	case "config":
		return a.runConfig(rest)
	default:
		printUsage(a.stderr)
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `schemactl - browse and edit JSON Schemas in a schema registry

Usage:
  schemactl [global flags] <command> [flags] [args]

Commands:
  list [--match <glob>]                       List JSON Schema artifacts
  create [--description <text>] [id]          Create a schema (prompts when id is omitted)
  show [--version <v>] <id>                   Print a schema version
  versions <id>                               List the versions of a schema
  edit [--version <v>] <id>                   Edit a schema interactively
  add-field --name <n> --type <t> <id>        Add a field and save a new minor version
  remove-field --name <n> <id>                Remove a field (requires --allow-breaking)
  pull [--version <v>] [--dir <d>] <id>       Write a schema to a local file and lock it
  push [--allow-breaking] [--dry-run] <file>  Save a pulled file as the next version
  diff [--expect <change>] [--json] <id> <from> <to>
                                              Compare two versions
  config schema                               Print the config file JSON Schema

Global flags:
  --config <path>     config file (default ~/.schemactl/config.yaml)
  --registry <url>    registry API URL
  --backend <name>    apicurio, oci or memory
  --group <name>      group for bare schema IDs
  --log-level <lvl>   debug, info, warn or error

Schema IDs are "artifact" (in the configured group) or "group/artifact".
Field types: string, number, boolean, array, integer, uuid, email, date.
`)
}
