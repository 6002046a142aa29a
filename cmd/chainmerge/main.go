package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/dusk-indust/chainmerge/internal/config"
	"github.com/dusk-indust/chainmerge/internal/graph"
	"github.com/dusk-indust/chainmerge/internal/logfields"
	"github.com/dusk-indust/chainmerge/internal/menu"
)

// CLI flags parsed from command line.
type cliFlags struct {
	Dir         string
	MenuFile    string
	OutputDir   string
	GraphPath   string
	Addr        string
	Concurrency int
	Persist     bool
	Verbose     bool
	Version     bool
}

// version is set by goreleaser at build time.
var version = "dev"

const usage = `Usage: chainmerge [flags] <command> [args]

Commands:
  merge            assemble every chain of the menu and export it as JSON
  status           print a summary of every merged chain
  diagram <chain>  print a Mermaid diagram of one merged chain
  serve            run the MCP server (stdio, or HTTP with --addr)
  version          print the version

Flags:
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var flags cliFlags

	fs := pflag.NewFlagSet("chainmerge", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVarP(&flags.Dir, "dir", "C", ".", "project directory holding chainmerge.yml")
	fs.StringVar(&flags.MenuFile, "menu", "", "menu file (default: menuFile from chainmerge.yml, or menu.yml)")
	fs.StringVarP(&flags.OutputDir, "out", "o", "", "directory for the JSON export (default: stdout)")
	fs.StringVar(&flags.GraphPath, "graph", "", "KuzuDB directory used with --persist")
	fs.StringVar(&flags.Addr, "addr", "", "serve MCP over HTTP on this address instead of stdio")
	fs.IntVarP(&flags.Concurrency, "concurrency", "j", 0, "chains merged in parallel (default: GOMAXPROCS)")
	fs.BoolVar(&flags.Persist, "persist", false, "persist merged chains to the KuzuDB graph")
	fs.BoolVarP(&flags.Verbose, "verbose", "v", false, "enable debug logging")
	fs.BoolVar(&flags.Version, "version", false, "print version and exit")
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	if flags.Version || fs.Arg(0) == "version" {
		fmt.Fprintln(stdout, version)
		return nil
	}

	cmd := fs.Arg(0)
	if cmd == "" {
		fs.Usage()
		return fmt.Errorf("missing command")
	}

	ws, err := openWorkspace(ctx, flags, stderr)
	if err != nil {
		return err
	}
	defer ws.Close()

	switch cmd {
	case "merge":
		return runMerge(ctx, ws, stdout, stderr)
	case "status":
		return runStatus(ctx, ws, stdout)
	case "diagram":
		if fs.NArg() < 2 {
			return fmt.Errorf("usage: chainmerge diagram <chain>")
		}
		return runDiagram(ctx, ws, fs.Arg(1), stdout)
	case "serve":
		return runServe(ctx, ws, flags.Addr)
	default:
		fs.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// workspace is everything a command needs: settings, the menu and the
// store merged chains go to.
type workspace struct {
	cfg     *config.ProjectConfig
	menu    menu.Menu
	source  string
	store   graph.Store
	persist bool
	log     *slog.Logger
}

func openWorkspace(ctx context.Context, flags cliFlags, stderr io.Writer) (*workspace, error) {
	cfg, err := config.Load(flags.Dir)
	if err != nil {
		return nil, err
	}
	// Paths from chainmerge.yml are relative to the project directory;
	// paths from flags are taken as given.
	cfg.MenuFile = config.Resolve(flags.Dir, cfg.MenuFile)
	cfg.OutputDir = config.Resolve(flags.Dir, cfg.OutputDir)
	cfg.GraphPath = config.Resolve(flags.Dir, cfg.GraphPath)

	if flags.MenuFile != "" {
		cfg.MenuFile = flags.MenuFile
	}
	if flags.OutputDir != "" {
		cfg.OutputDir = flags.OutputDir
	}
	if flags.GraphPath != "" {
		cfg.GraphPath = flags.GraphPath
	}
	if flags.Concurrency != 0 {
		cfg.Concurrency = flags.Concurrency
	}
	cfg.Verbose = cfg.Verbose || flags.Verbose

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	source := cfg.MenuFile
	m, err := config.LoadMenu(source)
	if err != nil {
		return nil, err
	}
	logger.Debug("menu loaded", logfields.Path(source), slog.Int("chains", len(m.Chains)))

	store, err := openStore(cfg.GraphPath, flags.Persist)
	if err != nil {
		return nil, err
	}
	if err := store.InitSchema(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &workspace{
		cfg:     cfg,
		menu:    m,
		source:  source,
		store:   store,
		persist: flags.Persist,
		log:     logger,
	}, nil
}

func (ws *workspace) Close() error {
	return ws.store.Close()
}
