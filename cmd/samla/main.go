package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	charmLog "github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/hylla/samla/internal/adapters/storage/sqlite"
	"github.com/hylla/samla/internal/catalog"
	"github.com/hylla/samla/internal/config"
	"github.com/hylla/samla/internal/engine"
	"github.com/hylla/samla/internal/platform"
	"github.com/hylla/samla/internal/tui"
)

// version stores a package-level helper value.
var version = "dev"

// program represents program data used by this package.
type program interface {
	Run() (tea.Model, error)
}

// programFactory stores a package-level helper value.
var programFactory = func(m tea.Model) program {
	return tea.NewProgram(m)
}

// main handles main.
func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// run runs the requested command flow.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	fs := flag.NewFlagSet("samla", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var (
		configPath string
		dbPath     string
		appName    string
		devMode    bool
		showVer    bool
	)
	defaultDevMode := version == "dev"
	if envDev, ok := parseBoolEnv("SAMLA_DEV_MODE"); ok {
		defaultDevMode = envDev
	}
	if envApp := strings.TrimSpace(os.Getenv("SAMLA_APP_NAME")); envApp != "" {
		appName = envApp
	} else {
		appName = "samla"
	}
	fs.StringVar(&configPath, "config", "", "path to config TOML")
	fs.StringVar(&dbPath, "db", "", "path to sqlite save database")
	fs.StringVar(&appName, "app", appName, "application name for config/data path resolution")
	fs.BoolVar(&devMode, "dev", defaultDevMode, "use dev mode paths (<app>-dev)")
	fs.BoolVar(&showVer, "version", false, "show version")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if showVer {
		_, _ = fmt.Fprintf(stdout, "samla %s\n", version)
		return nil
	}

	paths, err := platform.DefaultPathsWithOptions(platform.Options{
		AppName: appName,
		DevMode: devMode,
	})
	if err != nil {
		return err
	}

	command := firstArg(fs.Args())
	switch command {
	case "paths":
		_, _ = fmt.Fprintf(stdout, "app: %s\n", appName)
		_, _ = fmt.Fprintf(stdout, "dev_mode: %t\n", devMode)
		_, _ = fmt.Fprintf(stdout, "config: %s\n", paths.ConfigPath)
		_, _ = fmt.Fprintf(stdout, "data_dir: %s\n", paths.DataDir)
		_, _ = fmt.Fprintf(stdout, "db: %s\n", paths.DBPath)
		_, _ = fmt.Fprintf(stdout, "catalog: %s\n", paths.CatalogDir)
		return nil
	case "", "saves", "export", "import":
		// Continue.
	default:
		return fmt.Errorf("unknown command: %s", command)
	}

	dbOverridden := strings.TrimSpace(dbPath) != ""
	if configPath == "" {
		if envPath := strings.TrimSpace(os.Getenv("SAMLA_CONFIG")); envPath != "" {
			configPath = envPath
		} else {
			configPath = paths.ConfigPath
		}
	}
	if !dbOverridden {
		if envPath := strings.TrimSpace(os.Getenv("SAMLA_DB_PATH")); envPath != "" {
			dbPath = envPath
		} else {
			dbPath = paths.DBPath
		}
	}

	cfg, err := config.Load(configPath, config.Default(dbPath, paths.CatalogDir))
	if err != nil {
		return fmt.Errorf("load config %q: %w", configPath, err)
	}
	if dbOverridden {
		cfg.Database.Path = dbPath
	}
	tickInterval, err := cfg.TickDuration()
	if err != nil {
		return err
	}

	logger, err := newLogger(stderr, appName, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("configure logger: %w", err)
	}
	if command == "" {
		// Keep TUI rendering clean while the game screen is active.
		logger.SetLevel(charmLog.FatalLevel)
	}
	logger.Info("startup configuration resolved", "app", appName, "dev_mode", devMode, "command", command)
	logger.Debug("runtime paths resolved", "config_path", configPath, "db_path", cfg.Database.Path, "catalog_dir", cfg.Catalog.Dir)

	gateway, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Error("sqlite open failed", "db_path", cfg.Database.Path, "err", err)
		return fmt.Errorf("open save database: %w", err)
	}
	defer func() {
		if closeErr := gateway.Close(); closeErr != nil {
			logger.Warn("sqlite close failed", "db_path", cfg.Database.Path, "err", closeErr)
		}
	}()

	eng := engine.New(gateway, uuid.NewString, nil)

	switch command {
	case "saves":
		names, err := eng.ListSaves(ctx)
		if err != nil {
			return fmt.Errorf("list saves: %w", err)
		}
		for _, name := range names {
			_, _ = fmt.Fprintln(stdout, name)
		}
		return nil
	case "export":
		if err := runExport(ctx, eng, fs.Args()[1:], stdout); err != nil {
			return fmt.Errorf("run export command: %w", err)
		}
		return nil
	case "import":
		if err := runImport(ctx, eng, fs.Args()[1:]); err != nil {
			return fmt.Errorf("run import command: %w", err)
		}
		return nil
	}

	if err := catalog.Seed(cfg.Catalog.Dir); err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	cat, err := catalog.LoadDir(cfg.Catalog.Dir)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	m := tui.NewModel(
		eng,
		cat,
		tui.WithTickInterval(tickInterval),
		tui.WithMaxNotifications(cfg.Game.MaxNotifications),
	)
	if _, err := programFactory(m).Run(); err != nil {
		return fmt.Errorf("run tui program: %w", err)
	}
	return nil
}

// runExport dumps one save payload as indented JSON.
func runExport(ctx context.Context, eng *engine.Engine, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("samla export", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var (
		name    string
		outPath string
	)
	fs.StringVar(&name, "name", "", "player save name")
	fs.StringVar(&outPath, "out", "-", "output file path ('-' for stdout)")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse export flags: %w", err)
	}
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("--name is required")
	}

	player, err := eng.Load(ctx, name)
	if err != nil {
		return fmt.Errorf("load save %q: %w", name, err)
	}
	payload, err := engine.EncodeSave(player)
	if err != nil {
		return fmt.Errorf("encode save payload: %w", err)
	}
	var indented bytes.Buffer
	if err := json.Indent(&indented, payload, "", "  "); err != nil {
		return fmt.Errorf("indent save payload: %w", err)
	}
	indented.WriteByte('\n')

	if outPath == "-" {
		if _, err := stdout.Write(indented.Bytes()); err != nil {
			return fmt.Errorf("write save payload to stdout: %w", err)
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create export output dir: %w", err)
	}
	if err := os.WriteFile(outPath, indented.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write export file: %w", err)
	}
	return nil
}

// runImport restores one save payload from a JSON file.
func runImport(ctx context.Context, eng *engine.Engine, args []string) error {
	fs := flag.NewFlagSet("samla import", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var inPath string
	fs.StringVar(&inPath, "in", "", "input save payload JSON file")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse import flags: %w", err)
	}
	if inPath == "" {
		return fmt.Errorf("--in is required")
	}

	content, err := os.ReadFile(inPath)
	if err != nil {
		return fmt.Errorf("read import file: %w", err)
	}
	player, err := engine.DecodeSave(content)
	if err != nil {
		return fmt.Errorf("decode save payload: %w", err)
	}
	if err := eng.Save(ctx, player); err != nil {
		return fmt.Errorf("import save: %w", err)
	}
	return nil
}

// newLogger configures the runtime logger from config state.
func newLogger(stderr io.Writer, appName, levelName string) (*charmLog.Logger, error) {
	level, err := charmLog.ParseLevel(levelName)
	if err != nil {
		return nil, fmt.Errorf("parse logging level %q: %w", levelName, err)
	}
	return charmLog.NewWithOptions(stderr, charmLog.Options{
		Level:           level,
		Prefix:          appName,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Formatter:       charmLog.TextFormatter,
	}), nil
}

// firstArg handles first arg.
func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

// parseBoolEnv parses input into a normalized form.
func parseBoolEnv(name string) (bool, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
