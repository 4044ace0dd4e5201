package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/hpungsan/howto/internal/cache"
	"github.com/hpungsan/howto/internal/config"
	"github.com/hpungsan/howto/internal/db"
	"github.com/hpungsan/howto/internal/logger"
	"github.com/hpungsan/howto/internal/mcp"
	"github.com/hpungsan/howto/internal/ops"
	"github.com/hpungsan/howto/internal/prefs"
	"github.com/hpungsan/howto/internal/provider"
	"github.com/hpungsan/howto/internal/search"
	"github.com/hpungsan/howto/internal/web"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// EnvHome overrides the base directory (default ~/.howto).
const EnvHome = "HOWTO_HOME"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"serve": true, "search": true, "ask": true,
	"saved": true, "settings": true, "languages": true,
	"help": true,
}

// appEnv holds everything the commands need. It is built once per process.
type appEnv struct {
	db       *sql.DB
	cfg      *config.Config
	creds    config.Credentials
	prefs    *prefs.Store
	searcher web.Searcher
	baseDir  string
	closers  []func()
}

// Close releases resources opened by newAppEnv.
func (e *appEnv) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
}

func (e *appEnv) exportsDir() string {
	return ops.ExportsDir(e.baseDir)
}

func (e *appEnv) webDeps() web.Deps {
	return web.Deps{
		DB:          e.db,
		Config:      e.cfg,
		Credentials: e.creds,
		Searcher:    e.searcher,
		Prefs:       e.prefs,
		Version:     Version,
	}
}

func (e *appEnv) mcpDeps() mcp.Deps {
	return mcp.Deps{
		DB:         e.db,
		Config:     e.cfg,
		Searcher:   e.searcher,
		Prefs:      e.prefs,
		ExportsDir: e.exportsDir(),
		Version:    Version,
	}
}

// newAppEnv opens the database, loads preferences and wires the search
// pipeline. Missing credentials are logged, not fatal: video and article
// search fall back, and the summary reports CONFIGURATION on use.
func newAppEnv(ctx context.Context, baseDir string, cfg *config.Config, creds config.Credentials) (*appEnv, error) {
	database, err := db.Init(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	db.ConfigurePool(database, cfg)

	env := &appEnv{
		db:      database,
		cfg:     cfg,
		creds:   creds,
		baseDir: baseDir,
		closers: []func(){func() { database.Close() }},
	}

	env.prefs = prefs.New(database, cfg.DefaultLanguage)
	env.prefs.Load(ctx)

	orchestrator, closeCache, err := buildSearcher(ctx, cfg, creds)
	if err != nil {
		env.Close()
		return nil, err
	}
	env.searcher = orchestrator
	env.closers = append(env.closers, closeCache)

	return env, nil
}

// buildSearcher assembles providers, the optional result cache and the
// completer into an Orchestrator.
func buildSearcher(ctx context.Context, cfg *config.Config, creds config.Credentials) (*search.Orchestrator, func(), error) {
	yt, cse := provider.NewSearchers(cfg, creds)
	var videos provider.VideoSearcher = yt
	var articles provider.ArticleSearcher = cse
	closer := func() {}

	if cfg.Cache.Enabled {
		c := cache.New(ctx, cfg.Cache.RedisURL, cfg.Cache.TTL, cfg.Cache.MaxEntries)
		videos = cache.Videos(videos, c)
		articles = cache.Articles(articles, c)
		closer = func() { _ = c.Close() }
	}

	completer, err := provider.NewCompleter(cfg, creds)
	if err != nil {
		closer()
		return nil, nil, err
	}

	return search.New(videos, articles, completer,
		search.WithMaxTokens(cfg.LLM.SummaryMaxTokens, cfg.LLM.FollowUpMaxTokens),
	), closer, nil
}

// resolveBaseDir returns $HOWTO_HOME or ~/.howto.
func resolveBaseDir() (string, error) {
	if dir := os.Getenv(EnvHome); dir != "" {
		return dir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".howto"), nil
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	if len(os.Args) < 2 {
		return false // No args → MCP server
	}
	arg := os.Args[1]
	if cliCommands[arg] {
		return true
	}
	if arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" {
		return true
	}
	return false // Default → MCP server
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, _ := os.Stdin.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
   _   _               _____
  | | | | _____      _|_   _|__
  | |_| |/ _ \ \ /\ / / | |/ _ \
  |  _  | (_) \ V  V /  | | (_) |
  |_| |_|\___/ \_/\_/   |_|\___/

  Videos, articles and an AI guide for any "how to" question

  Usage: howto <command> [options]
         howto serve
         howto --help

  MCP server mode requires piped input.`)
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}

func main() {
	// No args + interactive terminal → show banner and exit
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// Handle --help/--version before any setup
	if isHelpOrVersion() {
		app := newCLIApp(nil)
		if err := app.Run(os.Args); err != nil {
			fatal("%v", err)
		}
		return
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if !isCLIMode() && len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'howto --help' for usage.\n")
		os.Exit(1)
	}

	baseDir, err := resolveBaseDir()
	if err != nil {
		fatal("%v", err)
	}

	config.LoadEnvFiles(filepath.Join(baseDir, ".env"), ".env")

	cfg, err := config.Load(baseDir)
	if err != nil {
		fatal("failed to load config: %v", err)
	}

	// Logs go to stderr so stdout stays clean for JSON output and MCP.
	logger.Setup(cfg.LogLevel, cfg.LogFormat)

	if unknown := mcp.ValidateDisabledTools(cfg.DisabledTools); len(unknown) > 0 {
		slog.Warn("unknown tools in disabled_tools", slog.Any("tools", unknown))
	}

	creds := config.LoadCredentials(nil)
	for _, err := range creds.Check(cfg.LLM.Provider) {
		slog.Warn("credential missing", slog.Any("error", err))
	}

	ctx := context.Background()
	env, err := newAppEnv(ctx, baseDir, cfg, creds)
	if err != nil {
		fatal("%v", err)
	}

	if isCLIMode() {
		app := newCLIApp(env)
		err = app.Run(os.Args)
		env.Close()
		if err != nil {
			fatal("%v", err)
		}
		return
	}

	// MCP server mode (default)
	err = mcp.Run(env.mcpDeps())
	env.Close()
	if err != nil {
		fatal("%v", err)
	}
}
