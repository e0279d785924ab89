// Package main provides the CLI entrypoint for mathcatch.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/mathcatch/internal/catalog"
	"github.com/verte-zerg/mathcatch/internal/config"
	"github.com/verte-zerg/mathcatch/internal/gui"
	"github.com/verte-zerg/mathcatch/internal/logging"
	"github.com/verte-zerg/mathcatch/internal/model"
	"github.com/verte-zerg/mathcatch/internal/progress"
	"github.com/verte-zerg/mathcatch/internal/session"
	"github.com/verte-zerg/mathcatch/internal/sim"
	"github.com/verte-zerg/mathcatch/internal/spawner"
	"github.com/verte-zerg/mathcatch/internal/stats"
	"github.com/verte-zerg/mathcatch/internal/store"
	"github.com/verte-zerg/mathcatch/internal/tui"
)

const (
	defaultFPS      = spawner.ReferenceFPS
	defaultFrontend = "tui"
	defaultLogLevel = "info"
)

var (
	playLevel       int
	playFPS         int
	playSpawns      float64
	playCorrect     float64
	playPaddleWidth float64
	playFrontend    string

	levelsFile string
	logLevel   string

	statsLevel int
	statsSince string
	statsLast  int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "mathcatch",
		Short:         "Catch the correct equations",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPlayCmd,
	}

	rootCmd.Flags().IntVar(&playLevel, "level", 0, "start this level directly instead of showing the menu")
	rootCmd.Flags().IntVar(&playFPS, "fps", defaultFPS, "simulation frames per second")
	rootCmd.Flags().Float64Var(&playSpawns, "spawns-per-second", spawner.DefaultSpawnsPerSecond, "average new items per second")
	rootCmd.Flags().Float64Var(&playCorrect, "correct-pct", spawner.DefaultCorrectPct, "probability a new item is correct (0-1)")
	rootCmd.Flags().Float64Var(&playPaddleWidth, "paddle-width", sim.DefaultPaddleWidth, "paddle width in play-area units")
	rootCmd.Flags().StringVar(&playFrontend, "frontend", defaultFrontend, "frontend: tui or gui")
	rootCmd.PersistentFlags().StringVar(&levelsFile, "levels-file", "", "TOML or YAML file replacing the built-in levels")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", defaultLogLevel, "log level: info, debug or trace")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newLevelsCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newResetCmd())

	return rootCmd
}

func runPlayCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyIntConfig(cmd, "level", &playLevel, fileCfg.Game.StartLevel)
	applyIntConfig(cmd, "fps", &playFPS, fileCfg.Game.FPS)
	applyFloatConfig(cmd, "spawns-per-second", &playSpawns, fileCfg.Game.SpawnsPerSecond)
	applyFloatConfig(cmd, "correct-pct", &playCorrect, fileCfg.Game.CorrectPct)
	applyFloatConfig(cmd, "paddle-width", &playPaddleWidth, fileCfg.Game.PaddleWidth)
	applyStringConfig(cmd, "frontend", &playFrontend, fileCfg.Game.Frontend)
	applySharedConfig(cmd, fileCfg)

	cfg := model.Config{
		FPS:             playFPS,
		SpawnsPerSecond: playSpawns,
		CorrectPct:      playCorrect,
		PaddleWidth:     playPaddleWidth,
		LevelsFile:      levelsFile,
		StartLevel:      playLevel,
		Frontend:        strings.ToLower(strings.TrimSpace(playFrontend)),
		LogLevel:        logLevel,
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}

	cat, err := loadCatalog(cfg.LevelsFile)
	if err != nil {
		return err
	}
	if cfg.StartLevel > 0 {
		if _, err := cat.Get(cfg.StartLevel); err != nil {
			return fmt.Errorf("invalid --level value: %w", err)
		}
	}

	logger, logFile, err := logging.OpenFile(config.DefaultLogPath(), cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := logFile.Close(); cerr != nil {
			logErrf("failed to close log: %v\n", cerr)
		}
	}()

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	tracker := progress.New(st, logger)
	sessOpts := session.Options{
		Catalog: cat,
		Spawner: spawner.NewSeeded(spawner.Options{
			FPS:             cfg.FPS,
			SpawnsPerSecond: cfg.SpawnsPerSecond,
			CorrectPct:      cfg.CorrectPct,
		}),
		Progress:    tracker,
		History:     st,
		Logger:      logger,
		PaddleWidth: cfg.PaddleWidth,
	}
	logger.Info("mathcatch started", "frontend", cfg.Frontend, "fps", cfg.FPS, "levels", cat.Len())

	if cfg.Frontend == "gui" {
		return gui.Run(gui.Options{
			Session:    sessOpts,
			Tracker:    tracker,
			FPS:        cfg.FPS,
			StartLevel: cfg.StartLevel,
		})
	}

	m := tui.NewModel(tui.Options{
		Session:    sessOpts,
		Tracker:    tracker,
		FPS:        cfg.FPS,
		StartLevel: cfg.StartLevel,
	})
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newLevelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "levels",
		Short: "List levels with best scores",
		Args:  cobra.NoArgs,
		RunE:  runLevelsCmd,
	}
}

func runLevelsCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applySharedConfig(cmd, fileCfg)

	cat, err := loadCatalog(levelsFile)
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	tracker := progress.New(st, stderrLogger())
	out := cmd.OutOrStdout()
	records := tracker.Load(context.Background())
	if err := stats.RenderLevels(out, cat.Levels(), records, stats.ShouldUseColor(out)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show session history",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().IntVar(&statsLevel, "level", 0, "level filter")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N sessions")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applySharedConfig(cmd, fileCfg)

	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if statsLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	cfg := model.StatsConfig{
		LevelID: statsLevel,
		Since:   sinceTime,
		Last:    statsLast,
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	report, err := stats.BuildReport(context.Background(), st, cfg)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if err := stats.RenderReport(out, report, stats.ShouldUseColor(out)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Forget passed levels and best scores",
		Args:  cobra.NoArgs,
		RunE:  runResetCmd,
	}
}

func runResetCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applySharedConfig(cmd, fileCfg)

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	logger := stderrLogger()
	if err := progress.New(st, logger).Reset(context.Background()); err != nil {
		return err
	}
	logger.Info("progress reset", "key", progress.Key)
	return writeLine(cmd.OutOrStdout(), "Progress cleared.")
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default(), nil
	}
	cat, err := catalog.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load levels: %w", err)
	}
	return cat, nil
}

func openStore() (*store.Store, error) {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return st, nil
}

func closeStore(st *store.Store) {
	if cerr := st.Close(); cerr != nil {
		logErrf("failed to close db: %v\n", cerr)
	}
}

func stderrLogger() *slog.Logger {
	return logging.NewLogger(logLevel, os.Stderr)
}

func applySharedConfig(cmd *cobra.Command, fileCfg config.FileConfig) {
	applyStringConfig(cmd, "levels-file", &levelsFile, fileCfg.Game.LevelsFile)
	applyStringConfig(cmd, "log-level", &logLevel, fileCfg.Game.LogLevel)
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# mathcatch configuration
# Uncomment a value to enable it. CLI flags override config values.

[game]
# fps = %d                     # Simulation frames per second
# spawns-per-second = %.1f     # Average new items per second
# correct-pct = %.1f           # Probability a new item is correct (0-1)
# paddle-width = %.0f          # Paddle width in play-area units
# levels-file = ""            # TOML or YAML file replacing the built-in levels
# start-level = 0             # Skip the menu and start this level
# frontend = %q             # tui or gui
# log-level = %q            # info, debug or trace
`,
		defaultFPS,
		spawner.DefaultSpawnsPerSecond,
		spawner.DefaultCorrectPct,
		sim.DefaultPaddleWidth,
		defaultFrontend,
		defaultLogLevel,
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.FPS <= 0 {
		return fmt.Errorf("--fps must be > 0")
	}
	if cfg.SpawnsPerSecond < 0 {
		return fmt.Errorf("--spawns-per-second must be >= 0")
	}
	if cfg.CorrectPct < 0 || cfg.CorrectPct > 1 {
		return fmt.Errorf("--correct-pct must be between 0 and 1")
	}
	if cfg.PaddleWidth <= 0 {
		return fmt.Errorf("--paddle-width must be > 0")
	}
	if cfg.StartLevel < 0 {
		return fmt.Errorf("--level must be >= 0")
	}
	if cfg.Frontend != "tui" && cfg.Frontend != "gui" {
		return fmt.Errorf("--frontend must be tui or gui")
	}
	if !logging.ValidLevel(cfg.LogLevel) {
		return fmt.Errorf("--log-level must be info, debug or trace")
	}
	return nil
}

func writeLine(w io.Writer, line string) error {
	if _, err := fmt.Fprintln(w, line); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
