package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sergiup592/event-automation/internal/config"
	"github.com/sergiup592/event-automation/internal/control"
	"github.com/sergiup592/event-automation/internal/daemon"
	"github.com/sergiup592/event-automation/internal/history"
	"github.com/sergiup592/event-automation/internal/input"
	"github.com/sergiup592/event-automation/internal/logger"
)

var (
	backgroundFlag      bool
	backgroundChildFlag bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the macrod daemon",
	Long: `Run the macrod daemon.

The daemon owns the capture/replay state machine, registers the global
hotkeys, and serves the local command API (plus an SSE notification
stream) for the CLI.

By default, runs in the foreground. Use --background to detach.

Example:
  macrod run              # Run in foreground
  macrod run --background # Run in background`,
	RunE: runDaemon,
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running daemon",
	RunE:  runStop,
}

func init() {
	runCmd.Flags().BoolVarP(&backgroundFlag, "background", "b", false, "Run daemon in background")
	runCmd.Flags().BoolVar(&backgroundChildFlag, "background-child", false, "Internal flag for background process")
	_ = runCmd.Flags().MarkHidden("background-child")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(stopCmd)
}

func loadConfig() (*config.Config, error) {
	loader, err := config.NewLoader()
	if err != nil {
		return nil, fmt.Errorf("failed to create config loader: %w", err)
	}
	if configFile != "" {
		return loader.LoadFromFile(configFile)
	}
	return loader.Load()
}

func initLogging(cfg *config.Config) {
	level := cfg.Settings.LogLevel
	if verbose {
		level = "debug"
	}
	if level == "" {
		level = "info"
	}
	_ = logger.Init(level, cfg.Settings.LogFile)
}

func runDaemon(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		cfg = config.DefaultConfig()
	}
	initLogging(cfg)

	lifecycle := daemon.NewLifecycle(cfg.Settings.Daemon)

	// If --background flag is set, re-exec detached and return
	if backgroundFlag && !backgroundChildFlag {
		if lifecycle.IsRunning() {
			fmt.Println("Daemon is already running")
			return nil
		}
		if err := lifecycle.StartInBackground(); err != nil {
			return fmt.Errorf("failed to start daemon in background: %w", err)
		}
		fmt.Printf("Daemon started on http://127.0.0.1:%d\n", lifecycle.Port())
		return nil
	}

	if !backgroundChildFlag && lifecycle.IsRunning() {
		return fmt.Errorf("daemon is already running (PID file: %s)", lifecycle.PIDFile())
	}

	// Platform capture/injection backends
	source, err := input.NewSystemSource()
	if err != nil {
		return fmt.Errorf("input capture unavailable: %w", err)
	}
	injector, err := input.NewSystemInjector()
	if err != nil {
		return fmt.Errorf("input injection unavailable: %w", err)
	}

	// History store; the daemon still runs without it
	var store history.Store
	if cfg.Settings.History.Enabled {
		sqlStore, err := history.NewSQLiteStore(cfg.Settings.History.StoragePath, cfg.Settings.History.MaxSessions)
		if err != nil {
			logger.Warn().Err(err).Msg("History store unavailable, continuing without it")
		} else {
			store = sqlStore
			defer func() { _ = sqlStore.Close() }()
		}
	}

	broadcaster := daemon.NewSSEBroadcaster()

	opts := control.Options{
		Source:   source,
		Injector: injector,
		Notifier: control.MultiNotifier{broadcaster, logNotifier{}},
	}
	if store != nil {
		opts.History = store
	}
	ctrl := control.New(opts)

	// Global hotkeys feed the same command entry points as the API
	if !cfg.Settings.Hotkeys.Disabled {
		repeat := cfg.Settings.Hotkeys.Repeat
		if repeat < 1 {
			repeat = 1
		}
		hotkeys, err := input.NewSystemHotkeys(input.HotkeyHandlers{
			StartRecording: func() { _ = ctrl.StartRecording() },
			StopRecording:  func() { _ = ctrl.StopRecording() },
			StartPlayback:  func() { _ = ctrl.StartPlayback(repeat) },
			StopPlayback:   func() { _ = ctrl.StopPlayback() },
		})
		if err != nil && !errors.Is(err, input.ErrUnsupported) {
			return fmt.Errorf("hotkey setup failed: %w", err)
		}
		if hotkeys != nil {
			if err := hotkeys.Start(); err != nil {
				return fmt.Errorf("hotkey registration failed: %w", err)
			}
			defer hotkeys.Stop()
			logger.Info().Msg("Global hotkey listener started")
		}
	}

	server := daemon.NewServer(cfg, ctrl, broadcaster, store, Version)
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	if err := server.Start(ctx); err != nil {
		return err
	}

	// Run until signalled; stop whatever session is active on the way out
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	switch ctrl.Mode() {
	case control.Recording:
		_ = ctrl.StopRecording()
	case control.Playing:
		_ = ctrl.StopPlayback()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	return server.Stop(shutdownCtx)
}

func runStop(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		cfg = config.DefaultConfig()
	}
	logger.InitQuiet()

	lifecycle := daemon.NewLifecycle(cfg.Settings.Daemon)
	if !lifecycle.IsRunning() {
		fmt.Println("Daemon is not running")
		return nil
	}
	if err := lifecycle.Stop(); err != nil {
		return err
	}
	fmt.Println("Daemon stopped")
	return nil
}

// logNotifier mirrors outward notifications into the diagnostic log.
type logNotifier struct{}

func (logNotifier) Status(text string) {
	logger.Info().Str("status", text).Msg("Status updated")
}

func (logNotifier) Progress(iteration int) {
	logger.Info().Int("iteration", iteration).Msg("Playback progress")
}

func (logNotifier) Finished() {
	logger.Info().Msg("Session finished")
}
