package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sergiup592/event-automation/internal/config"
	"github.com/sergiup592/event-automation/internal/daemon"
	"github.com/sergiup592/event-automation/internal/logger"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Manage the macrod daemon",
	Long: `Manage the macrod daemon.

The daemon owns the recording/playback state machine, registers the
global hotkeys, and serves the command API used by the other CLI
commands.

Commands:
  start  - Start the daemon (foreground or background)
  stop   - Stop the running daemon
  status - Check if the daemon is running`,
}

var daemonStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the daemon",
	Long: `Start the macrod daemon.

By default, runs in the foreground. Use --background to run as a
background process.

Example:
  macrod daemon start              # Run in foreground
  macrod daemon start --background # Run in background`,
	RunE: runDaemon,
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running daemon",
	RunE:  runStop,
}

var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check daemon status",
	RunE:  runDaemonStatus,
}

func init() {
	daemonStartCmd.Flags().BoolVarP(&backgroundFlag, "background", "b", false, "Run daemon in background")

	daemonCmd.AddCommand(daemonStartCmd)
	daemonCmd.AddCommand(daemonStopCmd)
	daemonCmd.AddCommand(daemonStatusCmd)
	rootCmd.AddCommand(daemonCmd)
}

func runDaemonStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		cfg = config.DefaultConfig()
	}
	logger.InitQuiet()

	lifecycle := daemon.NewLifecycle(cfg.Settings.Daemon)
	if lifecycle.IsRunning() {
		fmt.Printf("Daemon is running on http://127.0.0.1:%d\n", lifecycle.Port())
	} else {
		fmt.Println("Daemon is not running")
	}
	return nil
}
