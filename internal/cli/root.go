package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version information set via ldflags
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var (
	verbose    bool
	configFile string
)

var rootCmd = &cobra.Command{
	Use:   "macrod",
	Short: "Global input macro recorder and player",
	Long: `Macrod captures a timestamped sequence of keyboard and mouse input
and replays it, verbatim or repeated N times, by synthesizing
equivalent input at the operating-system level.

Run the daemon, then drive it over global hotkeys or the CLI:

  Ctrl+Z  start recording      Ctrl+X  stop recording
  Ctrl+C  start playback       Ctrl+V  stop playback

Configure in ~/.macrod/config.yaml. Recorded sequences live in memory
only; the daemon keeps just session metadata across restarts.`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("macrod %s\n", Version)
		fmt.Printf("  commit: %s\n", Commit)
		fmt.Printf("  built:  %s\n", Date)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Override config file path")

	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
