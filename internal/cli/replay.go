package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sergiup592/event-automation/internal/daemon"
)

var replayRepeat int

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Control playback of the recorded sequence",
}

var replayStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Replay the recorded sequence",
	Long: `Replay the recorded sequence.

The sequence runs with its original timing, repeated --repeat times.
Playback can be interrupted at any point (Ctrl+V or "macrod replay stop").`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if replayRepeat < 1 {
			return fmt.Errorf("repeat must be a positive integer, got %d", replayRepeat)
		}
		var resp map[string]string
		req := daemon.ReplayRequest{Repeat: replayRepeat}
		if err := newClient().post("/api/replay/start", req, &resp); err != nil {
			return err
		}
		if replayRepeat == 1 {
			fmt.Println("Playback Started")
		} else {
			fmt.Printf("Playback Started (%d iterations)\n", replayRepeat)
		}
		return nil
	},
}

var replayStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop playback and release any held keys",
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp map[string]string
		if err := newClient().post("/api/replay/stop", nil, &resp); err != nil {
			return err
		}
		fmt.Println("Playback Stopped")
		return nil
	},
}

func init() {
	replayStartCmd.Flags().IntVarP(&replayRepeat, "repeat", "n", 1, "Number of times to replay the sequence")

	replayCmd.AddCommand(replayStartCmd)
	replayCmd.AddCommand(replayStopCmd)
	rootCmd.AddCommand(replayCmd)
}
