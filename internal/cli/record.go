package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Control recording",
}

var recordStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start recording input events",
	Long: `Start recording input events.

The previously recorded sequence, if any, is discarded. Recording
continues until stopped (Ctrl+X or "macrod record stop").`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp map[string]string
		if err := newClient().post("/api/record/start", nil, &resp); err != nil {
			return err
		}
		fmt.Println("Recording Started")
		return nil
	},
}

var recordStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop recording and commit the captured sequence",
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp map[string]string
		if err := newClient().post("/api/record/stop", nil, &resp); err != nil {
			return err
		}
		fmt.Println("Recording Finished")
		return nil
	},
}

func init() {
	recordCmd.AddCommand(recordStartCmd)
	recordCmd.AddCommand(recordStopCmd)
	rootCmd.AddCommand(recordCmd)
}
