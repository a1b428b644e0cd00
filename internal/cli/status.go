package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/sergiup592/event-automation/internal/daemon"
)

var (
	sessionsLimit int
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon status",
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp daemon.StatusResponse
		if err := newClient().get("/api/status", &resp); err != nil {
			fmt.Println("Daemon is not running")
			return nil
		}
		fmt.Printf("Daemon:    running (version %s, up %s)\n", resp.Version, resp.Uptime)
		fmt.Printf("Mode:      %s\n", resp.Mode)
		if resp.LogLen > 0 {
			fmt.Printf("Recorded:  %d actions\n", resp.LogLen)
		} else {
			fmt.Printf("Recorded:  nothing yet\n")
		}
		return nil
	},
}

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List recent recording and playback sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		var sessions []daemon.SessionResponse
		path := fmt.Sprintf("/api/sessions?limit=%d", sessionsLimit)
		if err := newClient().get(path, &sessions); err != nil {
			return err
		}
		if len(sessions) == 0 {
			fmt.Println("No sessions recorded yet")
			return nil
		}
		for _, s := range sessions {
			line := fmt.Sprintf("%-10s %-9s %4d actions", s.Mode, s.Outcome, s.Actions)
			if s.Iterations > 0 {
				line += fmt.Sprintf(" x%d", s.Iterations)
			}
			line += fmt.Sprintf("  %s", humanize.Time(s.StartedAt))
			if s.Error != "" {
				line += fmt.Sprintf("  (%s)", s.Error)
			}
			fmt.Println(line)
		}
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregate session statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		var stats daemon.StatsResponse
		if err := newClient().get("/api/stats", &stats); err != nil {
			return err
		}
		fmt.Printf("Sessions:   %s\n", humanize.Comma(int64(stats.TotalSessions)))
		fmt.Printf("Recordings: %s\n", humanize.Comma(int64(stats.Recordings)))
		fmt.Printf("Playbacks:  %s\n", humanize.Comma(int64(stats.Playbacks)))
		fmt.Printf("Actions:    %s\n", humanize.Comma(int64(stats.TotalActions)))
		if stats.Errors > 0 {
			fmt.Printf("Errors:     %d\n", stats.Errors)
		}
		if !stats.LastSessionAt.IsZero() {
			fmt.Printf("Last run:   %s\n", humanize.Time(stats.LastSessionAt))
		}
		return nil
	},
}

func init() {
	sessionsCmd.Flags().IntVar(&sessionsLimit, "limit", 20, "Maximum number of sessions to list")

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(statsCmd)
}
