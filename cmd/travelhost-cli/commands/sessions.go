package commands

import (
	"log/slog"
	"time"

	"travelhost-backend/lib/osutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(sessionsCmd)
	sessionsCmd.AddCommand(sessionsCleanupCmd)
}

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Lists the active login sessions in the local store.",
	Run: func(cmd *cobra.Command, args []string) {
		svc, _ := setup()

		sessions, err := svc.Sessions(cmd.Context())
		if err != nil {
			osutil.Fatal("failed to list sessions", err)
		}

		t := newTable()
		t.AppendHeader(table.Row{"Identity", "Created", "Expires"})
		for _, record := range sessions {
			t.AppendRow(table.Row{
				record.Id,
				record.CreatedAt.Format(time.ANSIC),
				record.ExpiresAt.Format(time.ANSIC),
			})
		}
		t.Render()
	},
}

var sessionsCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Deletes expired login sessions from the local store.",
	Run: func(cmd *cobra.Command, args []string) {
		svc, _ := setup()

		swept, err := svc.CleanupSessions(cmd.Context())
		if err != nil {
			osutil.Fatal("failed to clean up sessions", err)
		}
		slog.Info("cleaned up expired sessions", "sessions", swept)
	},
}
