package commands

import (
	"log/slog"

	"travelhost-backend/lib/osutil"

	"github.com/spf13/cobra"
)

var evictDays *int

func init() {
	evictDays = evictCmd.Flags().Int("days", 3, "Evict cached results older than this many days.")
	rootCmd.AddCommand(evictCmd)
}

var evictCmd = &cobra.Command{
	Use:   "evict [--days <n>]",
	Short: "Evicts stale cached search results.",
	Run: func(cmd *cobra.Command, args []string) {
		svc, _ := setup()

		evicted, err := svc.EvictCache(cmd.Context(), *evictDays)
		if err != nil {
			osutil.Fatal("failed to evict cached results", err)
		}
		slog.Info("evicted cached results", "hotels", evicted)
	},
}
