package commands

import (
	"context"
	"time"

	"travelhost-backend/lib/osutil"
	"travelhost-backend/lib/scrapers/travelhost"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(marketsCmd)
}

func renderMarkets(title string, markets []travelhost.Market) {
	t := newTable()
	t.SetTitle(title)
	t.AppendHeader(table.Row{"Code", "Name"})
	for _, market := range markets {
		t.AppendRow(table.Row{market.Code, market.Name})
	}
	t.Render()
}

var marketsCmd = &cobra.Command{
	Use:   "markets",
	Short: "Lists the origin and destination markets the host knows about.",
	Run: func(cmd *cobra.Command, args []string) {
		svc, creds := setup()

		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute*2)
		defer cancel()

		origins, err := svc.Origins(ctx, creds)
		if err != nil {
			osutil.Fatal("failed to list origins", err)
		}
		destinations, err := svc.Destinations(ctx, creds)
		if err != nil {
			osutil.Fatal("failed to list destinations", err)
		}

		renderMarkets("Origins", origins)
		renderMarkets("Destinations", destinations)
	},
}
