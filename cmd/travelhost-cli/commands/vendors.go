package commands

import (
	"context"
	"time"

	"travelhost-backend/lib/osutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(vendorsCmd)
}

var vendorsCmd = &cobra.Command{
	Use:   "vendors",
	Short: "Lists the vendors the host currently offers.",
	Run: func(cmd *cobra.Command, args []string) {
		svc, creds := setup()

		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute*2)
		defer cancel()

		vendors, err := svc.Vendors(ctx, creds)
		if err != nil {
			osutil.Fatal("failed to list vendors", err)
		}

		t := newTable()
		t.AppendHeader(table.Row{"Code", "Name"})
		for _, vendor := range vendors {
			t.AppendRow(table.Row{vendor.Code, vendor.Name})
		}
		t.Render()
	},
}
