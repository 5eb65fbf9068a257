package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"travelhost-backend/lib/osutil"
	"travelhost-backend/lib/scrapers/travelhost"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var searchOrigin *string
var searchDestination *string
var searchCheckIn *string
var searchCheckOut *string
var searchAdults *[]int
var searchChildAges *[]string

func init() {
	searchOrigin = searchCmd.Flags().String("origin", "", "Origin market code.")
	searchDestination = searchCmd.Flags().String("destination", "", "Destination market code.")
	searchCheckIn = searchCmd.Flags().String("check-in", "", "Check-in date, MM/dd/yyyy.")
	searchCheckOut = searchCmd.Flags().String("check-out", "", "Check-out date, MM/dd/yyyy.")
	searchAdults = searchCmd.Flags().IntSlice("adults", []int{2}, "Adults per room, one entry per room.")
	searchChildAges = searchCmd.Flags().StringArray("child-ages", nil, "Child ages per room as comma-separated lists, e.g. --child-ages 5,7 --child-ages ''.")
	searchCmd.MarkFlagRequired("origin")
	searchCmd.MarkFlagRequired("destination")
	searchCmd.MarkFlagRequired("check-in")
	searchCmd.MarkFlagRequired("check-out")
	rootCmd.AddCommand(searchCmd)
}

func parseChildAges(perRoom []string, rooms int) ([]int, [][]int, error) {
	if len(perRoom) == 0 {
		return nil, nil, nil
	}
	if len(perRoom) != rooms {
		return nil, nil, fmt.Errorf("--child-ages given for %d rooms, want %d", len(perRoom), rooms)
	}

	children := make([]int, rooms)
	ages := make([][]int, rooms)
	for i, list := range perRoom {
		if strings.TrimSpace(list) == "" {
			continue
		}
		for _, raw := range strings.Split(list, ",") {
			age, err := strconv.Atoi(strings.TrimSpace(raw))
			if err != nil {
				return nil, nil, fmt.Errorf("bad child age %q: %w", raw, err)
			}
			ages[i] = append(ages[i], age)
		}
		children[i] = len(ages[i])
	}
	return children, ages, nil
}

var searchCmd = &cobra.Command{
	Use:   "search --origin ATL --destination MCO --check-in 01/10/2026 --check-out 01/15/2026",
	Short: "Searches every vendor for hotels and prints the aggregate.",
	Run: func(cmd *cobra.Command, args []string) {
		svc, creds := setup()

		rooms := len(*searchAdults)
		children, ages, err := parseChildAges(*searchChildAges, rooms)
		if err != nil {
			osutil.Fatal("failed to parse child ages", err)
		}

		params := travelhost.SearchParams{
			Origin:          *searchOrigin,
			Destination:     *searchDestination,
			CheckIn:         *searchCheckIn,
			CheckOut:        *searchCheckOut,
			Rooms:           rooms,
			AdultsPerRoom:   *searchAdults,
			ChildrenPerRoom: children,
			ChildAges:       ages,
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute*15)
		defer cancel()

		t1 := time.Now()
		agg, err := svc.SearchAllVendors(ctx, creds, params)
		if err != nil {
			osutil.Fatal("search failed", err)
		}
		slog.Info("search finished",
			"seconds", time.Since(t1).Seconds(),
			"hotels", len(agg.Hotels),
			"from_cache", agg.FromCache,
			"failed_vendors", agg.FailedVendors)

		t := newTable()
		t.AppendHeader(table.Row{"Vendor", "Hotel", "Stars", "Location", "Room", "Total", "Stay"})
		for _, hotel := range agg.Hotels {
			stay := fmt.Sprintf("%s - %s",
				hotel.CheckIn.Format("01/02/2006"),
				hotel.CheckOut.Format("01/02/2006"))
			if len(hotel.Rooms) == 0 {
				t.AppendRow(table.Row{hotel.Vendor, hotel.Name, hotel.Stars, hotel.Location, "", "", stay})
				continue
			}
			for _, room := range hotel.Rooms {
				t.AppendRow(table.Row{
					hotel.Vendor, hotel.Name, hotel.Stars, hotel.Location,
					room.Name, fmt.Sprintf("$%.2f", room.TotalPrice), stay,
				})
			}
		}
		t.Render()
	},
}
