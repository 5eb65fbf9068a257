package travelhost

import (
	"context"
	_ "embed"
	"testing"
	"time"

	"travelhost-backend/lib/timezone"

	"github.com/stretchr/testify/require"
)

//go:embed testdata/results.html
var resultsFixture []byte

//go:embed testdata/results_nodates.html
var resultsNoDatesFixture []byte

func TestParseShortDate(t *testing.T) {
	cases := []struct {
		raw  string
		want time.Time
	}{
		{"10JAN26", time.Date(2026, time.January, 10, 0, 0, 0, 0, timezone.Location)},
		{"15JAN26", time.Date(2026, time.January, 15, 0, 0, 0, 0, timezone.Location)},
		{"01DEC99", time.Date(2099, time.December, 1, 0, 0, 0, 0, timezone.Location)},
		{"29FEB24", time.Date(2024, time.February, 29, 0, 0, 0, 0, timezone.Location)},
	}
	for _, c := range cases {
		got, err := parseShortDate(c.raw)
		require.NoError(t, err, c.raw)
		require.True(t, got.Equal(c.want), "%s parsed to %s", c.raw, got)
	}

	_, err := parseShortDate("10XXX26")
	require.Error(t, err)
	_, err = parseShortDate("January 10")
	require.Error(t, err)
}

func TestParseResults(t *testing.T) {
	hotels, err := ParseResults(context.Background(), resultsFixture)
	require.NoError(t, err)

	// the nameless boundary row and its trailing room never surface
	require.Len(t, hotels, 2)

	grand := hotels[0]
	require.Equal(t, "10021", grand.Id)
	require.Equal(t, "Grand Palms Resort", grand.Name)
	require.Equal(t, 4, grand.Stars)
	require.Equal(t, "Lake Buena Vista", grand.Location)
	require.Equal(t, "GP", grand.Vendor)
	require.Equal(t, "MCO1", grand.Source)
	require.Equal(t, "MCO", grand.Destination)
	require.Equal(t, "GREEN", grand.Certification)
	require.True(t, grand.CheckIn.Equal(time.Date(2026, time.January, 10, 0, 0, 0, 0, timezone.Location)))
	require.True(t, grand.CheckOut.Equal(time.Date(2026, time.January, 15, 0, 0, 0, 0, timezone.Location)))

	require.NotNil(t, grand.GuestRating)
	require.InDelta(t, 4.2, *grand.GuestRating, 1e-9)
	require.NotNil(t, grand.ReviewCount)
	require.EqualValues(t, 321, *grand.ReviewCount)
	require.NotNil(t, grand.DistanceMiles)
	require.InDelta(t, 1.3, *grand.DistanceMiles, 1e-9)

	require.Len(t, grand.Rooms, 2)
	deluxe := grand.Rooms[0]
	require.Equal(t, "A1K", deluxe.Code)
	require.Equal(t, "Deluxe King", deluxe.Name)
	require.InDelta(t, 523.40, deluxe.TotalPrice, 1e-9)
	require.NotNil(t, deluxe.PricePerPerson)
	require.InDelta(t, 261.70, *deluxe.PricePerPerson, 1e-9)
	require.Equal(t, []string{"Stay 4 Pay 3"}, deluxe.Promotions)
	require.Equal(t, []string{"Free Breakfast"}, deluxe.ValueAdds)

	queens := grand.Rooms[1]
	require.Equal(t, "A2Q", queens.Code)
	require.Equal(t, "Standard Two Queens", queens.Name)
	require.InDelta(t, 480.00, queens.TotalPrice, 1e-9)
	require.Nil(t, queens.PricePerPerson)
	require.Empty(t, queens.Promotions)
	require.Empty(t, queens.ValueAdds)

	parkway := hotels[1]
	require.Equal(t, "10022", parkway.Id)
	require.Equal(t, "Parkway Inn", parkway.Name)
	require.Equal(t, 0, parkway.Stars)
	require.Nil(t, parkway.GuestRating)
	require.Nil(t, parkway.ReviewCount)
	require.Nil(t, parkway.DistanceMiles)
	require.Empty(t, parkway.Certification)

	// the blank-named room is skipped, the unpriced one is kept at zero
	require.Len(t, parkway.Rooms, 1)
	std := parkway.Rooms[0]
	require.Equal(t, "STD", std.Code)
	require.Equal(t, "Standard Room", std.Name)
	require.Zero(t, std.TotalPrice)
	require.Nil(t, std.PricePerPerson)
}

func TestParseResultsMissingStayDates(t *testing.T) {
	_, err := ParseResults(context.Background(), resultsNoDatesFixture)
	require.ErrorIs(t, err, MissingStayDates)
}
