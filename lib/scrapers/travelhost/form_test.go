package travelhost

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestControlName(t *testing.T) {
	require.Equal(t, "ctl00$cphMain$HotelSearch$ddlVendor", controlName("HotelSearch", "ddlVendor"))
	require.Equal(t, "ctl00$cphMain$HotelSearch$RoomOccupancy2$ddlAdults", controlName("HotelSearch", "RoomOccupancy2", "ddlAdults"))
}

func TestBuildSearchForm(t *testing.T) {
	hidden := map[string]string{
		"__VIEWSTATE":          "vstate",
		"__VIEWSTATEGENERATOR": "vgen",
		"__EVENTVALIDATION":    "eval",
	}
	params := SearchParams{
		Origin:          "ATL",
		Destination:     "MCO",
		CheckIn:         "01/10/2026",
		CheckOut:        "01/15/2026",
		Rooms:           2,
		AdultsPerRoom:   []int{2, 1},
		ChildrenPerRoom: []int{0, 2},
		ChildAges:       [][]int{nil, {5, 7}},
	}

	form := buildSearchForm(hidden, "ctl00$smMain", Vendor{Code: "GP", Name: "Grand Palms"}, params,
		"Atlanta Metro (ATL)", "Orlando Area (MCO)")

	// harvested state is echoed verbatim
	require.Equal(t, "vstate", form.Get("__VIEWSTATE"))
	require.Equal(t, "vgen", form.Get("__VIEWSTATEGENERATOR"))
	require.Equal(t, "eval", form.Get("__EVENTVALIDATION"))

	require.Equal(t, resultsPanel+"|"+searchButtonField, form.Get("ctl00$smMain"))
	require.Equal(t, searchButtonField, form.Get("__EVENTTARGET"))
	require.Equal(t, "true", form.Get("__ASYNCPOST"))
	require.Equal(t, searchToolHotel, form.Get(searchToolField))

	require.Equal(t, "GP", form.Get(controlName("HotelSearch", "ddlVendor")))
	require.Equal(t, "Atlanta Metro (ATL)", form.Get(controlName("HotelSearch", "txtOrigin")))
	require.Equal(t, "Orlando Area (MCO)", form.Get(controlName("HotelSearch", "txtDestination")))
	require.Equal(t, "01/10/2026", form.Get(controlName("HotelSearch", "txtCheckIn")))
	require.Equal(t, "01/15/2026", form.Get(controlName("HotelSearch", "txtCheckOut")))
	require.Equal(t, "2", form.Get(controlName("HotelSearch", "ddlRooms")))

	require.Equal(t, "2", form.Get(controlName("HotelSearch", "RoomOccupancy1", "ddlAdults")))
	require.Equal(t, "0", form.Get(controlName("HotelSearch", "RoomOccupancy1", "ddlChildren")))
	require.False(t, form.Has(controlName("HotelSearch", "RoomOccupancy1", "ddlChildAge1")))

	require.Equal(t, "1", form.Get(controlName("HotelSearch", "RoomOccupancy2", "ddlAdults")))
	require.Equal(t, "2", form.Get(controlName("HotelSearch", "RoomOccupancy2", "ddlChildren")))
	require.Equal(t, "5", form.Get(controlName("HotelSearch", "RoomOccupancy2", "ddlChildAge1")))
	require.Equal(t, "7", form.Get(controlName("HotelSearch", "RoomOccupancy2", "ddlChildAge2")))

	// the inactive search tools still have to be present in the body
	for name := range inertFilterDefaults() {
		require.True(t, form.Has(name), name)
	}
}

func TestSearchParamsValidate(t *testing.T) {
	valid := SearchParams{Rooms: 1, AdultsPerRoom: []int{2}}
	require.NoError(t, valid.Validate())
	require.False(t, valid.HasChildren())

	require.Error(t, SearchParams{}.Validate())
	require.Error(t, SearchParams{Rooms: 2, AdultsPerRoom: []int{2}}.Validate())
	require.Error(t, SearchParams{Rooms: 1, AdultsPerRoom: []int{2}, ChildrenPerRoom: []int{1, 1}}.Validate())

	withKids := SearchParams{
		Rooms:           2,
		AdultsPerRoom:   []int{2, 2},
		ChildrenPerRoom: []int{0, 1},
		ChildAges:       [][]int{nil, {9}},
	}
	require.NoError(t, withKids.Validate())
	require.True(t, withKids.HasChildren())

	// every declared child needs an age entry for its room
	noAges := withKids
	noAges.ChildAges = nil
	require.Error(t, noAges.Validate())

	shortAges := withKids
	shortAges.ChildrenPerRoom = []int{0, 2}
	shortAges.ChildAges = [][]int{nil, {9}}
	require.Error(t, shortAges.Validate())

	extraRooms := withKids
	extraRooms.ChildAges = [][]int{nil, {9}, {4}}
	require.Error(t, extraRooms.Validate())
}
