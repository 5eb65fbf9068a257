package travelhost

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// controlName reproduces the host's nested control naming. Every
// business field key on the search postback goes through here; the
// naming idiosyncrasy lives in exactly one place.
func controlName(parts ...string) string {
	return "ctl00$cphMain$" + strings.Join(parts, "$")
}

const (
	searchToolField   = "ctl00$cphMain$ddlSearchType"
	searchToolHotel   = "HotelOnly"
	searchButtonField = "ctl00$cphMain$HotelSearch$btnSearch"
	resultsPanel      = "ctl00$cphMain$HotelSearch$upResults"
)

// buildSearchForm layers the postback body for one vendor search:
// first the hidden state harvested from the page, then the fixed
// protocol keys, then the business fields.
func buildSearchForm(
	hidden map[string]string,
	scriptManagerId string,
	vendor Vendor,
	params SearchParams,
	originLabel, destinationLabel string,
) url.Values {
	form := url.Values{}
	for name, value := range hidden {
		form.Set(name, value)
	}

	// partial-postback bookkeeping
	form.Set(scriptManagerId, resultsPanel+"|"+searchButtonField)
	form.Set("__EVENTTARGET", searchButtonField)
	form.Set("__EVENTARGUMENT", "")
	form.Set("__ASYNCPOST", "true")
	form.Set(searchToolField, searchToolHotel)

	form.Set(controlName("HotelSearch", "ddlVendor"), vendor.Code)
	form.Set(controlName("HotelSearch", "ddlPackageType"), "HotelOnly")
	form.Set(controlName("HotelSearch", "txtOrigin"), originLabel)
	form.Set(controlName("HotelSearch", "txtDestination"), destinationLabel)
	form.Set(controlName("HotelSearch", "txtCheckIn"), params.CheckIn)
	form.Set(controlName("HotelSearch", "txtCheckOut"), params.CheckOut)
	form.Set(controlName("HotelSearch", "ddlRooms"), strconv.Itoa(params.Rooms))

	for i := 0; i < params.Rooms; i++ {
		room := fmt.Sprintf("RoomOccupancy%d", i+1)
		form.Set(controlName("HotelSearch", room, "ddlAdults"), strconv.Itoa(params.AdultsPerRoom[i]))

		children := 0
		if i < len(params.ChildrenPerRoom) {
			children = params.ChildrenPerRoom[i]
		}
		form.Set(controlName("HotelSearch", room, "ddlChildren"), strconv.Itoa(children))
		for j := 0; j < children; j++ {
			age := 0
			if i < len(params.ChildAges) && j < len(params.ChildAges[i]) {
				age = params.ChildAges[i][j]
			}
			form.Set(controlName("HotelSearch", room, fmt.Sprintf("ddlChildAge%d", j+1)), strconv.Itoa(age))
		}
	}

	for name, value := range inertFilterDefaults() {
		form.Set(name, value)
	}

	return form
}

// inertFilterDefaults returns the air and vehicle sub-component fields
// the upstream form validates for presence even on a hotel-only
// search. The values are inert; only the keys matter.
func inertFilterDefaults() map[string]string {
	return map[string]string{
		controlName("AirSearch", "ddlTripType"):          "RoundTrip",
		controlName("AirSearch", "ddlCabinClass"):        "Coach",
		controlName("AirSearch", "txtDepartureAirport"):  "",
		controlName("AirSearch", "txtArrivalAirport"):    "",
		controlName("AirSearch", "ddlDepartureTime"):     "Anytime",
		controlName("AirSearch", "ddlReturnTime"):        "Anytime",
		controlName("AirSearch", "chkNonStopOnly"):       "",
		controlName("VehicleSearch", "ddlVehicleType"):   "Any",
		controlName("VehicleSearch", "ddlVendorFilter"):  "All",
		controlName("VehicleSearch", "txtPickupTime"):    "10:00 AM",
		controlName("VehicleSearch", "txtDropoffTime"):   "10:00 AM",
		controlName("VehicleSearch", "chkAirportPickup"): "",
	}
}
