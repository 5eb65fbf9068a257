package travelhost

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"travelhost-backend/lib/htmlutil"
	"travelhost-backend/lib/timezone"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// MissingStayDates is fatal for a whole results document: every row
// depends on the header's effective stay dates.
var MissingStayDates = errors.New("results header is missing the stay dates")

var shortDateRegex = regexp.MustCompile(`\b(\d{2})([A-Z]{3})(\d{2})\b`)

var monthAbbrev = map[string]time.Month{
	"JAN": time.January, "FEB": time.February, "MAR": time.March,
	"APR": time.April, "MAY": time.May, "JUN": time.June,
	"JUL": time.July, "AUG": time.August, "SEP": time.September,
	"OCT": time.October, "NOV": time.November, "DEC": time.December,
}

// parseShortDate reads the host's 10JAN26 date format. The year is
// always 2000+YY; anything the host means outside 2000-2099 will be
// mis-dated, a known limitation of the format itself.
func parseShortDate(s string) (time.Time, error) {
	groups := shortDateRegex.FindStringSubmatch(s)
	if len(groups) < 4 {
		return time.Time{}, fmt.Errorf("%q is not a short date", s)
	}
	day, err := strconv.Atoi(groups[1])
	if err != nil {
		return time.Time{}, err
	}
	month, ok := monthAbbrev[groups[2]]
	if !ok {
		return time.Time{}, fmt.Errorf("unknown month abbreviation %q", groups[2])
	}
	yy, err := strconv.Atoi(groups[3])
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(2000+yy, month, day, 0, 0, 0, 0, timezone.Location), nil
}

var onclickKVRegex = regexp.MustCompile(`(\w+)=([A-Za-z0-9_\-]+)`)

// onclickFields parses the key=value fragments embedded in an event
// handler attribute, e.g. ShowHotelDetail('HotelId=10021&VendorId=GP').
func onclickFields(attr string) map[string]string {
	fields := map[string]string{}
	for _, groups := range onclickKVRegex.FindAllStringSubmatch(attr, -1) {
		fields[groups[1]] = groups[2]
	}
	return fields
}

var currencyRegex = regexp.MustCompile(`\$\s*([0-9][0-9,]*(?:\.[0-9]{2})?)`)
var perPersonRegex = regexp.MustCompile(`\$\s*([0-9][0-9,]*(?:\.[0-9]{2})?)\s*per person`)
var guestRatingRegex = regexp.MustCompile(`([0-9.]+) of 5 stars`)
var reviewCountRegex = regexp.MustCompile(`Based on ([0-9,]+) reviews`)
var distanceRegex = regexp.MustCompile(`([0-9.]+)\s+miles`)

func parseAmount(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
}

// ParseResults extracts hotel and room records from a raw results
// document. A malformed record never fails the batch; it is logged and
// dropped. Only a header without stay dates is fatal.
func ParseResults(ctx context.Context, raw []byte) ([]HotelResult, error) {
	ctx, span := tracer.Start(ctx, "ParseResults")
	defer span.End()

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(raw))
	if err != nil {
		span.SetStatus(codes.Error, "failed to parse results html")
		return nil, err
	}

	header := doc.Find("#ctl00_cphMain_pnlResultsHeader").Text()
	headerDates := shortDateRegex.FindAllString(header, 2)
	if len(headerDates) < 2 {
		span.SetStatus(codes.Error, MissingStayDates.Error())
		return nil, MissingStayDates
	}
	checkIn, err := parseShortDate(headerDates[0])
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%w: %s", MissingStayDates, err)
	}
	checkOut, err := parseShortDate(headerDates[1])
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%w: %s", MissingStayDates, err)
	}

	var hotels []HotelResult
	var current *HotelResult

	doc.Find("#ctl00_cphMain_gvHotelResults tr").Each(func(_ int, row *goquery.Selection) {
		cell := row.Find("td.hotelCell")
		if cell.Length() > 0 {
			// hotel boundary row
			current = nil
			hotel, ok := parseHotelRow(ctx, cell)
			if !ok {
				return
			}
			hotel.CheckIn = checkIn
			hotel.CheckOut = checkOut
			hotels = append(hotels, hotel)
			current = &hotels[len(hotels)-1]
			return
		}
		if current == nil {
			return
		}
		room, ok := parseRoomRow(row)
		if ok {
			current.Rooms = append(current.Rooms, room)
		}
	})

	span.SetAttributes(attribute.Int("hotels", len(hotels)))
	return hotels, nil
}

// parseHotelRow reads one hotel boundary row. A row without a display
// name is not a real hotel (spacer and ad rows share the marker) and
// is skipped silently; a row that has a name but is otherwise broken
// is logged and dropped.
func parseHotelRow(ctx context.Context, cell *goquery.Selection) (HotelResult, bool) {
	anchor := cell.Find("a.hotelNameLink")
	name := htmlutil.CleanText(anchor)
	if name == "" {
		return HotelResult{}, false
	}

	fields := onclickFields(anchor.AttrOr("onclick", ""))
	if fields["HotelId"] == "" {
		slog.WarnContext(ctx, "dropping hotel row without an id", "name", name)
		return HotelResult{}, false
	}

	hotel := HotelResult{
		Id:          fields["HotelId"],
		Name:        name,
		Stars:       cell.Find("img.starIcon").Length(),
		Location:    htmlutil.CleanText(cell.Find("span.hotelLocation")),
		Vendor:      fields["VendorId"],
		Source:      fields["SourceId"],
		Destination: fields["DestinationId"],
	}

	// secondary rating and review count are independently optional
	if groups := guestRatingRegex.FindStringSubmatch(cell.Find("img.guestRatingIcon").AttrOr("alt", "")); len(groups) >= 2 {
		rating, err := strconv.ParseFloat(groups[1], 64)
		if err == nil {
			hotel.GuestRating = &rating
		}
	}
	if groups := reviewCountRegex.FindStringSubmatch(cell.Find("a.reviewCountLink").Text()); len(groups) >= 2 {
		count, err := strconv.ParseInt(strings.ReplaceAll(groups[1], ",", ""), 10, 64)
		if err == nil {
			hotel.ReviewCount = &count
		}
	}
	if groups := distanceRegex.FindStringSubmatch(cell.Text()); len(groups) >= 2 {
		distance, err := strconv.ParseFloat(groups[1], 64)
		if err == nil {
			hotel.DistanceMiles = &distance
		}
	}

	badge := onclickFields(cell.Find("input.certBadge").AttrOr("onclick", ""))
	hotel.Certification = badge["cert"]

	return hotel, true
}

// parseRoomRow reads one intermediate row between hotel boundaries.
// Rows without a room link or with an empty room name are layout
// noise, not errors.
func parseRoomRow(row *goquery.Selection) (RoomOption, bool) {
	anchor := row.Find("a.roomSelectLink")
	if anchor.Length() == 0 {
		return RoomOption{}, false
	}
	name := htmlutil.CleanText(anchor)
	if name == "" {
		return RoomOption{}, false
	}

	fields := onclickFields(anchor.AttrOr("onclick", ""))
	room := RoomOption{
		Code: fields["room"],
		Name: name,
	}

	rateCell := row.Find("td.roomRateCell")
	rateText := rateCell.Text()
	// a missing price is a zero price, not a dropped room
	if groups := currencyRegex.FindStringSubmatch(rateText); len(groups) >= 2 {
		total, err := parseAmount(groups[1])
		if err == nil {
			room.TotalPrice = total
		}
	}
	if groups := perPersonRegex.FindStringSubmatch(rateText); len(groups) >= 2 {
		perPerson, err := parseAmount(groups[1])
		if err == nil {
			room.PricePerPerson = &perPerson
		}
	}

	row.Find("span.promoText").Each(func(_ int, promo *goquery.Selection) {
		room.Promotions = append(room.Promotions, htmlutil.CleanText(promo))
	})
	row.Find("img.valueAddIcon").Each(func(_ int, icon *goquery.Selection) {
		if alt := icon.AttrOr("alt", ""); alt != "" {
			room.ValueAdds = append(room.ValueAdds, alt)
		}
	})

	return room, true
}
