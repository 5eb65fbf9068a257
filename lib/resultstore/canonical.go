package resultstore

import (
	"strconv"
	"strings"

	"travelhost-backend/lib/scrapers/travelhost"
	"travelhost-backend/lib/textutil"
)

func joinInts(values []int, sep string) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, sep)
}

// Canonicalize derives the cache identity for a set of search
// parameters. Origin and destination codes are stripped to
// alphanumerics, so variants that differ only in punctuation or
// whitespace collapse to the same key. That collision is accepted.
func Canonicalize(params travelhost.SearchParams) string {
	parts := []string{
		textutil.Sanitize(params.Origin),
		textutil.Sanitize(params.Destination),
		params.CheckIn,
		params.CheckOut,
		strconv.Itoa(params.Rooms),
		joinInts(params.AdultsPerRoom, "-"),
	}

	if params.HasChildren() {
		parts = append(parts, joinInts(params.ChildrenPerRoom, "-"))
		ages := make([]string, len(params.ChildAges))
		for i, roomAges := range params.ChildAges {
			ages[i] = joinInts(roomAges, "-")
		}
		parts = append(parts, strings.Join(ages, "_"))
	}

	return strings.Join(parts, ":")
}
