package travelhost

import (
	"fmt"
	"time"
)

type Credentials struct {
	TenantId string `json:"tenant_id"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Identity is the session store key for these credentials.
func (c Credentials) Identity() string {
	return c.TenantId + ":" + c.Username
}

type Vendor struct {
	Code string
	Name string
}

// Market is an origin or destination the host knows about.
type Market struct {
	Code string
	Name string
}

type SearchParams struct {
	// origin and destination market codes
	Origin      string
	Destination string
	// raw MM/dd/yyyy date strings, passed through to the host
	CheckIn  string
	CheckOut string
	Rooms    int
	// one entry per room
	AdultsPerRoom   []int
	ChildrenPerRoom []int
	// ages for each room's children, one inner list per room
	ChildAges [][]int
}

func (p SearchParams) Validate() error {
	if p.Rooms < 1 {
		return fmt.Errorf("at least one room is required")
	}
	if len(p.AdultsPerRoom) != p.Rooms {
		return fmt.Errorf("adults per room has %d entries, want %d", len(p.AdultsPerRoom), p.Rooms)
	}
	if len(p.ChildrenPerRoom) != 0 && len(p.ChildrenPerRoom) != p.Rooms {
		return fmt.Errorf("children per room has %d entries, want %d", len(p.ChildrenPerRoom), p.Rooms)
	}
	if len(p.ChildAges) != 0 && len(p.ChildAges) != len(p.ChildrenPerRoom) {
		return fmt.Errorf("child ages has %d room entries, want %d", len(p.ChildAges), len(p.ChildrenPerRoom))
	}
	for i, children := range p.ChildrenPerRoom {
		ages := 0
		if i < len(p.ChildAges) {
			ages = len(p.ChildAges[i])
		}
		if ages != children {
			return fmt.Errorf("room %d lists %d children but %d ages", i+1, children, ages)
		}
	}
	return nil
}

// HasChildren reports whether any room carries children.
func (p SearchParams) HasChildren() bool {
	for _, n := range p.ChildrenPerRoom {
		if n > 0 {
			return true
		}
	}
	return false
}

type RoomOption struct {
	Code       string
	Name       string
	TotalPrice float64
	// price per person, when the host quotes one
	PricePerPerson *float64
	Promotions     []string
	ValueAdds      []string
}

type HotelResult struct {
	Id    string
	Name  string
	Stars int
	// secondary guest rating out of 5, with its review count; either
	// may be missing from the host's markup independently
	GuestRating *float64
	ReviewCount *int64
	Location    string
	// distance in miles from the searched destination
	DistanceMiles *float64
	Rooms         []RoomOption
	Vendor        string
	Source        string
	Destination   string
	// effective stay dates from the response header, which the host may
	// have shifted from the requested ones
	CheckIn  time.Time
	CheckOut time.Time
	// certification badge code, empty when the hotel carries none
	Certification string
}
