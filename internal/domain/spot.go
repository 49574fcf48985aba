package domain

import (
	"fmt"
	"time"
)

type SpotType string

const (
	SpotMini    SpotType = "mini"
	SpotCompact SpotType = "compact"
	SpotLarge   SpotType = "large"
)

// SpotTypes lists every valid type in display order.
var SpotTypes = []SpotType{SpotMini, SpotCompact, SpotLarge}

var hourlyRates = map[SpotType]int64{
	SpotMini:    20,
	SpotCompact: 35,
	SpotLarge:   50,
}

var sections = map[SpotType]int{
	SpotMini:    1,
	SpotCompact: 2,
	SpotLarge:   3,
}

func (t SpotType) Valid() bool {
	_, ok := hourlyRates[t]
	return ok
}

// HourlyRate returns the fixed rate for the type, in currency units per hour.
func (t SpotType) HourlyRate() int64 {
	return hourlyRates[t]
}

// Section returns the fixed section number locations of this type live in.
func (t SpotType) Section() int {
	return sections[t]
}

func ParseSpotType(s string) (SpotType, error) {
	t := SpotType(s)
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidSpotType, s)
	}
	return t, nil
}

type ParkingSpot struct {
	ID         int       `json:"id"`
	Type       SpotType  `json:"type"`
	Location   string    `json:"location"`
	HourlyRate int64     `json:"hourly_rate"`
	IsBooked   bool      `json:"is_booked"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// FormatLocation builds the canonical location code, e.g. "S1-R2-C7".
func FormatLocation(section, row, col int) string {
	return fmt.Sprintf("S%d-R%d-C%d", section, row, col)
}

// ParseLocation is the inverse of FormatLocation.
func ParseLocation(loc string) (section, row, col int, err error) {
	n, err := fmt.Sscanf(loc, "S%d-R%d-C%d", &section, &row, &col)
	if err != nil || n != 3 {
		return 0, 0, 0, fmt.Errorf("malformed location %q", loc)
	}
	return section, row, col, nil
}

type AddSpotsDTO struct {
	Counts map[string]int `json:"counts" binding:"required"`
}

type SetSpotActiveDTO struct {
	Active *bool `json:"active" binding:"required"`
}

// AddSpotsReport is returned from a capacity expansion: how many spots were
// added per type in this batch and the new per-type grand totals.
type AddSpotsReport struct {
	Added  map[SpotType]int `json:"added"`
	Totals map[SpotType]int `json:"totals"`
}
