package service

import (
	"parklot/internal/domain"
)

// locationColumns is the fixed row width: column wraps back to 1 and the row
// increments once a row holds this many spots.
const locationColumns = 10

// nextLocation returns the location code immediately following the highest
// (row, col) in use among the given spots of one type, row compared before
// column. An empty set starts at row 1, column 1. The caller must hold the
// capacity mutex so two expansions cannot compute the same code.
func nextLocation(existing []domain.ParkingSpot, t domain.SpotType) string {
	maxRow, maxCol := 0, 0
	for _, spot := range existing {
		_, row, col, err := domain.ParseLocation(spot.Location)
		if err != nil {
			// Locations are generated by this allocator; a malformed one
			// cannot influence the next position.
			continue
		}
		if row > maxRow || (row == maxRow && col > maxCol) {
			maxRow, maxCol = row, col
		}
	}

	if maxRow == 0 {
		return domain.FormatLocation(t.Section(), 1, 1)
	}

	row, col := maxRow, maxCol+1
	if col > locationColumns {
		row++
		col = 1
	}
	return domain.FormatLocation(t.Section(), row, col)
}
