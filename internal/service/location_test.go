package service

import (
	"testing"

	"parklot/internal/domain"

	"github.com/stretchr/testify/assert"
)

func spotAt(t domain.SpotType, row, col int) domain.ParkingSpot {
	return domain.ParkingSpot{
		Type:     t,
		Location: domain.FormatLocation(t.Section(), row, col),
	}
}

func TestNextLocationEmptyStartsAtOne(t *testing.T) {
	assert.Equal(t, "S1-R1-C1", nextLocation(nil, domain.SpotMini))
	assert.Equal(t, "S2-R1-C1", nextLocation(nil, domain.SpotCompact))
	assert.Equal(t, "S3-R1-C1", nextLocation(nil, domain.SpotLarge))
}

func TestNextLocationIncrementsColumn(t *testing.T) {
	existing := []domain.ParkingSpot{
		spotAt(domain.SpotCompact, 1, 1),
		spotAt(domain.SpotCompact, 1, 2),
		spotAt(domain.SpotCompact, 1, 3),
	}
	assert.Equal(t, "S2-R1-C4", nextLocation(existing, domain.SpotCompact))
}

func TestNextLocationWrapsAtColumnTen(t *testing.T) {
	var existing []domain.ParkingSpot
	for col := 1; col <= 10; col++ {
		existing = append(existing, spotAt(domain.SpotMini, 1, col))
	}
	assert.Equal(t, "S1-R2-C1", nextLocation(existing, domain.SpotMini))
}

func TestNextLocationTracksMaxAcrossUnorderedInput(t *testing.T) {
	existing := []domain.ParkingSpot{
		spotAt(domain.SpotLarge, 2, 3),
		spotAt(domain.SpotLarge, 1, 9),
		spotAt(domain.SpotLarge, 2, 1),
	}
	// Row wins over column: max is (2,3), next is (2,4).
	assert.Equal(t, "S3-R2-C4", nextLocation(existing, domain.SpotLarge))
}

func TestParseLocationRoundTrip(t *testing.T) {
	section, row, col, err := domain.ParseLocation("S1-R2-C7")
	assert.NoError(t, err)
	assert.Equal(t, 1, section)
	assert.Equal(t, 2, row)
	assert.Equal(t, 7, col)

	_, _, _, err = domain.ParseLocation("garbage")
	assert.Error(t, err)
}
