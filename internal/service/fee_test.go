package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func at(hour, min int) time.Time {
	return time.Date(2025, 6, 1, hour, min, 0, 0, time.UTC)
}

func TestComputeFeePartialHourBilledAsFullHour(t *testing.T) {
	duration, cost := ComputeFee(at(10, 0), at(10, 45), 20)
	assert.Equal(t, int64(45), duration)
	assert.Equal(t, int64(20), cost)
}

func TestComputeFeeMultipleHoursRoundedUp(t *testing.T) {
	duration, cost := ComputeFee(at(10, 0), at(13, 5), 35)
	assert.Equal(t, int64(185), duration)
	assert.Equal(t, int64(140), cost) // ceil(185/60) = 4 hours
}

func TestComputeFeeExactHourNotRoundedUp(t *testing.T) {
	duration, cost := ComputeFee(at(10, 0), at(12, 0), 50)
	assert.Equal(t, int64(120), duration)
	assert.Equal(t, int64(100), cost)
}

func TestComputeFeeSameInstantChargesMinimum(t *testing.T) {
	entry := at(10, 0)
	duration, cost := ComputeFee(entry, entry, 35)
	assert.Equal(t, int64(0), duration)
	assert.Equal(t, int64(35), cost)
}

func TestComputeFeeClockSkewChargesMinimum(t *testing.T) {
	duration, cost := ComputeFee(at(10, 0), at(9, 59), 50)
	assert.Equal(t, int64(0), duration)
	assert.Equal(t, int64(50), cost)
}

func TestComputeFeeSubMinuteStayChargesOneHour(t *testing.T) {
	entry := at(10, 0)
	duration, cost := ComputeFee(entry, entry.Add(30*time.Second), 20)
	assert.Equal(t, int64(0), duration)
	assert.Equal(t, int64(20), cost)
}
