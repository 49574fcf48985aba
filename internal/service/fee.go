package service

import "time"

// ComputeFee turns an entry/exit pair and an hourly rate into the billed
// duration (whole minutes, floored) and total cost. Partial hours are billed
// as full hours. An exit at or before entry (clock skew, same-instant close)
// bills the one-hour minimum rather than zero or a negative amount.
func ComputeFee(entry, exit time.Time, hourlyRate int64) (durationMinutes, totalCost int64) {
	if !exit.After(entry) {
		return 0, hourlyRate
	}
	durationMinutes = int64(exit.Sub(entry).Minutes())
	hours := (durationMinutes + 59) / 60
	if hours == 0 {
		hours = 1
	}
	return durationMinutes, hours * hourlyRate
}
