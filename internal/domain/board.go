package domain

// TypeOccupancy is the free/booked pair for one spot type. Only active spots
// are counted; free + booked always equals the active total for the type.
type TypeOccupancy struct {
	Free   int `json:"free"`
	Booked int `json:"booked"`
}

// BoardSnapshot is what the display board shows: occupancy per type plus
// grand totals. It is a consistent point-in-time copy, safe to serialize.
type BoardSnapshot struct {
	Mini        TypeOccupancy `json:"mini"`
	Compact     TypeOccupancy `json:"compact"`
	Large       TypeOccupancy `json:"large"`
	TotalFree   int           `json:"total_free"`
	TotalBooked int           `json:"total_booked"`
}
