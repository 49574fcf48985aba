package domain

import (
	"time"

	"gopkg.in/guregu/null.v4"
)

// SpotSnapshot is the spot's state at assignment time, copied by value onto
// the ticket so later maintenance toggles cannot disturb fee computation.
type SpotSnapshot struct {
	Location   string   `json:"location"`
	Type       SpotType `json:"type"`
	HourlyRate int64    `json:"hourly_rate"`
}

type Ticket struct {
	ID              string       `json:"id"`
	OwnerName       string       `json:"owner_name"`
	OwnerContact    string       `json:"owner_contact"`
	VehicleNo       string       `json:"vehicle_no"`
	EntryTime       time.Time    `json:"entry_time"`
	ExitTime        null.Time    `json:"exit_time"`
	DurationMinutes null.Int     `json:"duration_minutes"`
	TotalCost       null.Int     `json:"total_cost"`
	Completed       bool         `json:"completed"`
	Spot            SpotSnapshot `json:"spot"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// ClosedTicket is the immutable record a ticket becomes at checkout. It lives
// in its own collection; nothing updates it afterwards.
type ClosedTicket struct {
	ID              string       `json:"id"`
	OwnerName       string       `json:"owner_name"`
	OwnerContact    string       `json:"owner_contact"`
	VehicleNo       string       `json:"vehicle_no"`
	EntryTime       time.Time    `json:"entry_time"`
	ExitTime        time.Time    `json:"exit_time"`
	DurationMinutes int64        `json:"duration_minutes"`
	TotalCost       int64        `json:"total_cost"`
	Spot            SpotSnapshot `json:"spot"`
	ClosedAt        time.Time    `json:"closed_at"`
}

type ParkRequestDTO struct {
	OwnerName    string `json:"owner_name" binding:"required"`
	OwnerContact string `json:"owner_contact" binding:"required"`
	VehicleNo    string `json:"vehicle_no" binding:"required"`
	SpotType     string `json:"spot_type" binding:"required"`
}

type UpdateVehicleDTO struct {
	VehicleNo string `json:"vehicle_no" binding:"required"`
}
