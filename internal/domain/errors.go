package domain

import "errors"

// Domain failure taxonomy. Handlers map these to transport status codes once;
// services return them untouched so callers can branch with errors.Is.
var (
	// ErrNoSpotAvailable means every active spot of the requested type is
	// booked. Expected under load, not an internal fault.
	ErrNoSpotAvailable = errors.New("no free parking spot of requested type")

	ErrSpotNotFound   = errors.New("parking spot not found")
	ErrSpotOccupied   = errors.New("parking spot has an open ticket")
	ErrTicketNotFound = errors.New("ticket not found")

	// ErrDuplicateOpenTicket means the vehicle already has an open ticket.
	ErrDuplicateOpenTicket = errors.New("vehicle already has an open ticket")

	// ErrAlreadyCompleted means a second close attempt on a closed ticket.
	ErrAlreadyCompleted = errors.New("ticket already completed")

	ErrInvalidSpotType = errors.New("invalid spot type")
	ErrInvalidCount    = errors.New("spot count must be positive")

	// ErrLocationCollision is a data-integrity violation: a freshly computed
	// location already exists. Should never happen under correct locking.
	ErrLocationCollision = errors.New("location already exists")
)
