package service

import "errors"

// Domain errors returned by the booking services. Handlers map these to
// HTTP status codes with errors.Is; everything else is treated as an
// internal error.
var (
	ErrNotFound        = errors.New("record not found")
	ErrInvalidSchedule = errors.New("end time must be after start time")
	ErrBookingClosed   = errors.New("booking is not open for changes")
	ErrRosterFull      = errors.New("booking already has four participants")
	ErrAlreadyJoined   = errors.New("user already joined this booking")
	ErrNotParticipant  = errors.New("user is not a participant of this booking")
	ErrTooCloseToStart = errors.New("confirmed bookings can only be left more than one hour before start")
	ErrTableConflict   = errors.New("table is occupied during the requested interval")
	ErrWrongStore      = errors.New("table belongs to a different store")
	ErrTableOccupied   = errors.New("table currently has a game in progress")
	ErrPendingLimit    = errors.New("too many open bookings for this user")
	ErrOverlapSelf     = errors.New("user already has a confirmed booking in this interval")
)
