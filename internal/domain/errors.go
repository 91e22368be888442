package domain

import "errors"

var (
	ErrRecordNotFound    = errors.New("record not found")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrValidation        = errors.New("validation failed")
	ErrSlotInactive      = errors.New("slot is no longer active")
	ErrSeatConflict      = errors.New("seat(s) are already booked")
	ErrSlotOverlap       = errors.New("slot overlaps with another slot")
	ErrCutoffViolation   = errors.New("cancellation window has closed")
	ErrBookingNotFound   = errors.New("booking not found or cannot be cancelled")
)
