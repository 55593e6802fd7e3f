package store

import "errors"

var (
	// ErrSlotTaken is returned by Insert when the date already holds a
	// confirmed reservation.
	ErrSlotTaken = errors.New("slot already taken")
	// ErrCodeTaken is returned by Insert when the confirmation code collides
	// with an existing reservation.
	ErrCodeTaken = errors.New("confirmation code already in use")
)
