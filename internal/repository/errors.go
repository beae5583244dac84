package repository

import "errors"

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrDuplicateUsername = errors.New("username already taken")
	ErrSpaceNotFound     = errors.New("space not found")
	ErrBookingNotFound   = errors.New("booking not found")
	ErrOverlap           = errors.New("booking window overlaps an existing booking")
	ErrSpaceUnavailable  = errors.New("space is not available")
)
