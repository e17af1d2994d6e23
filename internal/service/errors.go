package service

import "errors"

var (
	ErrLocationUnavailable = errors.New("location unavailable")
	ErrListingNotFound     = errors.New("sale listing not found")
	ErrListingSold         = errors.New("sale listing is no longer available")
	ErrOwnListing          = errors.New("cannot buy your own sale listing")
	ErrNotOwner            = errors.New("photocard belongs to another user")
	ErrInvalidSortKey      = errors.New("invalid sort key")
	ErrInvalidSortOrder    = errors.New("invalid sort order")
	ErrImageRequired       = errors.New("image is required")
)
