package entity

import "errors"

var (
	ErrInvalidFilter    = errors.New("invalid filter")
	ErrInvalidPrice     = errors.New("invalid price")
	ErrInvalidCondition = errors.New("invalid condition")
	ErrInvalidLocation  = errors.New("invalid location")
	ErrInvalidPhotocard = errors.New("invalid photocard data")
	ErrInvalidTimestamp = errors.New("invalid timestamp")
	ErrInvalidScope     = errors.New("invalid search scope")
)

// IsValidation reports whether err is a rejection raised before any remote call.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidFilter) ||
		errors.Is(err, ErrInvalidPrice) ||
		errors.Is(err, ErrInvalidCondition) ||
		errors.Is(err, ErrInvalidLocation) ||
		errors.Is(err, ErrInvalidPhotocard) ||
		errors.Is(err, ErrInvalidTimestamp) ||
		errors.Is(err, ErrInvalidScope)
}
