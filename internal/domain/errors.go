package domain

import "errors"

// Domain errors
var (
	// Not found
	ErrEventNotFound       = errors.New("event not found")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrLocalityNotFound    = errors.New("locality not found")
	ErrRoomNotFound        = errors.New("room not found")
	ErrCityNotFound        = errors.New("city not found")
	ErrPersonNotFound      = errors.New("person not found")

	// Invalid state
	ErrEventInactive        = errors.New("cannot reserve inactive event")
	ErrEventFull            = errors.New("cannot reserve fully booked event")
	ErrDuplicateReservation = errors.New("duplicate reservation")
	ErrAlreadyCancelled     = errors.New("reservation already cancelled")
	ErrEventNotConcluded    = errors.New("only concluded events can be rated")
	ErrNoReservation        = errors.New("user has no reservation for this event")
	ErrUsernameTaken        = errors.New("username already taken")

	// Validation
	ErrInvalidCapacity   = errors.New("capacity must be greater than zero")
	ErrInvalidDuration   = errors.New("duration must be at least 15 minutes")
	ErrInvalidPrice      = errors.New("price cannot be negative")
	ErrInvalidSchedule   = errors.New("invalid date or time")
	ErrInvalidRating     = errors.New("rating must be between 0 and 5")
	ErrInvalidPriceRange = errors.New("price range must be [min, max] with min <= max")
	ErrRoomsRequired     = errors.New("at least one room is required")
	ErrNameRequired      = errors.New("name is required")
	ErrAddressRequired   = errors.New("address is required")
	ErrInvalidID         = errors.New("invalid id")
	ErrInvalidCoordinate = errors.New("invalid coordinates")

	// Access
	ErrUnauthenticated = errors.New("authentication required")
	ErrAccessDenied    = errors.New("access denied")
	ErrWrongRole       = errors.New("operation not allowed for this role")
)

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrEventNotFound) ||
		errors.Is(err, ErrReservationNotFound) ||
		errors.Is(err, ErrLocalityNotFound) ||
		errors.Is(err, ErrRoomNotFound) ||
		errors.Is(err, ErrCityNotFound) ||
		errors.Is(err, ErrPersonNotFound)
}

// IsConflictError checks if the error is a conflict or invalid state error
func IsConflictError(err error) bool {
	return errors.Is(err, ErrEventInactive) ||
		errors.Is(err, ErrEventFull) ||
		errors.Is(err, ErrDuplicateReservation) ||
		errors.Is(err, ErrAlreadyCancelled) ||
		errors.Is(err, ErrEventNotConcluded) ||
		errors.Is(err, ErrNoReservation) ||
		errors.Is(err, ErrUsernameTaken)
}

// IsValidationError checks if the error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidCapacity) ||
		errors.Is(err, ErrInvalidDuration) ||
		errors.Is(err, ErrInvalidPrice) ||
		errors.Is(err, ErrInvalidSchedule) ||
		errors.Is(err, ErrInvalidRating) ||
		errors.Is(err, ErrInvalidPriceRange) ||
		errors.Is(err, ErrRoomsRequired) ||
		errors.Is(err, ErrNameRequired) ||
		errors.Is(err, ErrAddressRequired) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrInvalidCoordinate)
}

// IsAccessDeniedError checks if the caller may not perform the operation
func IsAccessDeniedError(err error) bool {
	return errors.Is(err, ErrAccessDenied) ||
		errors.Is(err, ErrWrongRole)
}
