package queue

import "errors"

var (
	// ErrAuthRequired indicates an upload was requested without an access token.
	ErrAuthRequired = errors.New("youtube authentication required")

	// ErrItemNotFound indicates the id is not in the queue.
	ErrItemNotFound = errors.New("queue item not found")

	// ErrItemBusy indicates a network call for the item is already in flight.
	ErrItemBusy = errors.New("queue item busy")

	// ErrInvalidTransition indicates the item's status does not allow the operation.
	ErrInvalidTransition = errors.New("invalid status transition")
)
