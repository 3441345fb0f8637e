package instance

import "errors"

var (
	ErrInstanceNotFound    = errors.New("instance not found")
	ErrInstanceExists      = errors.New("instance already exists")
	ErrParticipantNotFound = errors.New("participant not found")
)
