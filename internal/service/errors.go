package service

import "errors"

// Terminal rejection reasons. Handlers branch on these with errors.Is to
// pick status codes; anything else coming out of the service is an
// internal fault and safe to retry (compensation restores the counter).
var (
	ErrGroupNotFound          = errors.New("group not found")
	ErrGroupClosed            = errors.New("group expired or closed")
	ErrGroupFull              = errors.New("group is full")
	ErrAlreadyJoined          = errors.New("user already joined")
	ErrInvalidMaxParticipants = errors.New("maxParticipants must be at least 1")
)
