package services

import (
	"errors"
	"fmt"

	"connect-service/internal/models"
)

// Typed failures of the graph engine. Every guard that rejects an operation
// surfaces one of these so the API layer can map it to the right HTTP status
// and the client can render the correct next action.
var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrSelfReference         = errors.New("cannot connect with yourself")
	ErrNotFound              = errors.New("not found")
	ErrForbidden             = errors.New("not authorized for this action")
	ErrAlreadyAccepted       = errors.New("connection request already accepted")
	ErrAlreadyRejected       = errors.New("connection request already rejected")
	ErrInvalidParticipants   = errors.New("requester, introducer and target must be distinct")
	ErrIntroducerNotEligible = errors.New("introducer is not connected with both parties")
	ErrAlreadyConnected      = errors.New("requester and target are already connected")
	ErrDuplicateRequest      = errors.New("an active introduction request already exists for this pair")
	ErrNotRespondable        = errors.New("introduction request can no longer be responded to")
	ErrNotCancellable        = errors.New("introduction request can no longer be cancelled")
	ErrNotYetIntroduced      = errors.New("introduction has not been completed")
	ErrUnavailable           = errors.New("storage temporarily unavailable")
)

// AlreadyExistsError rejects a duplicate edge-creation attempt while telling
// the caller what the surviving edge looks like from their side.
type AlreadyExistsError struct {
	Status       models.PairStatus
	ConnectionID uint
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("connection already exists (status: %s)", e.Status)
}
