package voting

import (
	"errors"
	"fmt"

	"github.com/vocdoni/confidential-voting/acl"
	"github.com/vocdoni/confidential-voting/fhe"
)

var (
	// ErrInvalidParameters is returned when the arguments of a call are out
	// of their allowed range.
	ErrInvalidParameters = errors.New("invalid parameters")
	// ErrUnauthorized is returned when the caller lacks the required role.
	ErrUnauthorized = acl.ErrUnauthorized
	// ErrNotFound is returned for unknown proposal ids.
	ErrNotFound = errors.New("proposal not found")
	// ErrNotStarted is returned when voting before the proposal start time.
	ErrNotStarted = errors.New("voting not started")
	// ErrEnded is returned when voting after the proposal end time.
	ErrEnded = errors.New("voting ended")
	// ErrAlreadyVoted is returned when a voter votes twice on a proposal.
	ErrAlreadyVoted = errors.New("already voted")
	// ErrProofVerificationFailed is returned when the encrypted choice does not
	// carry a valid proof.
	ErrProofVerificationFailed = fhe.ErrProofVerificationFailed
	// ErrInvalidOption is returned when a choice or option index is not a
	// valid option of the proposal.
	ErrInvalidOption = fmt.Errorf("%w: option index out of range", ErrInvalidParameters)
	// ErrNotEnded is returned when finalizing before the proposal end time.
	ErrNotEnded = errors.New("voting not ended")
	// ErrAlreadyFinalized is returned when finalizing twice.
	ErrAlreadyFinalized = errors.New("proposal already finalized")
)
