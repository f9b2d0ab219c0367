// Package voting implements the encrypted tally and disclosure state machine:
// the proposal registry, the homomorphic vote aggregation, the vote guard and
// the strategy driven release of decryption permissions.
//
// The package holds no state of its own. Every operation receives the state
// of the current call, its authorization context and the current time, and
// checks every precondition before its first write, so a failed operation
// leaves the state untouched. Atomicity of a successful call is provided by
// the caller committing or discarding the State as a whole.
package voting

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vocdoni/confidential-voting/fhe"
	"github.com/vocdoni/confidential-voting/types"
)

const (
	// MinOptions and MaxOptions bound the option count of a proposal.
	MinOptions = 2
	MaxOptions = 10
	// MaxDuration bounds the voting period of a proposal.
	MaxDuration = 365 * 24 * time.Hour
)

// Reader is the read side of the persisted state.
type Reader interface {
	ProposalCount() (uint64, error)
	Proposal(id types.ProposalID) (*types.Proposal, error)
	Tally(id types.ProposalID) (*types.Tally, error)
	HasVoted(id types.ProposalID, voter common.Address) (bool, error)
}

// State is the state of one call. Writes become visible to other calls only
// when the caller commits it.
type State interface {
	Reader
	NextProposalID() (types.ProposalID, error)
	SetProposal(p *types.Proposal) error
	SetTally(id types.ProposalID, t *types.Tally) error
	MarkVoted(id types.ProposalID, voter common.Address) error
	Emit(ev *types.Event) error
}

// Limits are the governance bounds applied when creating proposals.
type Limits struct {
	MinOptions  int           `yaml:"minOptions"`
	MaxOptions  int           `yaml:"maxOptions"`
	MaxDuration time.Duration `yaml:"maxDuration"`
}

// DefaultLimits returns the widest allowed limits.
func DefaultLimits() Limits {
	return Limits{
		MinOptions:  MinOptions,
		MaxOptions:  MaxOptions,
		MaxDuration: MaxDuration,
	}
}

// Validate checks that l is not wider than the default limits.
func (l Limits) Validate() error {
	if l.MinOptions < MinOptions || l.MaxOptions > MaxOptions || l.MinOptions > l.MaxOptions {
		return fmt.Errorf("option bounds must be within [%d, %d], got [%d, %d]",
			MinOptions, MaxOptions, l.MinOptions, l.MaxOptions)
	}
	if l.MaxDuration < time.Second || l.MaxDuration > MaxDuration {
		return fmt.Errorf("max duration must be within [1s, %s], got %s", MaxDuration, l.MaxDuration)
	}
	return nil
}

// Voting runs the voting operations against an encrypted-value engine.
type Voting struct {
	fhe    fhe.Capability
	limits Limits
}

// New returns a Voting using engine for every encrypted operation.
func New(engine fhe.Capability, limits Limits) (*Voting, error) {
	if engine == nil {
		return nil, fmt.Errorf("nil encrypted value engine")
	}
	if err := limits.Validate(); err != nil {
		return nil, fmt.Errorf("invalid limits: %w", err)
	}
	return &Voting{fhe: engine, limits: limits}, nil
}

// Limits returns the governance limits in use.
func (v *Voting) Limits() Limits {
	return v.limits
}
