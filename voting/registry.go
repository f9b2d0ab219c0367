package voting

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vocdoni/confidential-voting/acl"
	"github.com/vocdoni/confidential-voting/fhe"
	"github.com/vocdoni/confidential-voting/log"
	"github.com/vocdoni/confidential-voting/storage"
	"github.com/vocdoni/confidential-voting/types"
)

// ProposalParams are the caller supplied attributes of a new proposal.
type ProposalParams struct {
	Title       string
	Description string
	OptionCount int
	Duration    time.Duration
	Strategy    types.Strategy
	MinQuorum   uint64
}

func (v *Voting) validate(params *ProposalParams) error {
	if strings.TrimSpace(params.Title) == "" {
		return fmt.Errorf("%w: empty title", ErrInvalidParameters)
	}
	if params.OptionCount < v.limits.MinOptions || params.OptionCount > v.limits.MaxOptions {
		return fmt.Errorf("%w: option count must be between %d and %d, got %d",
			ErrInvalidParameters, v.limits.MinOptions, v.limits.MaxOptions, params.OptionCount)
	}
	if params.Duration <= 0 || params.Duration > v.limits.MaxDuration {
		return fmt.Errorf("%w: duration must be positive and at most %s, got %s",
			ErrInvalidParameters, v.limits.MaxDuration, params.Duration)
	}
	if params.MinQuorum < 1 {
		return fmt.Errorf("%w: min quorum must be at least 1", ErrInvalidParameters)
	}
	if !params.Strategy.Valid() {
		return fmt.Errorf("%w: unknown %s", ErrInvalidParameters, params.Strategy)
	}
	return nil
}

// CreateProposal stores a new proposal owned by the caller, starting now, and
// its tally of encrypted zeros. It returns the id of the proposal.
func (v *Voting) CreateProposal(st State, auth *acl.Context, now time.Time, params ProposalParams) (types.ProposalID, error) {
	if !auth.CanCreateProposal() {
		return 0, fmt.Errorf("%w: %s cannot create proposals", ErrUnauthorized, auth.Caller().Hex())
	}
	if err := v.validate(&params); err != nil {
		return 0, err
	}

	tally := &types.Tally{Options: make([]fhe.Uint, params.OptionCount)}
	for i := range tally.Options {
		zero, err := v.fhe.Constant(0)
		if err != nil {
			return 0, fmt.Errorf("encrypt option %d counter: %w", i, err)
		}
		tally.Options[i] = zero
	}
	total, err := v.fhe.Constant(0)
	if err != nil {
		return 0, fmt.Errorf("encrypt total counter: %w", err)
	}
	tally.Total = total

	id, err := st.NextProposalID()
	if err != nil {
		return 0, err
	}
	p := &types.Proposal{
		ID:          id,
		Title:       params.Title,
		Description: params.Description,
		StartTime:   now.Unix(),
		EndTime:     now.Unix() + durationSeconds(params.Duration),
		OptionCount: uint8(params.OptionCount),
		Owner:       auth.Caller(),
		Strategy:    params.Strategy,
		MinQuorum:   params.MinQuorum,
	}
	if err := st.SetProposal(p); err != nil {
		return 0, fmt.Errorf("store proposal: %w", err)
	}
	if err := st.SetTally(id, tally); err != nil {
		return 0, fmt.Errorf("store tally: %w", err)
	}
	if err := st.Emit(&types.Event{
		Kind:        types.EventProposalCreated,
		ProposalID:  id,
		Account:     p.Owner,
		Title:       p.Title,
		OptionCount: p.OptionCount,
		StartTime:   p.StartTime,
		EndTime:     p.EndTime,
	}); err != nil {
		return 0, err
	}
	log.Debugw("proposal created",
		"proposalId", id,
		"owner", p.Owner.Hex(),
		"options", p.OptionCount,
		"strategy", p.Strategy.String(),
		"endTime", p.EndTime)
	return id, nil
}

// durationSeconds rounds d up to whole seconds, the resolution of proposal
// times.
func durationSeconds(d time.Duration) int64 {
	return int64((d + time.Second - 1) / time.Second)
}

// Proposal returns the proposal with the given id, or ErrNotFound if id is
// not lower than the number of proposals created.
func (v *Voting) Proposal(st Reader, id types.ProposalID) (*types.Proposal, error) {
	count, err := st.ProposalCount()
	if err != nil {
		return nil, err
	}
	if uint64(id) >= count {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	p, err := st.Proposal(id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return p, err
}

// Status derives the lifecycle phase of p at now.
func Status(p *types.Proposal, now time.Time) types.Status {
	t := now.Unix()
	switch {
	case p.Finalized:
		return types.StatusFinalized
	case t < p.StartTime:
		return types.StatusUpcoming
	case t > p.EndTime:
		return types.StatusEnded
	}
	return types.StatusActive
}
