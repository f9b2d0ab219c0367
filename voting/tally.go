package voting

import (
	"errors"
	"fmt"
	"time"

	"github.com/vocdoni/confidential-voting/acl"
	"github.com/vocdoni/confidential-voting/fhe"
	"github.com/vocdoni/confidential-voting/log"
	"github.com/vocdoni/confidential-voting/storage"
	"github.com/vocdoni/confidential-voting/types"
)

// ApplyVote adds the encrypted choice of the caller to the tally of the
// proposal. Every option counter is updated with an encrypted 0 or 1, so the
// choice is never branched on, and the total is incremented by one.
//
// The proposal must be active and the caller must not have voted on it. The
// choice is imported through the engine, whose proof also attests that it is
// a valid option index.
func (v *Voting) ApplyVote(st State, auth *acl.Context, now time.Time, id types.ProposalID, in fhe.ExternalInput) error {
	p, err := v.Proposal(st, id)
	if err != nil {
		return err
	}
	switch Status(p, now) {
	case types.StatusUpcoming:
		return fmt.Errorf("%w: proposal %d starts at %d", ErrNotStarted, id, p.StartTime)
	case types.StatusEnded, types.StatusFinalized:
		return fmt.Errorf("%w: proposal %d ended at %d", ErrEnded, id, p.EndTime)
	}
	voter := auth.Caller()
	voted, err := v.HasVoted(st, id, voter)
	if err != nil {
		return err
	}
	if voted {
		return fmt.Errorf("%w: %s on proposal %d", ErrAlreadyVoted, voter.Hex(), id)
	}
	tally, err := v.tally(st, p)
	if err != nil {
		return err
	}
	choice, err := v.fhe.ImportExternal(in, voter, uint64(p.OptionCount)-1)
	if err != nil {
		if errors.Is(err, fhe.ErrOutOfRange) {
			return fmt.Errorf("%w: %v", ErrInvalidOption, err)
		}
		return fmt.Errorf("import vote: %w", err)
	}

	if err := v.markVoted(st, id, voter); err != nil {
		return err
	}
	if err := v.accumulate(tally, choice); err != nil {
		return fmt.Errorf("accumulate vote: %w", err)
	}
	if err := st.SetTally(id, tally); err != nil {
		return fmt.Errorf("store tally: %w", err)
	}
	pol, err := policyFor(p.Strategy)
	if err != nil {
		return err
	}
	if err := st.Emit(&types.Event{
		Kind:       types.EventVoteCast,
		ProposalID: id,
		Account:    voter,
	}); err != nil {
		return err
	}
	if err := pol.onVote(v.fhe, p, tally, voter); err != nil {
		return fmt.Errorf("disclosure on vote: %w", err)
	}
	log.Debugw("vote cast", "proposalId", id, "voter", voter.Hex())
	return nil
}

// accumulate performs, for every option i, counter[i] += (choice == i ? 1 : 0)
// and adds one to the total. The handles in t are replaced by the results.
func (v *Voting) accumulate(t *types.Tally, choice fhe.Uint) error {
	one, err := v.fhe.Constant(1)
	if err != nil {
		return err
	}
	zero, err := v.fhe.Constant(0)
	if err != nil {
		return err
	}
	for i, counter := range t.Options {
		index, err := v.fhe.Constant(uint64(i))
		if err != nil {
			return err
		}
		eq, err := v.fhe.Equal(choice, index)
		if err != nil {
			return err
		}
		inc, err := v.fhe.Select(eq, one, zero)
		if err != nil {
			return err
		}
		if t.Options[i], err = v.fhe.Add(counter, inc); err != nil {
			return err
		}
	}
	t.Total, err = v.fhe.Add(t.Total, one)
	return err
}

func (v *Voting) tally(st Reader, p *types.Proposal) (*types.Tally, error) {
	t, err := st.Tally(p.ID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: tally of %d", ErrNotFound, p.ID)
		}
		return nil, err
	}
	if len(t.Options) != int(p.OptionCount) {
		return nil, fmt.Errorf("tally of proposal %d has %d counters, want %d", p.ID, len(t.Options), p.OptionCount)
	}
	return t, nil
}

// Tally returns every encrypted counter of a proposal.
func (v *Voting) Tally(st Reader, id types.ProposalID) (*types.Tally, error) {
	p, err := v.Proposal(st, id)
	if err != nil {
		return nil, err
	}
	return v.tally(st, p)
}

// OptionTally returns the encrypted counter of option index. It never
// decrypts.
func (v *Voting) OptionTally(st Reader, id types.ProposalID, index int) (fhe.Uint, error) {
	t, err := v.Tally(st, id)
	if err != nil {
		return 0, err
	}
	if index < 0 || index >= len(t.Options) {
		return 0, fmt.Errorf("%w: %d", ErrInvalidOption, index)
	}
	return t.Options[index], nil
}

// TotalTally returns the encrypted vote count of a proposal. It never
// decrypts.
func (v *Voting) TotalTally(st Reader, id types.ProposalID) (fhe.Uint, error) {
	t, err := v.Tally(st, id)
	if err != nil {
		return 0, err
	}
	return t.Total, nil
}
