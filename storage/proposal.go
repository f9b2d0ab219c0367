package storage

import (
	"fmt"

	"github.com/vocdoni/confidential-voting/types"
	"go.vocdoni.io/dvote/db/prefixeddb"
)

// ProposalCount returns the number of proposals ever created, which is also
// the id the next proposal will get.
func (r reader) ProposalCount() (uint64, error) {
	return r.counter(proposalsCountKey)
}

// Proposal retrieves a proposal from the storage.
// It returns nil and ErrNotFound if the proposal does not exist.
func (r reader) Proposal(id types.ProposalID) (*types.Proposal, error) {
	p := &types.Proposal{}
	if err := getArtifact(r.r, proposalPrefix, uint64Key(uint64(id)), p); err != nil {
		return nil, err
	}
	return p, nil
}

// Proposals returns every stored proposal in id order.
func (r reader) Proposals() ([]*types.Proposal, error) {
	var (
		res    []*types.Proposal
		decErr error
	)
	pr := prefixeddb.NewPrefixedReader(r.r, proposalPrefix)
	if err := pr.Iterate(nil, func(k, v []byte) bool {
		p := &types.Proposal{}
		if err := decodeArtifact(v, p); err != nil {
			decErr = fmt.Errorf("decode proposal %x: %w", k, err)
			return false
		}
		res = append(res, p)
		return true
	}); err != nil {
		return nil, fmt.Errorf("iterate proposals: %w", err)
	}
	return res, decErr
}

// Tally retrieves the encrypted tally handles of a proposal.
// It returns nil and ErrNotFound if there is no tally for id.
func (r reader) Tally(id types.ProposalID) (*types.Tally, error) {
	t := &types.Tally{}
	if err := getArtifact(r.r, tallyPrefix, uint64Key(uint64(id)), t); err != nil {
		return nil, err
	}
	return t, nil
}

// NextProposalID allocates the next sequential proposal id.
func (tx *Tx) NextProposalID() (types.ProposalID, error) {
	n, err := tx.nextCounter(proposalsCountKey)
	if err != nil {
		return 0, err
	}
	return types.ProposalID(n), nil
}

// SetProposal stores a proposal.
func (tx *Tx) SetProposal(p *types.Proposal) error {
	if p == nil {
		return fmt.Errorf("nil proposal")
	}
	return setArtifact(tx.wTx, proposalPrefix, uint64Key(uint64(p.ID)), p)
}

// SetTally stores the encrypted tally handles of a proposal.
func (tx *Tx) SetTally(id types.ProposalID, t *types.Tally) error {
	if t == nil {
		return fmt.Errorf("nil tally")
	}
	return setArtifact(tx.wTx, tallyPrefix, uint64Key(uint64(id)), t)
}
