package voting

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vocdoni/confidential-voting/types"
)

// HasVoted reports whether voter already voted on the proposal. The flag is
// plaintext: participation is public, the choice is not.
func (v *Voting) HasVoted(st Reader, id types.ProposalID, voter common.Address) (bool, error) {
	voted, err := st.HasVoted(id, voter)
	if err != nil {
		return false, fmt.Errorf("read vote guard: %w", err)
	}
	return voted, nil
}

// markVoted sets the guard entry of voter. It is only called once every
// precondition of the vote passed.
func (v *Voting) markVoted(st State, id types.ProposalID, voter common.Address) error {
	if err := st.MarkVoted(id, voter); err != nil {
		return fmt.Errorf("write vote guard: %w", err)
	}
	return nil
}
