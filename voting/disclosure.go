package voting

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vocdoni/confidential-voting/acl"
	"github.com/vocdoni/confidential-voting/fhe"
	"github.com/vocdoni/confidential-voting/log"
	"github.com/vocdoni/confidential-voting/types"
)

// policy is the permission behaviour of a disclosure strategy at each phase.
// Grants are idempotent, so applying a policy twice is harmless. Policies run
// after every state write of the call.
type policy interface {
	onVote(engine fhe.Capability, p *types.Proposal, t *types.Tally, voter common.Address) error
	onFinalize(engine fhe.Capability, p *types.Proposal, t *types.Tally) error
}

// policies holds one entry per strategy in types.Strategies.
var policies = map[types.Strategy]policy{
	types.PublicAfterEnd: publicAfterEnd{},
	types.OwnerOnly:      ownerOnly{},
	types.QualifiedOnly:  qualifiedOnly{},
}

func policyFor(s types.Strategy) (policy, error) {
	pol, ok := policies[s]
	if !ok {
		return nil, fmt.Errorf("%w: no disclosure policy for %s", ErrInvalidParameters, s)
	}
	return pol, nil
}

// publicAfterEnd makes every counter publicly decryptable at finalization.
type publicAfterEnd struct{}

func (publicAfterEnd) onVote(fhe.Capability, *types.Proposal, *types.Tally, common.Address) error {
	return nil
}

func (publicAfterEnd) onFinalize(engine fhe.Capability, _ *types.Proposal, t *types.Tally) error {
	for _, h := range t.Handles() {
		if err := engine.MarkPubliclyDecryptable(h); err != nil {
			return err
		}
	}
	return nil
}

// ownerOnly grants the proposal owner at finalization.
type ownerOnly struct{}

func (ownerOnly) onVote(fhe.Capability, *types.Proposal, *types.Tally, common.Address) error {
	return nil
}

func (ownerOnly) onFinalize(engine fhe.Capability, p *types.Proposal, t *types.Tally) error {
	return allowAll(engine, t, p.Owner)
}

// qualifiedOnly lets each voter read the tally within its own vote call.
type qualifiedOnly struct{}

func (qualifiedOnly) onVote(engine fhe.Capability, _ *types.Proposal, t *types.Tally, voter common.Address) error {
	for _, h := range t.Handles() {
		if err := engine.AllowTransient(h, voter); err != nil {
			return err
		}
	}
	return nil
}

func (qualifiedOnly) onFinalize(fhe.Capability, *types.Proposal, *types.Tally) error {
	return nil
}

func allowAll(engine fhe.Capability, t *types.Tally, account common.Address) error {
	for _, h := range t.Handles() {
		if err := engine.Allow(h, account); err != nil {
			return err
		}
	}
	return nil
}

// GrantDecryptionPermission gives account a persistent permission on every
// counter of the proposal. The caller must be the proposal owner, the owner
// or an administrator. Counters replaced by later votes are new handles, so
// a grant covers the tally as of the call.
func (v *Voting) GrantDecryptionPermission(st State, auth *acl.Context, id types.ProposalID, account common.Address) error {
	p, err := v.Proposal(st, id)
	if err != nil {
		return err
	}
	if !auth.CanGrant(p.Owner) {
		return fmt.Errorf("%w: %s cannot grant on proposal %d", ErrUnauthorized, auth.Caller().Hex(), id)
	}
	if account == (common.Address{}) {
		return fmt.Errorf("%w: zero account", ErrInvalidParameters)
	}
	t, err := v.tally(st, p)
	if err != nil {
		return err
	}
	if err := st.Emit(&types.Event{
		Kind:       types.EventDecryptionGranted,
		ProposalID: id,
		Account:    account,
	}); err != nil {
		return err
	}
	// engine permissions are not rolled back with the call, they go last
	if err := allowAll(v.fhe, t, account); err != nil {
		return fmt.Errorf("grant decryption: %w", err)
	}
	log.Debugw("decryption granted", "proposalId", id, "account", account.Hex(), "by", auth.Caller().Hex())
	return nil
}

// FinalizeProposal closes an ended proposal and releases the permissions its
// strategy defines for the finalized phase. Anyone may finalize.
func (v *Voting) FinalizeProposal(st State, auth *acl.Context, now time.Time, id types.ProposalID) error {
	p, err := v.Proposal(st, id)
	if err != nil {
		return err
	}
	if now.Unix() <= p.EndTime {
		return fmt.Errorf("%w: proposal %d ends at %d", ErrNotEnded, id, p.EndTime)
	}
	if p.Finalized {
		return fmt.Errorf("%w: %d", ErrAlreadyFinalized, id)
	}
	pol, err := policyFor(p.Strategy)
	if err != nil {
		return err
	}
	t, err := v.tally(st, p)
	if err != nil {
		return err
	}
	p.Finalized = true
	if err := st.SetProposal(p); err != nil {
		return fmt.Errorf("store proposal: %w", err)
	}
	if err := st.Emit(&types.Event{
		Kind:       types.EventProposalFinalized,
		ProposalID: id,
		Account:    auth.Caller(),
	}); err != nil {
		return err
	}
	if err := pol.onFinalize(v.fhe, p, t); err != nil {
		return fmt.Errorf("disclosure on finalize: %w", err)
	}
	log.Debugw("proposal finalized", "proposalId", id, "strategy", p.Strategy.String())
	return nil
}
