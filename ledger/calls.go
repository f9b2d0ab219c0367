package ledger

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vocdoni/confidential-voting/fhe"
	"github.com/vocdoni/confidential-voting/log"
	"github.com/vocdoni/confidential-voting/storage"
	"github.com/vocdoni/confidential-voting/types"
	"github.com/vocdoni/confidential-voting/voting"
)

// CreateProposal runs a proposal creation call.
func (l *Ledger) CreateProposal(caller common.Address, params voting.ProposalParams, opts ...CallOption) (types.ProposalID, error) {
	var id types.ProposalID
	err := l.Execute(caller, func(c *Call) error {
		var err error
		id, err = c.CreateProposal(params)
		return err
	}, opts...)
	if err != nil {
		return 0, err
	}
	proposalsCreated.Inc()
	log.Infow("proposal created", "proposalId", id, "owner", caller.Hex(), "strategy", params.Strategy.String())
	return id, nil
}

// Vote runs a vote call.
func (l *Ledger) Vote(caller common.Address, id types.ProposalID, in fhe.ExternalInput, opts ...CallOption) error {
	if err := l.Execute(caller, func(c *Call) error {
		return c.Vote(id, in)
	}, opts...); err != nil {
		votesRejected.Inc()
		log.Debugw("vote rejected", "proposalId", id, "voter", caller.Hex(), "error", err.Error())
		return err
	}
	votesCast.Inc()
	log.Infow("vote cast", "proposalId", id, "voter", caller.Hex())
	return nil
}

// Finalize runs a finalize call.
func (l *Ledger) Finalize(caller common.Address, id types.ProposalID, opts ...CallOption) error {
	if err := l.Execute(caller, func(c *Call) error {
		return c.Finalize(id)
	}, opts...); err != nil {
		return err
	}
	proposalsFinalized.Inc()
	log.Infow("proposal finalized", "proposalId", id)
	return nil
}

// Grant runs a decryption grant call.
func (l *Ledger) Grant(caller common.Address, id types.ProposalID, account common.Address, opts ...CallOption) error {
	if err := l.Execute(caller, func(c *Call) error {
		return c.Grant(id, account)
	}, opts...); err != nil {
		return err
	}
	grantsIssued.Inc()
	log.Infow("decryption granted", "proposalId", id, "account", account.Hex())
	return nil
}

// SetProposer runs a proposer role change.
func (l *Ledger) SetProposer(caller, account common.Address, enabled bool, opts ...CallOption) error {
	return l.Execute(caller, func(c *Call) error {
		return c.SetProposer(account, enabled)
	}, opts...)
}

// SetAdministrator runs an administrator role change.
func (l *Ledger) SetAdministrator(caller, account common.Address, enabled bool, opts ...CallOption) error {
	return l.Execute(caller, func(c *Call) error {
		return c.SetAdministrator(account, enabled)
	}, opts...)
}

// TransferOwnership runs an ownership transfer.
func (l *Ledger) TransferOwnership(caller, newOwner common.Address, opts ...CallOption) error {
	return l.Execute(caller, func(c *Call) error {
		return c.TransferOwnership(newOwner)
	}, opts...)
}

// Proposal returns a proposal and its status at the current ledger time.
func (l *Ledger) Proposal(id types.ProposalID) (*types.Proposal, types.Status, error) {
	p, err := l.voting.Proposal(l.stg, id)
	if err != nil {
		return nil, 0, err
	}
	return p, voting.Status(p, l.now()), nil
}

// Tally returns the encrypted counters of a proposal.
func (l *Ledger) Tally(id types.ProposalID) (*types.Tally, error) {
	return l.voting.Tally(l.stg, id)
}

// OptionTally returns the encrypted counter of one option.
func (l *Ledger) OptionTally(id types.ProposalID, index int) (fhe.Uint, error) {
	return l.voting.OptionTally(l.stg, id, index)
}

// TotalTally returns the encrypted vote count.
func (l *Ledger) TotalTally(id types.ProposalID) (fhe.Uint, error) {
	return l.voting.TotalTally(l.stg, id)
}

// HasVoted reports whether voter voted on the proposal.
func (l *Ledger) HasVoted(id types.ProposalID, voter common.Address) (bool, error) {
	if _, err := l.voting.Proposal(l.stg, id); err != nil {
		return false, err
	}
	return l.voting.HasVoted(l.stg, id, voter)
}

// ParticipationProof returns the merkle proof of voter in the participation
// tree of the proposal.
func (l *Ledger) ParticipationProof(id types.ProposalID, voter common.Address) (*storage.ParticipationProof, error) {
	if _, err := l.voting.Proposal(l.stg, id); err != nil {
		return nil, err
	}
	return l.stg.ParticipationProof(id, voter)
}

// ParticipationRoot returns the root of the participation tree of the
// proposal.
func (l *Ledger) ParticipationRoot(id types.ProposalID) (types.HexBytes, error) {
	if _, err := l.voting.Proposal(l.stg, id); err != nil {
		return nil, err
	}
	return l.stg.ParticipationRoot(id)
}

// Roles returns the role table.
func (l *Ledger) Roles() (*types.Roles, error) {
	return l.stg.Roles()
}

// Events returns up to limit events starting at sequence number from.
func (l *Ledger) Events(from uint64, limit int) ([]*types.Event, error) {
	return l.stg.Events(from, limit)
}

// ProposalCount returns the number of proposals.
func (l *Ledger) ProposalCount() (uint64, error) {
	return l.stg.ProposalCount()
}

// EndedProposals returns the ids of the proposals that ended at now and are
// not finalized yet.
func (l *Ledger) EndedProposals(now time.Time) ([]types.ProposalID, error) {
	proposals, err := l.stg.Proposals()
	if err != nil {
		return nil, err
	}
	var ids []types.ProposalID
	for _, p := range proposals {
		if voting.Status(p, now) == types.StatusEnded {
			ids = append(ids, p.ID)
		}
	}
	return ids, nil
}
