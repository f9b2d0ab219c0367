package storage

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vocdoni/arbo"
	"github.com/vocdoni/confidential-voting/types"
	"go.vocdoni.io/dvote/db"
	"go.vocdoni.io/dvote/db/prefixeddb"
)

const participationTreeLevels = common.AddressLength * 8

var (
	participationHashFunction = arbo.HashFunctionSha256
	participationLeafValue    = []byte{1}
)

// ParticipationProof is an inclusion (or exclusion) proof of a voter in the
// participation tree of a proposal.
type ParticipationProof struct {
	Root     types.HexBytes `json:"root"`
	Key      types.HexBytes `json:"key"`
	Value    types.HexBytes `json:"value"`
	Siblings types.HexBytes `json:"siblings"`
	Voted    bool           `json:"voted"`
}

func guardKey(id types.ProposalID, voter common.Address) []byte {
	return append(uint64Key(uint64(id)), voter.Bytes()...)
}

func participationTreePrefix(id types.ProposalID) []byte {
	return append(append(bytes.Clone(participationPrefix), uint64Key(uint64(id))...), '/')
}

func participationConfig(database db.Database) arbo.Config {
	return arbo.Config{
		Database:     database,
		MaxLevels:    participationTreeLevels,
		HashFunction: participationHashFunction,
	}
}

// HasVoted reports whether voter has a vote guard entry for the proposal.
func (r reader) HasVoted(id types.ProposalID, voter common.Address) (bool, error) {
	return hasKey(r.r, guardPrefix, guardKey(id, voter))
}

// MarkVoted records the vote guard entry of voter and adds the voter to the
// participation tree of the proposal. Entries are never removed.
func (tx *Tx) MarkVoted(id types.ProposalID, voter common.Address) error {
	voted, err := tx.HasVoted(id, voter)
	if err != nil {
		return err
	}
	if voted {
		return fmt.Errorf("voter %s already marked for proposal %d", voter.Hex(), id)
	}
	if err := prefixeddb.NewPrefixedWriteTx(tx.wTx, guardPrefix).Set(guardKey(id, voter), participationLeafValue); err != nil {
		return fmt.Errorf("set vote guard: %w", err)
	}
	prefix := participationTreePrefix(id)
	treeTx := prefixeddb.NewPrefixedWriteTx(tx.wTx, prefix)
	tree, err := arbo.NewTreeWithTx(treeTx, participationConfig(prefixeddb.NewPrefixedDatabase(tx.db, prefix)))
	if err != nil {
		return fmt.Errorf("open participation tree: %w", err)
	}
	if err := tree.AddWithTx(treeTx, voter.Bytes(), participationLeafValue); err != nil {
		return fmt.Errorf("add participant: %w", err)
	}
	return nil
}

// participationTree opens the committed participation tree of a proposal.
func (s *Storage) participationTree(id types.ProposalID) (*arbo.Tree, error) {
	pdb := prefixeddb.NewPrefixedDatabase(s.db, participationTreePrefix(id))
	return arbo.NewTree(participationConfig(pdb))
}

// ParticipationRoot returns the root of the participation tree of a
// proposal. A proposal without votes has the empty root.
func (s *Storage) ParticipationRoot(id types.ProposalID) (types.HexBytes, error) {
	tree, err := s.participationTree(id)
	if err != nil {
		return nil, err
	}
	return tree.Root()
}

// ParticipationProof generates a merkle proof of voter in the participation
// tree of a proposal. Voted is false for an exclusion proof.
func (s *Storage) ParticipationProof(id types.ProposalID, voter common.Address) (*ParticipationProof, error) {
	tree, err := s.participationTree(id)
	if err != nil {
		return nil, err
	}
	root, err := tree.Root()
	if err != nil {
		return nil, err
	}
	key, value, siblings, exists, err := tree.GenProof(voter.Bytes())
	if err != nil {
		return nil, fmt.Errorf("generate participation proof: %w", err)
	}
	return &ParticipationProof{
		Root:     root,
		Key:      key,
		Value:    value,
		Siblings: siblings,
		Voted:    exists,
	}, nil
}

// VerifyParticipationProof checks an inclusion proof against its root.
func VerifyParticipationProof(p *ParticipationProof) bool {
	if p == nil || !p.Voted {
		return false
	}
	valid, err := arbo.CheckProof(participationHashFunction, p.Key, p.Value, p.Root, p.Siblings)
	if err != nil {
		return false
	}
	return valid
}
