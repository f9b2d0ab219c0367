package api

import (
	"encoding/json"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vocdoni/confidential-voting/fhe"
	"github.com/vocdoni/confidential-voting/storage"
	"github.com/vocdoni/confidential-voting/types"
)

// SignedRequest is the envelope of every state changing request. Signature
// is the personal-message signature of SignedMessage(path, Timestamp,
// Payload) and identifies the caller.
type SignedRequest struct {
	Payload   json.RawMessage `json:"payload"`
	Timestamp int64           `json:"timestamp"`
	Signature types.HexBytes  `json:"signature"`
}

// NewProposal is the payload to create a proposal.
type NewProposal struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	OptionCount int            `json:"optionCount"`
	Duration    int64          `json:"duration"` // seconds
	Strategy    types.Strategy `json:"strategy"`
	MinQuorum   uint64         `json:"minQuorum"`
}

// NewProposalResponse is the response to a proposal creation.
type NewProposalResponse struct {
	ProposalID types.ProposalID `json:"proposalId"`
}

// ProposalResponse is a proposal with its status at the node time.
type ProposalResponse struct {
	*types.Proposal
	Status            types.Status   `json:"status"`
	ParticipationRoot types.HexBytes `json:"participationRoot"`
}

// Vote is the payload of an encrypted vote. Ciphertext and Proof are the
// external input produced for the caller, see FHEInputsEndpoint.
type Vote struct {
	Ciphertext types.HexBytes `json:"ciphertext"`
	Proof      types.HexBytes `json:"proof"`
}

// TallyResponse lists the handles of the encrypted counters of a proposal.
type TallyResponse struct {
	ProposalID types.ProposalID `json:"proposalId"`
	Options    []fhe.Handle     `json:"options"`
	Total      fhe.Handle       `json:"total"`
}

// Grant is the payload to give an account access to a proposal tally.
type Grant struct {
	Account common.Address `json:"account"`
}

// RoleChange is the payload to enable or disable a proposer or an
// administrator.
type RoleChange struct {
	Account common.Address `json:"account"`
	Enabled bool           `json:"enabled"`
}

// OwnershipTransfer is the payload to hand over the owner role.
type OwnershipTransfer struct {
	NewOwner common.Address `json:"newOwner"`
}

// VoterResponse tells whether an address voted on a proposal, with the proof
// of it against the participation root.
type VoterResponse struct {
	ProposalID types.ProposalID            `json:"proposalId"`
	Address    common.Address              `json:"address"`
	Voted      bool                        `json:"voted"`
	Proof      *storage.ParticipationProof `json:"proof"`
}

// EventsResponse is a page of the event log. Next is the sequence number to
// ask for to get the following page.
type EventsResponse struct {
	Events []*types.Event `json:"events"`
	Next   uint64         `json:"next"`
}

// EncryptRequest asks the engine to encrypt Value for Owner.
type EncryptRequest struct {
	Value uint64         `json:"value"`
	Owner common.Address `json:"owner"`
}

// PublicValue is the plaintext of a publicly decryptable handle.
type PublicValue struct {
	Handle fhe.Handle `json:"handle"`
	Value  uint64     `json:"value"`
}

// DecryptResponse carries the value of a user decryption sealed to the
// requester key.
type DecryptResponse struct {
	Handle fhe.Handle     `json:"handle"`
	Sealed types.HexBytes `json:"sealed"`
}
