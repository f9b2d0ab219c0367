package types

import (
	"github.com/ethereum/go-ethereum/common"
)

// EventKind names the kind of state change an Event records.
type EventKind string

const (
	EventProposalCreated      EventKind = "ProposalCreated"
	EventVoteCast             EventKind = "VoteCast"
	EventProposalFinalized    EventKind = "ProposalFinalized"
	EventDecryptionGranted    EventKind = "DecryptionGranted"
	EventProposerSet          EventKind = "ProposerSet"
	EventAdministratorSet     EventKind = "AdministratorSet"
	EventOwnershipTransferred EventKind = "OwnershipTransferred"
)

// Event is an observable side effect of a successful call. Vote events carry
// the voter and never the choice.
type Event struct {
	Seq         uint64         `json:"seq"                   cbor:"0,keyasint"`
	ID          string         `json:"id"                    cbor:"1,keyasint"`
	Kind        EventKind      `json:"kind"                  cbor:"2,keyasint"`
	ProposalID  ProposalID     `json:"proposalId"            cbor:"3,keyasint"`
	Account     common.Address `json:"account"               cbor:"4,keyasint"`
	Title       string         `json:"title,omitempty"       cbor:"5,keyasint,omitempty"`
	OptionCount uint8          `json:"optionCount,omitempty" cbor:"6,keyasint,omitempty"`
	StartTime   int64          `json:"startTime,omitempty"   cbor:"7,keyasint,omitempty"`
	EndTime     int64          `json:"endTime,omitempty"     cbor:"8,keyasint,omitempty"`
	Enabled     bool           `json:"enabled,omitempty"     cbor:"9,keyasint,omitempty"`
	Timestamp   int64          `json:"timestamp"             cbor:"10,keyasint"`
}
