package types

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vocdoni/confidential-voting/fhe"
)

// ProposalID identifies a proposal. Ids are assigned sequentially from zero
// and never reused.
type ProposalID uint64

func (id ProposalID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// ParseProposalID parses the decimal representation of a proposal id.
func ParseProposalID(s string) (ProposalID, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid proposal id %q: %w", s, err)
	}
	return ProposalID(n), nil
}

// Strategy selects who may decrypt a proposal tally and when.
type Strategy uint8

const (
	// PublicAfterEnd makes the tally publicly decryptable at finalization.
	PublicAfterEnd Strategy = iota
	// OwnerOnly grants the proposal owner a persistent permission at
	// finalization.
	OwnerOnly
	// QualifiedOnly grants each voter a transient permission inside their own
	// vote call. Standing access requires an explicit grant.
	QualifiedOnly
)

var strategyNames = map[Strategy]string{
	PublicAfterEnd: "publicAfterEnd",
	OwnerOnly:      "ownerOnly",
	QualifiedOnly:  "qualifiedOnly",
}

// Strategies returns every defined strategy.
func Strategies() []Strategy {
	return []Strategy{PublicAfterEnd, OwnerOnly, QualifiedOnly}
}

// Valid reports whether s is one of the defined strategies.
func (s Strategy) Valid() bool {
	_, ok := strategyNames[s]
	return ok
}

func (s Strategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return fmt.Sprintf("strategy(%d)", uint8(s))
}

// ParseStrategy returns the strategy named s.
func ParseStrategy(s string) (Strategy, error) {
	for st, name := range strategyNames {
		if name == s {
			return st, nil
		}
	}
	return 0, fmt.Errorf("unknown strategy %q", s)
}

func (s Strategy) MarshalJSON() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("cannot marshal %s", s)
	}
	return json.Marshal(s.String())
}

func (s *Strategy) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	st, err := ParseStrategy(name)
	if err != nil {
		return err
	}
	*s = st
	return nil
}

// Status is the lifecycle phase of a proposal. It is derived on demand from
// the proposal and the current time and is never stored.
type Status uint8

const (
	StatusUpcoming Status = iota
	StatusActive
	StatusEnded
	StatusFinalized
)

func (s Status) String() string {
	switch s {
	case StatusUpcoming:
		return "upcoming"
	case StatusActive:
		return "active"
	case StatusEnded:
		return "ended"
	case StatusFinalized:
		return "finalized"
	}
	return fmt.Sprintf("status(%d)", uint8(s))
}

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a status name.
func (s *Status) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for st := StatusUpcoming; st <= StatusFinalized; st++ {
		if st.String() == name {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", name)
}

// Proposal holds the plaintext metadata of a vote. Only Finalized changes
// after creation. Times are unix seconds.
type Proposal struct {
	ID          ProposalID     `json:"id"          cbor:"0,keyasint"`
	Title       string         `json:"title"       cbor:"1,keyasint,omitempty"`
	Description string         `json:"description" cbor:"2,keyasint,omitempty"`
	StartTime   int64          `json:"startTime"   cbor:"3,keyasint"`
	EndTime     int64          `json:"endTime"     cbor:"4,keyasint"`
	OptionCount uint8          `json:"optionCount" cbor:"5,keyasint"`
	Owner       common.Address `json:"owner"       cbor:"6,keyasint"`
	Strategy    Strategy       `json:"strategy"    cbor:"7,keyasint"`
	MinQuorum   uint64         `json:"minQuorum"   cbor:"8,keyasint"`
	Finalized   bool           `json:"finalized"   cbor:"9,keyasint"`
}

func (p *Proposal) String() string {
	data, err := json.Marshal(p)
	if err != nil {
		return ""
	}
	return string(data)
}

// Tally is the encrypted state of a proposal: one counter per option, index
// aligned with the options, plus the total. Only engine handles are kept.
type Tally struct {
	Options []fhe.Uint `json:"options" cbor:"0,keyasint"`
	Total   fhe.Uint   `json:"total"   cbor:"1,keyasint"`
}

// Handles returns every counter handle, options first and the total last.
func (t *Tally) Handles() []fhe.Handle {
	hs := make([]fhe.Handle, 0, len(t.Options)+1)
	for _, o := range t.Options {
		hs = append(hs, o.Handle())
	}
	return append(hs, t.Total.Handle())
}
