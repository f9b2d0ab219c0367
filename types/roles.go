package types

import (
	"bytes"
	"slices"

	"github.com/ethereum/go-ethereum/common"
)

// Roles is the access-control table. Administrators and Proposers are kept
// sorted so that the encoded form is deterministic.
type Roles struct {
	Owner          common.Address   `json:"owner"          cbor:"0,keyasint"`
	Administrators []common.Address `json:"administrators" cbor:"1,keyasint,omitempty"`
	Proposers      []common.Address `json:"proposers"      cbor:"2,keyasint,omitempty"`
}

// IsAdministrator reports whether addr is in the administrators set.
func (r *Roles) IsAdministrator(addr common.Address) bool {
	_, found := slices.BinarySearchFunc(r.Administrators, addr, compareAddress)
	return found
}

// IsProposer reports whether addr is in the proposers set.
func (r *Roles) IsProposer(addr common.Address) bool {
	_, found := slices.BinarySearchFunc(r.Proposers, addr, compareAddress)
	return found
}

// SetAdministrator adds or removes addr from the administrators set.
func (r *Roles) SetAdministrator(addr common.Address, enabled bool) {
	r.Administrators = setMember(r.Administrators, addr, enabled)
}

// SetProposer adds or removes addr from the proposers set.
func (r *Roles) SetProposer(addr common.Address, enabled bool) {
	r.Proposers = setMember(r.Proposers, addr, enabled)
}

// Clone returns a deep copy of r.
func (r *Roles) Clone() *Roles {
	return &Roles{
		Owner:          r.Owner,
		Administrators: slices.Clone(r.Administrators),
		Proposers:      slices.Clone(r.Proposers),
	}
}

func setMember(set []common.Address, addr common.Address, enabled bool) []common.Address {
	i, found := slices.BinarySearchFunc(set, addr, compareAddress)
	switch {
	case enabled && !found:
		return slices.Insert(set, i, addr)
	case !enabled && found:
		return slices.Delete(set, i, i+1)
	}
	return set
}

func compareAddress(a, b common.Address) int {
	return bytes.Compare(a[:], b[:])
}
