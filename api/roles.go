package api

import (
	"net/http"
)

// roles returns the role table
// GET /roles
func (a *API) roles(w http.ResponseWriter, r *http.Request) {
	roles, err := a.ledger.Roles()
	if err != nil {
		errorFrom(err).Write(w)
		return
	}
	httpWriteJSON(w, roles)
}

// setProposer enables or disables a proposer, the signer must be the owner
// or an administrator
// POST /roles/proposers
func (a *API) setProposer(w http.ResponseWriter, r *http.Request) {
	rc := &RoleChange{}
	caller, once, err := a.decodeSigned(r, rc)
	if err != nil {
		errorFrom(err).Write(w)
		return
	}
	if err := a.ledger.SetProposer(caller, rc.Account, rc.Enabled, once); err != nil {
		errorFrom(err).Write(w)
		return
	}
	httpWriteOK(w)
}

// setAdministrator enables or disables an administrator, the signer must be
// the owner
// POST /roles/administrators
func (a *API) setAdministrator(w http.ResponseWriter, r *http.Request) {
	rc := &RoleChange{}
	caller, once, err := a.decodeSigned(r, rc)
	if err != nil {
		errorFrom(err).Write(w)
		return
	}
	if err := a.ledger.SetAdministrator(caller, rc.Account, rc.Enabled, once); err != nil {
		errorFrom(err).Write(w)
		return
	}
	httpWriteOK(w)
}

// transferOwnership hands the owner role over, the signer must be the owner
// POST /roles/owner
func (a *API) transferOwnership(w http.ResponseWriter, r *http.Request) {
	t := &OwnershipTransfer{}
	caller, once, err := a.decodeSigned(r, t)
	if err != nil {
		errorFrom(err).Write(w)
		return
	}
	if err := a.ledger.TransferOwnership(caller, t.NewOwner, once); err != nil {
		errorFrom(err).Write(w)
		return
	}
	httpWriteOK(w)
}
