package api

import (
	"net/http"

	"github.com/vocdoni/confidential-voting/fhe"
)

// newVote casts the encrypted choice of the signer
// POST /proposals/{proposalId}/votes
func (a *API) newVote(w http.ResponseWriter, r *http.Request) {
	id, err := proposalIDParam(r)
	if err != nil {
		errorFrom(err).Write(w)
		return
	}
	vote := &Vote{}
	caller, once, err := a.decodeSigned(r, vote)
	if err != nil {
		errorFrom(err).Write(w)
		return
	}
	if err := a.ledger.Vote(caller, id, fhe.ExternalInput{
		Ciphertext: vote.Ciphertext,
		Proof:      vote.Proof,
	}, once); err != nil {
		errorFrom(err).Write(w)
		return
	}
	httpWriteOK(w)
}

// voter tells whether an address voted on a proposal and returns the
// participation proof of it
// GET /proposals/{proposalId}/voters/{address}
func (a *API) voter(w http.ResponseWriter, r *http.Request) {
	id, err := proposalIDParam(r)
	if err != nil {
		errorFrom(err).Write(w)
		return
	}
	addr, err := addressParam(r)
	if err != nil {
		errorFrom(err).Write(w)
		return
	}
	voted, err := a.ledger.HasVoted(id, addr)
	if err != nil {
		errorFrom(err).Write(w)
		return
	}
	proof, err := a.ledger.ParticipationProof(id, addr)
	if err != nil {
		errorFrom(err).Write(w)
		return
	}
	httpWriteJSON(w, &VoterResponse{
		ProposalID: id,
		Address:    addr,
		Voted:      voted,
		Proof:      proof,
	})
}
