package api

import (
	"net/http"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/vocdoni/confidential-voting/fhe"
	"github.com/vocdoni/confidential-voting/log"
	"github.com/vocdoni/confidential-voting/voting"
)

// newProposal creates a new proposal owned by the signer
// POST /proposals
func (a *API) newProposal(w http.ResponseWriter, r *http.Request) {
	p := &NewProposal{}
	caller, once, err := a.decodeSigned(r, p)
	if err != nil {
		errorFrom(err).Write(w)
		return
	}
	maxDuration := a.ledger.Voting().Limits().MaxDuration
	if p.Duration <= 0 || p.Duration > int64(maxDuration/time.Second) {
		ErrInvalidParameters.Withf("duration must be between 1 and %d seconds, got %d",
			int64(maxDuration/time.Second), p.Duration).Write(w)
		return
	}
	id, err := a.ledger.CreateProposal(caller, voting.ProposalParams{
		Title:       p.Title,
		Description: p.Description,
		OptionCount: p.OptionCount,
		Duration:    time.Duration(p.Duration) * time.Second,
		Strategy:    p.Strategy,
		MinQuorum:   p.MinQuorum,
	}, once)
	if err != nil {
		errorFrom(err).Write(w)
		return
	}
	httpWriteJSON(w, &NewProposalResponse{ProposalID: id})
}

// proposal returns the proposal info, its status and its participation root
// GET /proposals/{proposalId}
func (a *API) proposal(w http.ResponseWriter, r *http.Request) {
	id, err := proposalIDParam(r)
	if err != nil {
		errorFrom(err).Write(w)
		return
	}
	p, status, err := a.ledger.Proposal(id)
	if err != nil {
		errorFrom(err).Write(w)
		return
	}
	root, err := a.ledger.ParticipationRoot(id)
	if err != nil {
		errorFrom(err).Write(w)
		return
	}
	httpWriteJSON(w, &ProposalResponse{
		Proposal:          p,
		Status:            status,
		ParticipationRoot: root,
	})
}

// finalize closes an ended proposal, anyone may call it
// POST /proposals/{proposalId}/finalize
func (a *API) finalize(w http.ResponseWriter, r *http.Request) {
	id, err := proposalIDParam(r)
	if err != nil {
		errorFrom(err).Write(w)
		return
	}
	caller, once, err := a.decodeSigned(r, &struct{}{})
	if err != nil {
		errorFrom(err).Write(w)
		return
	}
	if err := a.ledger.Finalize(caller, id, once); err != nil {
		errorFrom(err).Write(w)
		return
	}
	httpWriteOK(w)
}

// tally returns the handles of the encrypted counters of a proposal
// GET /proposals/{proposalId}/tally
func (a *API) tally(w http.ResponseWriter, r *http.Request) {
	id, err := proposalIDParam(r)
	if err != nil {
		errorFrom(err).Write(w)
		return
	}
	t, err := a.ledger.Tally(id)
	if err != nil {
		errorFrom(err).Write(w)
		return
	}
	res := &TallyResponse{
		ProposalID: id,
		Options:    make([]fhe.Handle, 0, len(t.Options)),
		Total:      t.Total.Handle(),
	}
	for _, o := range t.Options {
		res.Options = append(res.Options, o.Handle())
	}
	httpWriteJSON(w, res)
}

// grant gives an account persistent access to the current tally handles
// POST /proposals/{proposalId}/grants
func (a *API) grant(w http.ResponseWriter, r *http.Request) {
	id, err := proposalIDParam(r)
	if err != nil {
		errorFrom(err).Write(w)
		return
	}
	g := &Grant{}
	caller, once, err := a.decodeSigned(r, g)
	if err != nil {
		errorFrom(err).Write(w)
		return
	}
	if err := a.ledger.Grant(caller, id, g.Account, once); err != nil {
		errorFrom(err).Write(w)
		return
	}
	httpWriteOK(w)
}

// writeMetrics writes the node counters in the Prometheus text format
// GET /metrics
func (a *API) writeMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	metrics.WritePrometheus(w, false)
	log.Debugw("metrics served", "remote", r.RemoteAddr)
}
