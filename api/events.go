package api

import (
	"net/http"
)

const (
	// DefaultEventsLimit is the page size of the events endpoint when no
	// limit is given.
	DefaultEventsLimit = 50
	// MaxEventsLimit is the largest page size of the events endpoint.
	MaxEventsLimit = 500
)

// events returns a page of the event log
// GET /events?from=<seq>&limit=<n>
func (a *API) events(w http.ResponseWriter, r *http.Request) {
	from, err := uintQuery(r, "from", 0)
	if err != nil {
		errorFrom(err).Write(w)
		return
	}
	limit, err := uintQuery(r, "limit", DefaultEventsLimit)
	if err != nil {
		errorFrom(err).Write(w)
		return
	}
	if limit == 0 || limit > MaxEventsLimit {
		ErrMalformedParam.Withf("limit must be between 1 and %d", MaxEventsLimit).Write(w)
		return
	}
	evs, err := a.ledger.Events(from, int(limit))
	if err != nil {
		errorFrom(err).Write(w)
		return
	}
	next := from
	if len(evs) > 0 {
		next = evs[len(evs)-1].Seq + 1
	}
	httpWriteJSON(w, &EventsResponse{Events: evs, Next: next})
}
