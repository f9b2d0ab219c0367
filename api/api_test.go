package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/confidential-voting/crypto/ethereum"
	"github.com/vocdoni/confidential-voting/fhe"
	"github.com/vocdoni/confidential-voting/fhe/mockfhe"
	"github.com/vocdoni/confidential-voting/ledger"
	"github.com/vocdoni/confidential-voting/storage"
	"github.com/vocdoni/confidential-voting/types"
	"github.com/vocdoni/confidential-voting/voting"
	"go.vocdoni.io/dvote/db/metadb"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testAPI struct {
	c      *qt.C
	api    *API
	engine *mockfhe.Engine
	clock  *clock
	owner  *ethereum.SignKeys
}

func newTestAPI(c *qt.C) *testAPI {
	clk := &clock{now: time.Unix(1_700_000_000, 0)}
	engine, err := mockfhe.New(mockfhe.Options{
		ChainID:           1337,
		VerifyingContract: common.HexToAddress("0x00000000000000000000000000000000000c0de5"),
		Now:               clk.Now,
	})
	c.Assert(err, qt.IsNil)
	owner := newSigner(c)
	l, err := ledger.New(storage.New(metadb.NewTest(c.TB)), engine, ledger.Options{
		Owner:  owner.Address(),
		Limits: voting.DefaultLimits(),
		Now:    clk.Now,
	})
	c.Assert(err, qt.IsNil)
	return &testAPI{
		c:      c,
		api:    NewRouter(l, engine),
		engine: engine,
		clock:  clk,
		owner:  owner,
	}
}

func newSigner(c *qt.C) *ethereum.SignKeys {
	keys := ethereum.NewSignKeys()
	c.Assert(keys.Generate(), qt.IsNil)
	return keys
}

func (ta *testAPI) do(method, path string, body any) *httptest.ResponseRecorder {
	var data []byte
	if body != nil {
		var err error
		data, err = json.Marshal(body)
		ta.c.Assert(err, qt.IsNil)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ta.api.Router().ServeHTTP(rec, req)
	return rec
}

func (ta *testAPI) signed(keys *ethereum.SignKeys, path string, payload any) *httptest.ResponseRecorder {
	req, err := SignRequest(keys, path, ta.clock.Now().Unix(), payload)
	ta.c.Assert(err, qt.IsNil)
	return ta.do(http.MethodPost, path, req)
}

func (ta *testAPI) createProposal(strategy types.Strategy) types.ProposalID {
	rec := ta.signed(ta.owner, ProposalsEndpoint, &NewProposal{
		Title:       "Treasury allocation",
		OptionCount: 3,
		Duration:    100,
		Strategy:    strategy,
		MinQuorum:   1,
	})
	ta.c.Assert(rec.Code, qt.Equals, http.StatusOK, qt.Commentf("%s", rec.Body))
	res := &NewProposalResponse{}
	decode(ta.c, rec, res)
	return res.ProposalID
}

func (ta *testAPI) vote(voter *ethereum.SignKeys, id types.ProposalID, choice uint64) *httptest.ResponseRecorder {
	rec := ta.do(http.MethodPost, FHEInputsEndpoint, &EncryptRequest{Value: choice, Owner: voter.Address()})
	ta.c.Assert(rec.Code, qt.Equals, http.StatusOK, qt.Commentf("%s", rec.Body))
	v := &Vote{}
	decode(ta.c, rec, v)
	return ta.signed(voter, proposalPath(VotesEndpoint, id), v)
}

func proposalPath(endpoint string, id types.ProposalID) string {
	return EndpointWithParam(endpoint, ProposalURLParam, id.String())
}

func decode(c *qt.C, rec *httptest.ResponseRecorder, out any) {
	c.Assert(json.Unmarshal(rec.Body.Bytes(), out), qt.IsNil, qt.Commentf("%s", rec.Body))
}

func errorCode(c *qt.C, rec *httptest.ResponseRecorder) int {
	apiErr := Error{}
	decode(c, rec, &apiErr)
	return apiErr.Code
}

func TestPing(t *testing.T) {
	c := qt.New(t)
	ta := newTestAPI(c)
	rec := ta.do(http.MethodGet, PingEndpoint, nil)
	c.Assert(rec.Code, qt.Equals, http.StatusOK)

	rec = ta.do(http.MethodGet, "/nothing", nil)
	c.Assert(rec.Code, qt.Equals, http.StatusNotFound)
	c.Assert(errorCode(c, rec), qt.Equals, ErrResourceNotFound.Code)
}

func TestProposalLifecycle(t *testing.T) {
	c := qt.New(t)
	ta := newTestAPI(c)
	id := ta.createProposal(types.PublicAfterEnd)
	c.Assert(id, qt.Equals, types.ProposalID(0))

	rec := ta.do(http.MethodGet, proposalPath(ProposalEndpoint, id), nil)
	c.Assert(rec.Code, qt.Equals, http.StatusOK)
	p := &ProposalResponse{}
	decode(c, rec, p)
	c.Assert(p.Title, qt.Equals, "Treasury allocation")
	c.Assert(p.Owner, qt.Equals, ta.owner.Address())
	c.Assert(p.Status, qt.Equals, types.StatusActive)
	c.Assert(p.Strategy, qt.Equals, types.PublicAfterEnd)
	emptyRoot := p.ParticipationRoot

	x, y := newSigner(c), newSigner(c)
	rec = ta.vote(x, id, 1)
	c.Assert(rec.Code, qt.Equals, http.StatusOK, qt.Commentf("%s", rec.Body))
	rec = ta.vote(y, id, 2)
	c.Assert(rec.Code, qt.Equals, http.StatusOK, qt.Commentf("%s", rec.Body))

	rec = ta.vote(x, id, 0)
	c.Assert(rec.Code, qt.Equals, http.StatusConflict)
	c.Assert(errorCode(c, rec), qt.Equals, ErrAlreadyVoted.Code)

	rec = ta.vote(newSigner(c), id, 3)
	c.Assert(rec.Code, qt.Equals, http.StatusBadRequest)
	c.Assert(errorCode(c, rec), qt.Equals, ErrInvalidOption.Code)

	rec = ta.do(http.MethodGet, proposalPath(ProposalEndpoint, id), nil)
	decode(c, rec, p)
	c.Assert(p.ParticipationRoot, qt.Not(qt.DeepEquals), emptyRoot)

	rec = ta.signed(x, proposalPath(FinalizeEndpoint, id), struct{}{})
	c.Assert(rec.Code, qt.Equals, http.StatusConflict)
	c.Assert(errorCode(c, rec), qt.Equals, ErrVotingNotEnded.Code)

	ta.clock.Advance(101 * time.Second)
	rec = ta.vote(newSigner(c), id, 0)
	c.Assert(errorCode(c, rec), qt.Equals, ErrVotingEnded.Code)

	rec = ta.do(http.MethodGet, proposalPath(TallyEndpoint, id), nil)
	c.Assert(rec.Code, qt.Equals, http.StatusOK)
	tally := &TallyResponse{}
	decode(c, rec, tally)
	c.Assert(tally.Options, qt.HasLen, 3)

	// nothing is public before finalization
	rec = ta.do(http.MethodGet, publicPath(tally.Total), nil)
	c.Assert(rec.Code, qt.Equals, http.StatusForbidden)
	c.Assert(errorCode(c, rec), qt.Equals, ErrDecryptionNotAllowed.Code)

	rec = ta.signed(x, proposalPath(FinalizeEndpoint, id), struct{}{})
	c.Assert(rec.Code, qt.Equals, http.StatusOK, qt.Commentf("%s", rec.Body))
	rec = ta.signed(y, proposalPath(FinalizeEndpoint, id), struct{}{})
	c.Assert(errorCode(c, rec), qt.Equals, ErrAlreadyFinalized.Code)

	rec = ta.do(http.MethodGet, proposalPath(ProposalEndpoint, id), nil)
	decode(c, rec, p)
	c.Assert(p.Status, qt.Equals, types.StatusFinalized)

	for i, want := range []uint64{0, 1, 1} {
		rec = ta.do(http.MethodGet, publicPath(tally.Options[i]), nil)
		c.Assert(rec.Code, qt.Equals, http.StatusOK)
		v := &PublicValue{}
		decode(c, rec, v)
		c.Assert(v.Value, qt.Equals, want, qt.Commentf("option %d", i))
	}
	rec = ta.do(http.MethodGet, publicPath(tally.Total), nil)
	v := &PublicValue{}
	decode(c, rec, v)
	c.Assert(v.Value, qt.Equals, uint64(2))
}

func publicPath(h fhe.Handle) string {
	return EndpointWithParam(FHEPublicEndpoint, HandleURLParam, fmt.Sprint(uint64(h)))
}

func TestProposalErrors(t *testing.T) {
	c := qt.New(t)
	ta := newTestAPI(c)

	rec := ta.do(http.MethodGet, proposalPath(ProposalEndpoint, 7), nil)
	c.Assert(rec.Code, qt.Equals, http.StatusNotFound)
	c.Assert(errorCode(c, rec), qt.Equals, ErrProposalNotFound.Code)

	rec = ta.do(http.MethodGet, "/proposals/abc", nil)
	c.Assert(rec.Code, qt.Equals, http.StatusBadRequest)
	c.Assert(errorCode(c, rec), qt.Equals, ErrMalformedProposalID.Code)

	rec = ta.signed(ta.owner, ProposalsEndpoint, &NewProposal{
		Title:       "Too few options",
		OptionCount: 1,
		Duration:    100,
		MinQuorum:   1,
	})
	c.Assert(rec.Code, qt.Equals, http.StatusBadRequest)
	c.Assert(errorCode(c, rec), qt.Equals, ErrInvalidParameters.Code)

	rec = ta.signed(newSigner(c), ProposalsEndpoint, &NewProposal{
		Title:       "Not a proposer",
		OptionCount: 2,
		Duration:    100,
		MinQuorum:   1,
	})
	c.Assert(rec.Code, qt.Equals, http.StatusForbidden)
	c.Assert(errorCode(c, rec), qt.Equals, ErrUnauthorized.Code)

	for _, duration := range []int64{0, -1, 365*24*3600 + 1, 100 + 1<<55} {
		rec = ta.signed(ta.owner, ProposalsEndpoint, &NewProposal{
			Title:       "Bad duration",
			OptionCount: 2,
			Duration:    duration,
			MinQuorum:   1,
		})
		c.Assert(rec.Code, qt.Equals, http.StatusBadRequest, qt.Commentf("duration %d", duration))
		c.Assert(errorCode(c, rec), qt.Equals, ErrInvalidParameters.Code)
	}
	rec = ta.do(http.MethodGet, EventsEndpoint, nil)
	page := &EventsResponse{}
	decode(c, rec, page)
	c.Assert(page.Events, qt.HasLen, 0)

	rec = ta.do(http.MethodGet, EndpointWithParam(proposalPath(VoterEndpoint, 0), AddressURLParam, "0x1234"), nil)
	c.Assert(rec.Code, qt.Equals, http.StatusBadRequest)
}

func TestSignedRequests(t *testing.T) {
	c := qt.New(t)
	ta := newTestAPI(c)
	account := common.HexToAddress("0x00000000000000000000000000000000000000aa")

	rec := ta.do(http.MethodPost, ProposersEndpoint, "not an envelope")
	c.Assert(errorCode(c, rec), qt.Equals, ErrMalformedBody.Code)

	req, err := SignRequest(ta.owner, ProposersEndpoint, ta.clock.Now().Unix(), &RoleChange{Account: account, Enabled: true})
	c.Assert(err, qt.IsNil)
	req.Signature = req.Signature[:10]
	rec = ta.do(http.MethodPost, ProposersEndpoint, req)
	c.Assert(errorCode(c, rec), qt.Equals, ErrInvalidSignature.Code)

	req, err = SignRequest(ta.owner, ProposersEndpoint, ta.clock.Now().Add(-time.Hour).Unix(), &RoleChange{Account: account, Enabled: true})
	c.Assert(err, qt.IsNil)
	rec = ta.do(http.MethodPost, ProposersEndpoint, req)
	c.Assert(errorCode(c, rec), qt.Equals, ErrExpiredRequest.Code)

	// a request signed for one endpoint does not authenticate the signer on
	// another one
	req, err = SignRequest(ta.owner, ProposersEndpoint, ta.clock.Now().Unix(), &RoleChange{Account: account, Enabled: true})
	c.Assert(err, qt.IsNil)
	rec = ta.do(http.MethodPost, AdministratorsEndpoint, req)
	c.Assert(rec.Code, qt.Equals, http.StatusForbidden)

	rec = ta.do(http.MethodPost, ProposersEndpoint, req)
	c.Assert(rec.Code, qt.Equals, http.StatusOK, qt.Commentf("%s", rec.Body))

	rec = ta.do(http.MethodGet, RolesEndpoint, nil)
	c.Assert(rec.Code, qt.Equals, http.StatusOK)
	roles := &types.Roles{}
	decode(c, rec, roles)
	c.Assert(roles.Owner, qt.Equals, ta.owner.Address())
	c.Assert(roles.IsProposer(account), qt.IsTrue)
	c.Assert(roles.IsAdministrator(account), qt.IsFalse)
}

func TestReplayedRequests(t *testing.T) {
	c := qt.New(t)
	ta := newTestAPI(c)
	x := newSigner(c)

	grant, err := SignRequest(ta.owner, AdministratorsEndpoint, ta.clock.Now().Unix(), &RoleChange{Account: x.Address(), Enabled: true})
	c.Assert(err, qt.IsNil)
	rec := ta.do(http.MethodPost, AdministratorsEndpoint, grant)
	c.Assert(rec.Code, qt.Equals, http.StatusOK, qt.Commentf("%s", rec.Body))
	ta.clock.Advance(time.Second)
	rec = ta.signed(ta.owner, AdministratorsEndpoint, &RoleChange{Account: x.Address(), Enabled: false})
	c.Assert(rec.Code, qt.Equals, http.StatusOK, qt.Commentf("%s", rec.Body))

	// resending the grant does not undo the revocation
	rec = ta.do(http.MethodPost, AdministratorsEndpoint, grant)
	c.Assert(rec.Code, qt.Equals, http.StatusConflict)
	c.Assert(errorCode(c, rec), qt.Equals, ErrReplayedRequest.Code)
	rec = ta.do(http.MethodGet, RolesEndpoint, nil)
	roles := &types.Roles{}
	decode(c, rec, roles)
	c.Assert(roles.IsAdministrator(x.Address()), qt.IsFalse)

	create, err := SignRequest(ta.owner, ProposalsEndpoint, ta.clock.Now().Unix(), &NewProposal{
		Title:       "Once",
		OptionCount: 2,
		Duration:    100,
		MinQuorum:   1,
	})
	c.Assert(err, qt.IsNil)
	for i := range 3 {
		rec = ta.do(http.MethodPost, ProposalsEndpoint, create)
		if i == 0 {
			c.Assert(rec.Code, qt.Equals, http.StatusOK, qt.Commentf("%s", rec.Body))
			continue
		}
		c.Assert(errorCode(c, rec), qt.Equals, ErrReplayedRequest.Code)
	}
	rec = ta.do(http.MethodGet, proposalPath(ProposalEndpoint, 1), nil)
	c.Assert(rec.Code, qt.Equals, http.StatusNotFound)

	// past its window the envelope is refused by its timestamp
	ta.clock.Advance((SignedRequestMaxAge + 1) * time.Second)
	rec = ta.do(http.MethodPost, AdministratorsEndpoint, grant)
	c.Assert(errorCode(c, rec), qt.Equals, ErrExpiredRequest.Code)
}

func TestRoles(t *testing.T) {
	c := qt.New(t)
	ta := newTestAPI(c)
	admin, proposer := newSigner(c), newSigner(c)

	rec := ta.signed(admin, ProposersEndpoint, &RoleChange{Account: proposer.Address(), Enabled: true})
	c.Assert(errorCode(c, rec), qt.Equals, ErrUnauthorized.Code)

	rec = ta.signed(ta.owner, AdministratorsEndpoint, &RoleChange{Account: admin.Address(), Enabled: true})
	c.Assert(rec.Code, qt.Equals, http.StatusOK, qt.Commentf("%s", rec.Body))
	rec = ta.signed(admin, ProposersEndpoint, &RoleChange{Account: proposer.Address(), Enabled: true})
	c.Assert(rec.Code, qt.Equals, http.StatusOK, qt.Commentf("%s", rec.Body))

	rec = ta.signed(proposer, ProposalsEndpoint, &NewProposal{
		Title:       "Proposer proposal",
		OptionCount: 2,
		Duration:    60,
		Strategy:    types.OwnerOnly,
		MinQuorum:   1,
	})
	c.Assert(rec.Code, qt.Equals, http.StatusOK, qt.Commentf("%s", rec.Body))

	rec = ta.signed(ta.owner, OwnerEndpoint, &OwnershipTransfer{})
	c.Assert(errorCode(c, rec), qt.Equals, ErrInvalidParameters.Code)

	rec = ta.signed(admin, OwnerEndpoint, &OwnershipTransfer{NewOwner: admin.Address()})
	c.Assert(errorCode(c, rec), qt.Equals, ErrUnauthorized.Code)

	rec = ta.signed(ta.owner, OwnerEndpoint, &OwnershipTransfer{NewOwner: admin.Address()})
	c.Assert(rec.Code, qt.Equals, http.StatusOK, qt.Commentf("%s", rec.Body))

	rec = ta.do(http.MethodGet, RolesEndpoint, nil)
	roles := &types.Roles{}
	decode(c, rec, roles)
	c.Assert(roles.Owner, qt.Equals, admin.Address())
}

func TestGrantAndUserDecrypt(t *testing.T) {
	c := qt.New(t)
	ta := newTestAPI(c)
	id := ta.createProposal(types.OwnerOnly)
	auditor := newSigner(c)

	for i, choice := range []uint64{2, 2, 0} {
		rec := ta.vote(newSigner(c), id, choice)
		c.Assert(rec.Code, qt.Equals, http.StatusOK, qt.Commentf("vote %d: %s", i, rec.Body))
	}

	rec := ta.signed(auditor, proposalPath(GrantsEndpoint, id), &Grant{Account: auditor.Address()})
	c.Assert(errorCode(c, rec), qt.Equals, ErrUnauthorized.Code)

	ta.clock.Advance(101 * time.Second)
	rec = ta.signed(auditor, proposalPath(FinalizeEndpoint, id), struct{}{})
	c.Assert(rec.Code, qt.Equals, http.StatusOK, qt.Commentf("%s", rec.Body))
	rec = ta.signed(ta.owner, proposalPath(GrantsEndpoint, id), &Grant{Account: auditor.Address()})
	c.Assert(rec.Code, qt.Equals, http.StatusOK, qt.Commentf("%s", rec.Body))

	rec = ta.do(http.MethodGet, proposalPath(TallyEndpoint, id), nil)
	tally := &TallyResponse{}
	decode(c, rec, tally)

	// ownerOnly never makes the tally public
	rec = ta.do(http.MethodGet, publicPath(tally.Options[2]), nil)
	c.Assert(rec.Code, qt.Equals, http.StatusForbidden)

	userDecrypt := func(keys *ethereum.SignKeys, h fhe.Handle) (uint64, *httptest.ResponseRecorder) {
		pub, priv, err := mockfhe.GenerateReencryptionKey()
		c.Assert(err, qt.IsNil)
		req := &mockfhe.UserDecryptRequest{
			Handle:            h,
			PublicKey:         pub[:],
			ContractAddresses: []common.Address{ta.engine.Domain().VerifyingContract},
			StartTimestamp:    ta.clock.Now().Unix(),
			DurationDays:      1,
		}
		c.Assert(req.Sign(keys, ta.engine.Domain()), qt.IsNil)
		rec := ta.do(http.MethodPost, FHEDecryptEndpoint, req)
		if rec.Code != http.StatusOK {
			return 0, rec
		}
		res := &DecryptResponse{}
		decode(c, rec, res)
		value, err := mockfhe.OpenReencrypted(res.Sealed, pub, priv)
		c.Assert(err, qt.IsNil)
		return value, rec
	}

	value, rec := userDecrypt(ta.owner, tally.Options[2])
	c.Assert(rec.Code, qt.Equals, http.StatusOK, qt.Commentf("%s", rec.Body))
	c.Assert(value, qt.Equals, uint64(2))
	value, rec = userDecrypt(auditor, tally.Total)
	c.Assert(rec.Code, qt.Equals, http.StatusOK, qt.Commentf("%s", rec.Body))
	c.Assert(value, qt.Equals, uint64(3))

	_, rec = userDecrypt(newSigner(c), tally.Total)
	c.Assert(rec.Code, qt.Equals, http.StatusForbidden)
	c.Assert(errorCode(c, rec), qt.Equals, ErrDecryptionNotAllowed.Code)
}

func TestVoter(t *testing.T) {
	c := qt.New(t)
	ta := newTestAPI(c)
	id := ta.createProposal(types.QualifiedOnly)
	x, y := newSigner(c), newSigner(c)
	rec := ta.vote(x, id, 0)
	c.Assert(rec.Code, qt.Equals, http.StatusOK, qt.Commentf("%s", rec.Body))

	voterPath := func(addr common.Address) string {
		return EndpointWithParam(proposalPath(VoterEndpoint, id), AddressURLParam, addr.Hex())
	}
	rec = ta.do(http.MethodGet, voterPath(x.Address()), nil)
	c.Assert(rec.Code, qt.Equals, http.StatusOK)
	res := &VoterResponse{}
	decode(c, rec, res)
	c.Assert(res.Voted, qt.IsTrue)
	c.Assert(storage.VerifyParticipationProof(res.Proof), qt.IsTrue)

	rec = ta.do(http.MethodGet, voterPath(y.Address()), nil)
	res = &VoterResponse{}
	decode(c, rec, res)
	c.Assert(res.Voted, qt.IsFalse)
	c.Assert(storage.VerifyParticipationProof(res.Proof), qt.IsFalse)
}

func TestEvents(t *testing.T) {
	c := qt.New(t)
	ta := newTestAPI(c)
	id := ta.createProposal(types.PublicAfterEnd)
	rec := ta.vote(newSigner(c), id, 1)
	c.Assert(rec.Code, qt.Equals, http.StatusOK, qt.Commentf("%s", rec.Body))
	rec = ta.vote(newSigner(c), id, 0)
	c.Assert(rec.Code, qt.Equals, http.StatusOK, qt.Commentf("%s", rec.Body))

	rec = ta.do(http.MethodGet, EventsEndpoint+"?limit=2", nil)
	c.Assert(rec.Code, qt.Equals, http.StatusOK)
	page := &EventsResponse{}
	decode(c, rec, page)
	c.Assert(page.Events, qt.HasLen, 2)
	c.Assert(page.Events[0].Kind, qt.Equals, types.EventProposalCreated)
	c.Assert(page.Events[1].Kind, qt.Equals, types.EventVoteCast)
	c.Assert(page.Next, qt.Equals, uint64(2))

	rec = ta.do(http.MethodGet, fmt.Sprintf("%s?from=%d", EventsEndpoint, page.Next), nil)
	page = &EventsResponse{}
	decode(c, rec, page)
	c.Assert(page.Events, qt.HasLen, 1)
	c.Assert(page.Events[0].Seq, qt.Equals, uint64(2))
	c.Assert(page.Next, qt.Equals, uint64(3))

	rec = ta.do(http.MethodGet, EventsEndpoint+"?limit=0", nil)
	c.Assert(errorCode(c, rec), qt.Equals, ErrMalformedParam.Code)
	rec = ta.do(http.MethodGet, EventsEndpoint+"?from=x", nil)
	c.Assert(errorCode(c, rec), qt.Equals, ErrMalformedParam.Code)
}

func TestMetrics(t *testing.T) {
	c := qt.New(t)
	ta := newTestAPI(c)
	id := ta.createProposal(types.PublicAfterEnd)
	rec := ta.vote(newSigner(c), id, 1)
	c.Assert(rec.Code, qt.Equals, http.StatusOK, qt.Commentf("%s", rec.Body))

	rec = ta.do(http.MethodGet, MetricsEndpoint, nil)
	c.Assert(rec.Code, qt.Equals, http.StatusOK)
	c.Assert(strings.Contains(rec.Body.String(), "tally_votes_total"), qt.IsTrue)
	c.Assert(strings.Contains(rec.Body.String(), "tally_proposals_created_total"), qt.IsTrue)
}

func TestEngineNotAvailable(t *testing.T) {
	c := qt.New(t)
	ta := newTestAPI(c)
	ta.api.relayer = nil
	rec := ta.do(http.MethodGet, publicPath(1), nil)
	c.Assert(rec.Code, qt.Equals, http.StatusNotImplemented)
	c.Assert(errorCode(c, rec), qt.Equals, ErrEngineNotAvailable.Code)
}

func TestErrorFrom(t *testing.T) {
	c := qt.New(t)
	for _, tc := range []struct {
		err  error
		want Error
	}{
		{fmt.Errorf("vote: %w", voting.ErrInvalidOption), ErrInvalidOption},
		{fmt.Errorf("%w: 0xab", ledger.ErrReplayedRequest), ErrReplayedRequest},
		{fmt.Errorf("%w: empty title", voting.ErrInvalidParameters), ErrInvalidParameters},
		{voting.ErrUnauthorized, ErrUnauthorized},
		{voting.ErrNotFound, ErrProposalNotFound},
		{voting.ErrNotStarted, ErrVotingNotStarted},
		{voting.ErrEnded, ErrVotingEnded},
		{voting.ErrAlreadyVoted, ErrAlreadyVoted},
		{voting.ErrProofVerificationFailed, ErrInvalidProof},
		{voting.ErrNotEnded, ErrVotingNotEnded},
		{voting.ErrAlreadyFinalized, ErrAlreadyFinalized},
		{mockfhe.ErrInvalidCredential, ErrInvalidCredential},
		{ErrExpiredRequest.With("late"), ErrExpiredRequest},
		{fmt.Errorf("disk on fire"), ErrGenericInternalServerError},
	} {
		got := errorFrom(tc.err)
		c.Assert(got.Code, qt.Equals, tc.want.Code, qt.Commentf("%v", tc.err))
		c.Assert(got.HTTPstatus, qt.Equals, tc.want.HTTPstatus)
	}
}
