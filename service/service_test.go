package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/confidential-voting/api/client"
	"github.com/vocdoni/confidential-voting/crypto/ethereum"
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

type testNode struct {
	ledger *ledger.Ledger
	engine *mockfhe.Engine
	clock  *clock
	owner  *ethereum.SignKeys
}

func newTestNode(c *qt.C) *testNode {
	clk := &clock{now: time.Unix(1_700_000_000, 0)}
	engine, err := mockfhe.New(mockfhe.Options{Now: clk.Now})
	c.Assert(err, qt.IsNil)
	owner := ethereum.NewSignKeys()
	c.Assert(owner.Generate(), qt.IsNil)
	stg := storage.New(metadb.NewTest(c.TB))
	l, err := ledger.New(stg, engine, ledger.Options{
		Owner:  owner.Address(),
		Limits: voting.DefaultLimits(),
		Now:    clk.Now,
	})
	c.Assert(err, qt.IsNil)
	return &testNode{ledger: l, engine: engine, clock: clk, owner: owner}
}

func (n *testNode) createProposal(c *qt.C, duration time.Duration) types.ProposalID {
	id, err := n.ledger.CreateProposal(n.owner.Address(), voting.ProposalParams{
		Title:       "Finalize me",
		OptionCount: 2,
		Duration:    duration,
		Strategy:    types.PublicAfterEnd,
		MinQuorum:   1,
	})
	c.Assert(err, qt.IsNil)
	return id
}

func TestAPIService(t *testing.T) {
	c := qt.New(t)
	node := newTestNode(c)

	// Port 0 lets the OS choose an available port
	apiService := NewAPI(node.ledger, node.engine, "127.0.0.1", 0)
	ctx := context.Background()

	c.Assert(apiService.Start(ctx), qt.IsNil)
	defer apiService.Stop()
	c.Assert(apiService.Addr(), qt.Not(qt.IsNil))

	cli, err := client.New(fmt.Sprintf("http://%s", apiService.Addr()))
	c.Assert(err, qt.IsNil)
	roles, err := cli.Roles()
	c.Assert(err, qt.IsNil)
	c.Assert(roles.Owner, qt.Equals, node.owner.Address())

	// Test starting an already running service
	c.Assert(apiService.Start(ctx), qt.ErrorMatches, "service already running")

	// Test stopping and restarting
	apiService.Stop()
	c.Assert(apiService.Addr(), qt.IsNil)
	c.Assert(apiService.Start(ctx), qt.IsNil)
	c.Assert(apiService.Addr(), qt.Not(qt.IsNil))
}

func TestFinalizeEnded(t *testing.T) {
	c := qt.New(t)
	node := newTestNode(c)
	short := node.createProposal(c, 10*time.Second)
	long := node.createProposal(c, time.Hour)
	keeper := common.HexToAddress("0x00000000000000000000000000000000000000ee")
	f := NewFinalizer(node.ledger, keeper, time.Second)

	n, err := f.FinalizeEnded()
	c.Assert(err, qt.IsNil)
	c.Assert(n, qt.Equals, 0)

	node.clock.Advance(11 * time.Second)
	n, err = f.FinalizeEnded()
	c.Assert(err, qt.IsNil)
	c.Assert(n, qt.Equals, 1)

	_, status, err := node.ledger.Proposal(short)
	c.Assert(err, qt.IsNil)
	c.Assert(status, qt.Equals, types.StatusFinalized)
	_, status, err = node.ledger.Proposal(long)
	c.Assert(err, qt.IsNil)
	c.Assert(status, qt.Equals, types.StatusActive)

	// finalized proposals are no longer listed
	n, err = f.FinalizeEnded()
	c.Assert(err, qt.IsNil)
	c.Assert(n, qt.Equals, 0)

	// the tally became public
	tally, err := node.ledger.Tally(short)
	c.Assert(err, qt.IsNil)
	c.Assert(node.engine.IsPubliclyDecryptable(tally.Total.Handle()), qt.IsTrue)

	evs, err := node.ledger.Events(0, 0)
	c.Assert(err, qt.IsNil)
	last := evs[len(evs)-1]
	c.Assert(last.Kind, qt.Equals, types.EventProposalFinalized)
	c.Assert(last.Account, qt.Equals, keeper)
}

func TestFinalizerService(t *testing.T) {
	c := qt.New(t)
	node := newTestNode(c)
	id := node.createProposal(c, 10*time.Second)
	node.clock.Advance(time.Minute)

	f := NewFinalizer(node.ledger, common.Address{}, 10*time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	c.Assert(f.Start(ctx), qt.IsNil)
	c.Assert(f.Start(ctx), qt.ErrorMatches, "service already running")

	finalized := false
	for !finalized && ctx.Err() == nil {
		time.Sleep(20 * time.Millisecond)
		_, status, err := node.ledger.Proposal(id)
		c.Assert(err, qt.IsNil)
		finalized = status == types.StatusFinalized
	}
	f.Stop()
	c.Assert(finalized, qt.IsTrue)

	// stopping twice is harmless
	f.Stop()
	c.Assert(NewFinalizer(node.ledger, common.Address{}, 0).Start(ctx), qt.ErrorMatches, "invalid finalizer interval.*")
}

type fakeService struct {
	mu       sync.Mutex
	startErr error
	started  bool
	stopped  bool
}

func (s *fakeService) Start(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.startErr != nil {
		return s.startErr
	}
	s.started = true
	return nil
}

func (s *fakeService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
}

func TestRun(t *testing.T) {
	c := qt.New(t)
	a, b := &fakeService{}, &fakeService{}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- Run(ctx, a, b) }()
	cancel()
	c.Assert(<-done, qt.IsNil)
	c.Assert(a.started && a.stopped, qt.IsTrue)
	c.Assert(b.started && b.stopped, qt.IsTrue)

	failing := &fakeService{startErr: errors.New("port in use")}
	ok := &fakeService{}
	err := Run(context.Background(), ok, failing)
	c.Assert(err, qt.ErrorMatches, "port in use")
	c.Assert(ok.stopped, qt.IsTrue)
}
