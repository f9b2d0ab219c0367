package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vocdoni/confidential-voting/ledger"
	"github.com/vocdoni/confidential-voting/log"
	"github.com/vocdoni/confidential-voting/voting"
)

// Finalizer represents a service that periodically finalizes the proposals
// whose voting period is over, so their disclosure strategy takes effect
// without waiting for someone to call finalize.
type Finalizer struct {
	ledger   *ledger.Ledger
	caller   common.Address
	interval time.Duration
	mu       sync.Mutex
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewFinalizer creates a new Finalizer service. Finalizations are made on
// behalf of caller.
func NewFinalizer(l *ledger.Ledger, caller common.Address, interval time.Duration) *Finalizer {
	return &Finalizer{
		ledger:   l,
		caller:   caller,
		interval: interval,
	}
}

// Start begins the periodic finalization. It returns an error if the service
// is already running.
func (f *Finalizer) Start(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.cancel != nil {
		return fmt.Errorf("service already running")
	}
	if f.interval <= 0 {
		return fmt.Errorf("invalid finalizer interval %s", f.interval)
	}

	ctx, cancel := context.WithCancel(ctx)
	f.cancel = cancel
	f.done = make(chan struct{})
	go f.run(ctx, f.done)
	return nil
}

// Stop halts the service and waits for the running pass to end.
func (f *Finalizer) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.cancel != nil {
		f.cancel()
		<-f.done
		f.cancel = nil
	}
}

func (f *Finalizer) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := f.FinalizeEnded(); err != nil {
				log.Warnw("finalizer pass failed", "error", err.Error())
			}
		}
	}
}

// FinalizeEnded finalizes every ended proposal and returns how many were
// finalized. A proposal finalized concurrently by someone else is skipped.
func (f *Finalizer) FinalizeEnded() (int, error) {
	ids, err := f.ledger.EndedProposals(f.ledger.Now())
	if err != nil {
		return 0, fmt.Errorf("list ended proposals: %w", err)
	}
	n := 0
	for _, id := range ids {
		err := f.ledger.Finalize(f.caller, id)
		switch {
		case err == nil:
			n++
		case errors.Is(err, voting.ErrAlreadyFinalized):
			log.Debugw("proposal already finalized", "proposalId", id)
		default:
			log.Warnw("failed to finalize proposal", "proposalId", id, "error", err.Error())
		}
	}
	if n > 0 {
		log.Infow("finalizer pass", "finalized", n, "ended", len(ids))
	}
	return n, nil
}
