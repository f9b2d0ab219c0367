// Package ledger is the execution environment of the voting core. It runs
// every call with exclusive access to the state, inside a storage transaction
// and a transient permission scope of the engine, and commits the call only
// when it succeeds: a failed call leaves no trace in the persisted state.
package ledger

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/vocdoni/confidential-voting/acl"
	"github.com/vocdoni/confidential-voting/fhe"
	"github.com/vocdoni/confidential-voting/log"
	"github.com/vocdoni/confidential-voting/storage"
	"github.com/vocdoni/confidential-voting/types"
	"github.com/vocdoni/confidential-voting/voting"
)

var (
	proposalsCreated   = metrics.GetOrCreateCounter("tally_proposals_created_total")
	votesCast          = metrics.GetOrCreateCounter("tally_votes_total")
	votesRejected      = metrics.GetOrCreateCounter("tally_votes_rejected_total")
	proposalsFinalized = metrics.GetOrCreateCounter("tally_proposals_finalized_total")
	grantsIssued       = metrics.GetOrCreateCounter("tally_grants_total")
)

// ErrReplayedRequest is returned when a call is bound to a request that
// already executed.
var ErrReplayedRequest = errors.New("request already executed")

// Engine is the encrypted-value engine the ledger drives.
type Engine interface {
	fhe.Capability
	fhe.Scoper
}

// Options configures a Ledger.
type Options struct {
	// Owner is written as the owner of the role table on first start. It is
	// ignored when a role table already exists.
	Owner  common.Address
	Limits voting.Limits
	// Now is the ledger clock, time.Now when nil.
	Now func() time.Time
}

// Ledger serializes calls to the voting core.
type Ledger struct {
	mu     sync.Mutex
	stg    *storage.Storage
	engine Engine
	voting *voting.Voting
	now    func() time.Time
}

// New creates a ledger over stg and engine, writing the genesis role table if
// the storage has none.
func New(stg *storage.Storage, engine Engine, opts Options) (*Ledger, error) {
	v, err := voting.New(engine, opts.Limits)
	if err != nil {
		return nil, err
	}
	l := &Ledger{
		stg:    stg,
		engine: engine,
		voting: v,
		now:    opts.Now,
	}
	if l.now == nil {
		l.now = time.Now
	}
	roles, err := stg.Roles()
	switch {
	case err == nil:
		if opts.Owner != (common.Address{}) && opts.Owner != roles.Owner {
			log.Warnw("ignoring configured owner, role table already exists",
				"configured", opts.Owner.Hex(), "owner", roles.Owner.Hex())
		}
	case errors.Is(err, storage.ErrNotFound):
		if opts.Owner == (common.Address{}) {
			return nil, fmt.Errorf("no role table found and no owner configured")
		}
		tx := stg.WriteTx()
		defer tx.Discard()
		if err := tx.SetRoles(&types.Roles{Owner: opts.Owner}); err != nil {
			return nil, err
		}
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("write genesis roles: %w", err)
		}
		log.Infow("genesis role table written", "owner", opts.Owner.Hex())
	default:
		return nil, err
	}
	return l, nil
}

// Now returns the current ledger time.
func (l *Ledger) Now() time.Time {
	return l.now()
}

// Voting returns the voting core the ledger drives.
func (l *Ledger) Voting() *voting.Voting {
	return l.voting
}

// CallOption configures a single call.
type CallOption func(*callOptions)

type callOptions struct {
	requestID []byte
	expires   int64
}

// WithRequest binds the call to the request id. Once a call bound to id
// succeeds, every other call bound to id fails with ErrReplayedRequest until
// expires. A failed call does not use the request.
func WithRequest(id []byte, expires time.Time) CallOption {
	return func(o *callOptions) {
		o.requestID = id
		o.expires = expires.Unix()
	}
}

// Execute runs fn as a single call of caller. Calls are serialized. The
// changes fn makes are committed only if it returns nil, and transient
// permissions granted during the call are revoked when it returns.
func (l *Ledger) Execute(caller common.Address, fn func(*Call) error, opts ...CallOption) error {
	o := &callOptions{}
	for _, opt := range opts {
		opt(o)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	closeScope := l.engine.OpenScope()
	defer closeScope()

	tx := l.stg.WriteTx()
	defer tx.Discard()

	now := l.now()
	if o.requestID != nil {
		if err := useRequest(tx, o, now); err != nil {
			return err
		}
	}
	roles, err := tx.Roles()
	if err != nil {
		return fmt.Errorf("load roles: %w", err)
	}
	call := &Call{
		Tx:     tx,
		voting: l.voting,
		auth:   acl.NewContext(caller, roles),
		now:    now,
	}
	if err := fn(call); err != nil {
		return err
	}
	if call.auth.Dirty() {
		if err := tx.SetRoles(call.auth.Roles()); err != nil {
			return fmt.Errorf("store roles: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit call: %w", err)
	}
	return nil
}

func useRequest(tx *storage.Tx, o *callOptions, now time.Time) error {
	if _, err := tx.PruneRequests(now.Unix()); err != nil {
		return err
	}
	used, err := tx.RequestUsed(o.requestID)
	if err != nil {
		return err
	}
	if used {
		return fmt.Errorf("%w: %x", ErrReplayedRequest, o.requestID)
	}
	return tx.UseRequest(o.requestID, o.expires)
}

// Call is the state of one call. It implements voting.State, stamping the
// events it emits.
type Call struct {
	*storage.Tx
	voting *voting.Voting
	auth   *acl.Context
	now    time.Time
}

// Caller returns the authenticated caller.
func (c *Call) Caller() common.Address {
	return c.auth.Caller()
}

// Now returns the time of the call. It does not change during a call.
func (c *Call) Now() time.Time {
	return c.now
}

// Emit gives ev a unique id and the call timestamp and appends it to the
// event log.
func (c *Call) Emit(ev *types.Event) error {
	ev.ID = uuid.NewString()
	ev.Timestamp = c.now.Unix()
	return c.Tx.Emit(ev)
}

// CreateProposal creates a proposal owned by the caller.
func (c *Call) CreateProposal(params voting.ProposalParams) (types.ProposalID, error) {
	return c.voting.CreateProposal(c, c.auth, c.now, params)
}

// Vote casts the encrypted choice of the caller.
func (c *Call) Vote(id types.ProposalID, in fhe.ExternalInput) error {
	return c.voting.ApplyVote(c, c.auth, c.now, id, in)
}

// Finalize finalizes an ended proposal.
func (c *Call) Finalize(id types.ProposalID) error {
	return c.voting.FinalizeProposal(c, c.auth, c.now, id)
}

// Grant gives account persistent access to the tally of a proposal.
func (c *Call) Grant(id types.ProposalID, account common.Address) error {
	return c.voting.GrantDecryptionPermission(c, c.auth, id, account)
}

// SetProposer enables or disables account as proposer.
func (c *Call) SetProposer(account common.Address, enabled bool) error {
	if err := c.auth.SetProposer(account, enabled); err != nil {
		return err
	}
	return c.Emit(&types.Event{Kind: types.EventProposerSet, Account: account, Enabled: enabled})
}

// SetAdministrator enables or disables account as administrator.
func (c *Call) SetAdministrator(account common.Address, enabled bool) error {
	if err := c.auth.SetAdministrator(account, enabled); err != nil {
		return err
	}
	return c.Emit(&types.Event{Kind: types.EventAdministratorSet, Account: account, Enabled: enabled})
}

// TransferOwnership hands the owner role to newOwner.
func (c *Call) TransferOwnership(newOwner common.Address) error {
	if err := c.auth.TransferOwnership(newOwner); err != nil {
		return err
	}
	return c.Emit(&types.Event{Kind: types.EventOwnershipTransferred, Account: newOwner})
}
