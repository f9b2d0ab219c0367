package mockfhe

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vocdoni/confidential-voting/fhe"
)

// Allow grants account a persistent permission to decrypt h. Granting twice
// is a no-op.
func (e *Engine) Allow(h fhe.Handle, account common.Address) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.exists(h); err != nil {
		return err
	}
	if hasGrant(e.persistent, h, account) {
		return nil
	}
	if err := e.persistGrant(h, account); err != nil {
		return err
	}
	addGrant(e.persistent, h, account)
	return nil
}

// AllowTransient grants account a permission to decrypt h until the
// outermost open scope is closed. Outside any scope the grant is dropped
// right away.
func (e *Engine) AllowTransient(h fhe.Handle, account common.Address) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.exists(h); err != nil {
		return err
	}
	if e.scopeDepth == 0 {
		return nil
	}
	addGrant(e.transient, h, account)
	return nil
}

// MarkPubliclyDecryptable lets anyone decrypt h.
func (e *Engine) MarkPubliclyDecryptable(h fhe.Handle) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.exists(h); err != nil {
		return err
	}
	if _, ok := e.public[h]; ok {
		return nil
	}
	if err := e.persistPublic(h); err != nil {
		return err
	}
	e.public[h] = struct{}{}
	return nil
}

// OpenScope opens a transient permission scope. Scopes nest; transient grants
// are cleared when the outermost one is closed. The returned function is
// idempotent.
func (e *Engine) OpenScope() func() {
	e.mu.Lock()
	e.scopeDepth++
	e.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			e.scopeDepth--
			if e.scopeDepth == 0 {
				clear(e.transient)
			}
		})
	}
}

// IsAllowed reports whether account may decrypt h, through any kind of grant.
func (e *Engine) IsAllowed(h fhe.Handle, account common.Address) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.isAllowed(h, account)
}

// IsPubliclyDecryptable reports whether h was marked publicly decryptable.
func (e *Engine) IsPubliclyDecryptable(h fhe.Handle) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.public[h]
	return ok
}

func (e *Engine) isAllowed(h fhe.Handle, account common.Address) bool {
	if _, ok := e.public[h]; ok {
		return true
	}
	return hasGrant(e.persistent, h, account) || hasGrant(e.transient, h, account)
}

func addGrant(grants map[fhe.Handle]map[common.Address]struct{}, h fhe.Handle, account common.Address) {
	accounts, ok := grants[h]
	if !ok {
		accounts = make(map[common.Address]struct{})
		grants[h] = accounts
	}
	accounts[account] = struct{}{}
}

func hasGrant(grants map[fhe.Handle]map[common.Address]struct{}, h fhe.Handle, account common.Address) bool {
	_, ok := grants[h][account]
	return ok
}
