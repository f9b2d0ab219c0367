package service

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/vocdoni/confidential-voting/api"
	"github.com/vocdoni/confidential-voting/ledger"
	"github.com/vocdoni/confidential-voting/log"
)

// shutdownTimeout bounds how long Stop waits for running requests.
const shutdownTimeout = 5 * time.Second

// APIService represents a service that manages the HTTP API server.
type APIService struct {
	ledger  *ledger.Ledger
	relayer api.Relayer
	api     *api.API
	mu      sync.Mutex
	cancel  context.CancelFunc
	host    string
	port    int
}

// NewAPI creates a new APIService instance. The relayer is optional and
// enables the engine endpoints.
func NewAPI(l *ledger.Ledger, relayer api.Relayer, host string, port int) *APIService {
	return &APIService{
		ledger:  l,
		relayer: relayer,
		host:    host,
		port:    port,
	}
}

// Start begins the API server. It returns an error if the service
// is already running or if it fails to start.
func (as *APIService) Start(ctx context.Context) error {
	as.mu.Lock()
	defer as.mu.Unlock()

	if as.cancel != nil {
		return fmt.Errorf("service already running")
	}

	var err error
	as.api, err = api.New(&api.APIConfig{
		Host:    as.host,
		Port:    as.port,
		Ledger:  as.ledger,
		Relayer: as.relayer,
	})
	if err != nil {
		return fmt.Errorf("failed to start API server: %w", err)
	}
	_, as.cancel = context.WithCancel(ctx)
	return nil
}

// Stop halts the API server.
func (as *APIService) Stop() {
	as.mu.Lock()
	defer as.mu.Unlock()

	if as.cancel == nil {
		return
	}
	as.cancel()
	as.cancel = nil
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := as.api.Shutdown(ctx); err != nil {
		log.Warnw("API server shutdown", "error", err.Error())
	}
	as.api = nil
}

// HostPort returns the configured host and port of the API server.
func (as *APIService) HostPort() (string, int) {
	return as.host, as.port
}

// Addr returns the address the API server listens on, nil if it is not
// running.
func (as *APIService) Addr() net.Addr {
	as.mu.Lock()
	defer as.mu.Unlock()
	if as.api == nil {
		return nil
	}
	return as.api.Addr()
}
