// Package api exposes the confidential voting ledger over HTTP. State
// changing endpoints take a SignedRequest whose signer is the caller of the
// ledger call.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/vocdoni/confidential-voting/fhe"
	"github.com/vocdoni/confidential-voting/fhe/mockfhe"
	"github.com/vocdoni/confidential-voting/ledger"
	"github.com/vocdoni/confidential-voting/log"
)

// Relayer is the client side of the encrypted-value engine: it produces
// external inputs and serves decryptions to permitted accounts.
type Relayer interface {
	Encrypt(value uint64, owner common.Address) (fhe.ExternalInput, error)
	UserDecrypt(req *mockfhe.UserDecryptRequest) ([]byte, error)
	PublicDecrypt(h fhe.Handle) (uint64, error)
}

// APIConfig type represents the configuration for the API HTTP server.
type APIConfig struct {
	Host   string
	Port   int
	Ledger *ledger.Ledger
	// Relayer enables the /fhe endpoints. Optional.
	Relayer Relayer
}

// API type represents the API HTTP server.
type API struct {
	router  *chi.Mux
	server  *http.Server
	addr    net.Addr
	ledger  *ledger.Ledger
	relayer Relayer
}

// New creates a new API instance with the given configuration and starts
// serving it. A zero port lets the system choose one, see Addr.
func New(conf *APIConfig) (*API, error) {
	if conf == nil {
		return nil, fmt.Errorf("missing API configuration")
	}
	if conf.Ledger == nil {
		return nil, fmt.Errorf("missing ledger instance")
	}
	a := &API{
		ledger:  conf.Ledger,
		relayer: conf.Relayer,
	}

	// Initialize router
	a.initRouter()

	ln, err := net.Listen("tcp", fmt.Sprintf("%s:%d", conf.Host, conf.Port))
	if err != nil {
		return nil, fmt.Errorf("failed to listen: %w", err)
	}
	a.addr = ln.Addr()
	a.server = &http.Server{
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Infow("starting API server", "addr", a.addr.String())
		if err := a.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorw(err, "API server stopped")
		}
	}()
	return a, nil
}

// NewRouter builds an API with its router only, without starting a server.
func NewRouter(l *ledger.Ledger, relayer Relayer) *API {
	a := &API{
		ledger:  l,
		relayer: relayer,
	}
	a.initRouter()
	return a
}

// Router returns the chi router for testing purposes
func (a *API) Router() *chi.Mux {
	return a.router
}

// Addr returns the address the server listens on.
func (a *API) Addr() net.Addr {
	return a.addr
}

// Shutdown stops the server, waiting for the running requests until ctx is
// done.
func (a *API) Shutdown(ctx context.Context) error {
	if a.server == nil {
		return nil
	}
	return a.server.Shutdown(ctx)
}

// registerHandlers registers all the API handlers.
func (a *API) registerHandlers() {
	log.Infow("register handler", "endpoint", PingEndpoint, "method", "GET")
	a.router.Get(PingEndpoint, func(w http.ResponseWriter, r *http.Request) {
		httpWriteOK(w)
	})
	log.Infow("register handler", "endpoint", MetricsEndpoint, "method", "GET")
	a.router.Get(MetricsEndpoint, a.writeMetrics)

	// proposals
	log.Infow("register handler", "endpoint", ProposalsEndpoint, "method", "POST")
	a.router.Post(ProposalsEndpoint, a.newProposal)
	log.Infow("register handler", "endpoint", ProposalEndpoint, "method", "GET")
	a.router.Get(ProposalEndpoint, a.proposal)
	log.Infow("register handler", "endpoint", VotesEndpoint, "method", "POST")
	a.router.Post(VotesEndpoint, a.newVote)
	log.Infow("register handler", "endpoint", FinalizeEndpoint, "method", "POST")
	a.router.Post(FinalizeEndpoint, a.finalize)
	log.Infow("register handler", "endpoint", TallyEndpoint, "method", "GET")
	a.router.Get(TallyEndpoint, a.tally)
	log.Infow("register handler", "endpoint", GrantsEndpoint, "method", "POST")
	a.router.Post(GrantsEndpoint, a.grant)
	log.Infow("register handler", "endpoint", VoterEndpoint, "method", "GET")
	a.router.Get(VoterEndpoint, a.voter)

	// roles
	log.Infow("register handler", "endpoint", RolesEndpoint, "method", "GET")
	a.router.Get(RolesEndpoint, a.roles)
	log.Infow("register handler", "endpoint", ProposersEndpoint, "method", "POST")
	a.router.Post(ProposersEndpoint, a.setProposer)
	log.Infow("register handler", "endpoint", AdministratorsEndpoint, "method", "POST")
	a.router.Post(AdministratorsEndpoint, a.setAdministrator)
	log.Infow("register handler", "endpoint", OwnerEndpoint, "method", "POST")
	a.router.Post(OwnerEndpoint, a.transferOwnership)

	// events
	log.Infow("register handler", "endpoint", EventsEndpoint, "method", "GET")
	a.router.Get(EventsEndpoint, a.events)

	// engine
	log.Infow("register handler", "endpoint", FHEInputsEndpoint, "method", "POST")
	a.router.Post(FHEInputsEndpoint, a.encryptInput)
	log.Infow("register handler", "endpoint", FHEDecryptEndpoint, "method", "POST")
	a.router.Post(FHEDecryptEndpoint, a.userDecrypt)
	log.Infow("register handler", "endpoint", FHEPublicEndpoint, "method", "GET")
	a.router.Get(FHEPublicEndpoint, a.publicValue)
}

// initRouter creates the router with all the routes and middleware.
func (a *API) initRouter() {
	// Create the router with a basic middleware stack
	a.router = chi.NewRouter()
	a.router.Use(cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}).Handler)
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Throttle(100))
	a.router.Use(middleware.ThrottleBacklog(5000, 40000, 60*time.Second))
	a.router.Use(middleware.Timeout(45 * time.Second))
	a.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		ErrResourceNotFound.With(r.URL.Path).Write(w)
	})

	// Register the API handlers
	a.registerHandlers()
}
