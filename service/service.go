// Package service holds the long running services of a node and the helper
// that runs them together.
package service

import (
	"context"

	"github.com/vocdoni/confidential-voting/log"
	"golang.org/x/sync/errgroup"
)

// Service is a component with a start and stop lifecycle. Start must not
// block.
type Service interface {
	Start(ctx context.Context) error
	Stop()
}

// Run starts every service concurrently and blocks until ctx is done, then
// stops them. If any service fails to start, the ones already started are
// stopped and the error is returned.
func Run(ctx context.Context, services ...Service) error {
	var g errgroup.Group
	for _, s := range services {
		g.Go(func() error {
			return s.Start(ctx)
		})
	}
	if err := g.Wait(); err != nil {
		stopAll(services)
		return err
	}
	log.Infow("services started", "count", len(services))
	<-ctx.Done()
	stopAll(services)
	return nil
}

// stopAll stops services in reverse order. Stop is a no-op on services that
// are not running.
func stopAll(services []Service) {
	for i := len(services) - 1; i >= 0; i-- {
		services[i].Stop()
	}
}
