package restapi

import (
	"context"
	"net/http"

	"golang.org/x/sync/errgroup"
)

// Serve runs an http.Server wrapping h until ctx is canceled, then shuts
// the server down gracefully. The listen goroutine and the
// shutdown-on-cancel goroutine are joined with an errgroup.Group rather
// than a bare sync.WaitGroup so either one's error propagates out of
// Wait.
func Serve(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{Addr: addr, Handler: h}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		select {
		case <-ctx.Done():
		case <-gctx.Done():
		}
		return srv.Shutdown(context.Background())
	})
	return g.Wait()
}
