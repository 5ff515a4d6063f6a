package webhook

import (
	"context"
	"net/http"
	"strconv"
	"time"
)

// Run serves the webhook until ctx is canceled, then shuts down gracefully.
func Run(ctx context.Context, port int, h *Handler) error {
	srv := &http.Server{
		Addr:         ":" + strconv.Itoa(port),
		Handler:      h.Routes(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(sctx)
		return nil
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
