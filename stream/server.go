package stream

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/lixenwraith/danmaku/parameter"
)

// NewServeMux routes parameter.StreamPath to hub
func NewServeMux(hub *Hub) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle(parameter.StreamPath, hub)
	return mux
}

// NewHandler is the instrumented server handler
// Spans and metrics go to the global otel providers, which are no-ops until a driver installs an SDK
func NewHandler(hub *Hub) http.Handler {
	return otelhttp.NewHandler(NewServeMux(hub), "danmaku.stream")
}

// ListenAndServe serves hub on addr until ctx is done, then shuts down gracefully
func ListenAndServe(ctx context.Context, addr string, hub *Hub) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           NewHandler(hub),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	slog.Info("stream server started", "addr", addr, "path", parameter.StreamPath)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
