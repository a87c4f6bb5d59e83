package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang/glog"

	"github.com/openflight/hangar/internal/persistence"
	"github.com/openflight/hangar/internal/replication"
)

// RelayOptions configure the relay server.
type RelayOptions struct {
	ConfigPath string
	Listen     string // overrides the configured address
	Keep       int    // revisions kept per player; zero keeps everything
}

// RunRelay serves the replication hub over websockets at /ws until the
// context is cancelled.
func RunRelay(ctx context.Context, opts RelayOptions) error {
	cfg, err := loadConfig(Options{ConfigPath: opts.ConfigPath})
	if err != nil {
		return err
	}
	addr := cfg.Listen
	if opts.Listen != "" {
		addr = opts.Listen
	}

	backend, err := persistence.OpenSQLite(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer backend.Close()

	if opts.Keep > 0 {
		n, err := backend.Prune(ctx, opts.Keep)
		if err != nil {
			return err
		}
		glog.Infof("relay: pruned %d old revisions", n)
	}

	hub := replication.NewHub(backend, cfg.CapacityBytes)
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", replication.NewServer(hub).Handler())
	mux.HandleFunc("/api/status", replication.StatusHandler(hub))
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, _ *http.Request) {
		rw.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(rw, "ok %d players\n", len(hub.Players()))
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		glog.Infof("relay: listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("relay: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func secondsToDuration(n int) time.Duration {
	return time.Duration(n) * time.Second
}
