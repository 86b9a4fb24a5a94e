package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"parley/internal/app"
	"parley/internal/relay"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		addr     string
		maxPeers int
		logLevel string
	)
	cmd := &cobra.Command{
		Use:          "relay",
		Short:        "Run the parley WebSocket relay",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			lvl, err := logrus.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			logrus.SetLevel(lvl)
			logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, addr, relay.HubConfig{MaxPeers: maxPeers})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", app.DefaultRelayAddr, "listen address")
	cmd.Flags().IntVar(&maxPeers, "max-peers", 0, "maximum concurrent peers (0 = unlimited)")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	return cmd
}

func serve(ctx context.Context, addr string, cfg relay.HubConfig) error {
	hub := relay.NewHub(cfg)
	srv := &http.Server{
		Addr:              addr,
		Handler:           withAccessLog(hub.Handler()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logrus.WithFields(logrus.Fields{
			"function": "serve",
			"addr":     addr,
		}).Info("Relay listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logrus.WithFields(logrus.Fields{"function": "serve"}).Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	hub.Close()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// withAccessLog logs method, path, remote address and duration per request.
func withAccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logrus.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"remote":   r.RemoteAddr,
			"duration": time.Since(start).String(),
		}).Debug("request")
	})
}
