package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/far7tna/portal/portal"
	"github.com/far7tna/portal/session"
)

const shutdownTimeout = 5 * time.Second

func newPortalCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "portal",
		Short: "Serve the role based web portal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return withApp(ctx, opts, runPortal)
		},
	}
}

func runPortal(ctx context.Context, a *app) error {
	sess, err := session.Open(ctx, a.store)
	if err != nil {
		return err
	}
	defer sess.Close()

	handler, err := portal.New(a.cfg, portal.Deps{
		Session:  sess,
		Auth:     a.auth,
		API:      a.client,
		Metrics:  a.metrics,
		Gatherer: a.registry,
	})
	if err != nil {
		return err
	}
	defer handler.Close()

	displayAppname(a.cfg.GetAppName())
	server := &http.Server{
		Addr:              a.cfg.GetPortalAddr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		errs <- listenAndServe(server)
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}
	return shutdown(server)
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Portal listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	log.Info().Msg("Portal stopped")
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
