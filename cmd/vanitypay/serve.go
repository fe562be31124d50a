package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bitfsorg/vanitypay-go/gateway"
	"github.com/bitfsorg/vanitypay-go/identity"
	"github.com/bitfsorg/vanitypay-go/paywall"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func serveCommand() *cobra.Command {
	var (
		content string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve alias content to paying callers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGateway(cmd, func(a *app, gw *gateway.Gateway) error {
				if a.cfg.PayTo == "" {
					return errors.New("payto must be configured to serve")
				}
				payTo, err := identity.Parse(a.cfg.PayTo)
				if err != nil {
					return err
				}
				node, err := a.walletRPC()
				if err != nil {
					return err
				}
				gate, err := paywall.NewGate(gw, payTo,
					paywall.WithNode(node),
					paywall.WithMainnet(a.cfg.Mainnet()),
					paywall.WithInvoiceTTL(ttl),
					paywall.WithLogger(a.logger),
				)
				if err != nil {
					return err
				}
				if _, err := os.Stat(content); err != nil {
					return fmt.Errorf("content directory: %w", err)
				}

				srv := &http.Server{
					Addr:              a.cfg.ListenAddr,
					Handler:           gate.Handler(http.FileServer(http.Dir(content))),
					ReadHeaderTimeout: 10 * time.Second,
				}
				return runServer(cmd.Context(), a, srv)
			})
		},
	}
	cmd.Flags().StringVar(&content, "content", "content", "directory served as <name>/<alias> content")
	cmd.Flags().DurationVar(&ttl, "invoice-ttl", paywall.DefaultInvoiceTTL, "lifetime of payment invoices")
	return cmd
}

// runServer serves until ctx is cancelled or SIGINT/SIGTERM arrives.
func runServer(ctx context.Context, a *app, srv *http.Server) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(sctx)
}
