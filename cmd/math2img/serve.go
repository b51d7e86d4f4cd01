package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gogpu/math2img"
	"github.com/gogpu/math2img/internal/server"
)

func (a *app) cmdServe() *cobra.Command {
	addFlags := func(cmd *cobra.Command) error {
		cmd.Flags().String("addr", ":8080", "address to listen on")
		cmd.Flags().Duration("shutdown-timeout", 10*time.Second, "time allowed for requests in flight on shutdown")
		return nil
	}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve equation rendering over HTTP",
		Long: `Serve POST /v1/equation, which renders one equation to image/png, and
POST /v1/document, which renders a whole document to a JSON list of
base64 PNGs. Rendering flags apply to every request.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := applyEnv(cmd.Flags()); err != nil {
				return err
			}
			return a.setupLogging(cmd, slog.LevelInfo)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			grace, _ := cmd.Flags().GetDuration("shutdown-timeout")
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx, cmd, ln, grace)
		},
	}
	if err := addFlags(cmd); err != nil {
		panic(err)
	}
	return cmd
}

// serve runs the HTTP server on ln until ctx ends, then shuts it down.
func (a *app) serve(ctx context.Context, cmd *cobra.Command, ln net.Listener, grace time.Duration) error {
	opts, err := rendererOptions(cmd)
	if err != nil {
		ln.Close()
		return err
	}
	renderer, err := math2img.New(opts...)
	if err != nil {
		ln.Close()
		return err
	}
	defer renderer.Close()

	httpServer := &http.Server{
		Handler:      server.New(renderer, a.log),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Serve(ln)
	}()
	a.log.Info("serving", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
