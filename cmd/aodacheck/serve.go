package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/hazyhaar/aodacheck/a11y"
	"github.com/hazyhaar/aodacheck/dbopen"
	"github.com/hazyhaar/aodacheck/server"
	"github.com/hazyhaar/aodacheck/shield"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serves the JSON API (/analyze, /simulate-vision, /vision-types, /narrate,
/health) and the MCP streamable endpoint at /mcp. Rate-limit rules and the
maintenance flag live in the SQLite database at db.path.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := bootstrap(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.close()
	logger := a.logger

	db, err := dbopen.Open(a.cfg.DB.Path, dbopen.WithMkdirAll(), dbopen.WithSchema(shield.Schema))
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	stack, rl, mm := shield.DefaultStack(db, a.cfg.Server.BodyLimit)
	done := make(chan struct{})
	defer close(done)
	rl.StartReloader(done)
	mm.StartReloader(done)

	an, err := a.analyzer(ctx)
	if err != nil {
		return err
	}
	mcpSrv := a11y.NewMCPServer(an, version)

	handler := server.New(an, server.Config{
		Production: a.cfg.Server.Production(),
		Version:    version,
		Middleware: stack,
		MCP: mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
			return mcpSrv
		}, nil),
		Logger: logger,
	})

	srv := &http.Server{
		Addr:         a.cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
		IdleTimeout:  a.cfg.Server.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("aodacheck: listening", "addr", srv.Addr, "env", a.cfg.Server.Env, "version", version)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("aodacheck: shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
