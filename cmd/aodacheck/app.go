package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/hazyhaar/aodacheck/a11y"
	"github.com/hazyhaar/aodacheck/observability"
)

// app is the bootstrapped process state shared by every subcommand.
type app struct {
	cfg    *a11y.Config
	logger *slog.Logger
	tel    *observability.Telemetry
}

func bootstrap(ctx context.Context, cmd *cobra.Command) (*app, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	cfg, err := a11y.LoadConfig(rootFlags.config)
	if err != nil {
		return nil, err
	}

	tel, err := observability.Setup(ctx, observability.OTelConfig{
		Endpoint:       cfg.OTel.Endpoint,
		Headers:        cfg.OTel.Headers,
		ServiceName:    cfg.OTel.ServiceName,
		ServiceVersion: version,
	})
	if err != nil {
		return nil, err
	}

	logger := observability.NewLogger(cmd.ErrOrStderr(), observability.LoggerConfig{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.OTel.ServiceName,
		OTel:    tel.LogsEnabled(),
	})
	slog.SetDefault(logger)

	return &app{cfg: cfg, logger: logger, tel: tel}, nil
}

func (a *app) analyzer(ctx context.Context) (*a11y.Analyzer, error) {
	explainer, narrator, err := a11y.NewAI(ctx, a.cfg, a.logger)
	if err != nil {
		return nil, err
	}
	return a11y.New(a11y.Options{
		Config:    a.cfg,
		Launcher:  a11y.NewRodLauncher(a.cfg, a.logger),
		Explainer: explainer,
		Narrator:  narrator,
		Logger:    a.logger,
	})
}

func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.tel.Shutdown(ctx); err != nil {
		a.logger.Warn("aodacheck: telemetry shutdown", "error", err)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
