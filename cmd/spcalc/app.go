package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Puppetdog/sp-calculator-sub000/internal/config"
	"github.com/Puppetdog/sp-calculator-sub000/internal/metrics"
	"github.com/Puppetdog/sp-calculator-sub000/internal/output"
	"github.com/Puppetdog/sp-calculator-sub000/internal/service"
	"github.com/Puppetdog/sp-calculator-sub000/internal/store"
)

// app holds what a command needs once settings are resolved.
type app struct {
	settings config.Settings
	logger   *slog.Logger
	programs store.ProgramStore
	service  *service.Service
	close    func() error
}

// loadSettings resolves settings from the env file and environment, then
// applies flag overrides.
func (o *rootOptions) loadSettings() (config.Settings, error) {
	settings, err := config.LoadSettings(o.envFile)
	if err != nil {
		return config.Settings{}, err
	}
	if o.catalog != "" {
		settings.Catalog = o.catalog
	}
	return settings, nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// open builds the store and service for a command. m may be nil.
func (o *rootOptions) open(cmd *cobra.Command, m *metrics.Metrics) (*app, error) {
	settings, err := o.loadSettings()
	if err != nil {
		return nil, err
	}
	logger := newLogger(cmd.ErrOrStderr(), settings.LogLevel)

	programs, closeFn, err := openStore(cmd.Context(), settings)
	if err != nil {
		return nil, err
	}
	svc := service.New(programs,
		service.WithLogger(logger),
		service.WithMetrics(m),
		service.WithWorkers(settings.Workers),
	)
	return &app{settings: settings, logger: logger, programs: programs, service: svc, close: closeFn}, nil
}

// openStore selects the SQL store when a DSN is configured and otherwise an
// in-memory store loaded from the catalog file.
func openStore(ctx context.Context, settings config.Settings) (store.ProgramStore, func() error, error) {
	if settings.UsesDatabase() {
		db, err := store.Open(settings.DBDriver, settings.DBDSN)
		if err != nil {
			return nil, nil, err
		}
		sqlStore, err := store.NewSQLStore(db, settings.DBDriver)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		if err := sqlStore.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return sqlStore, db.Close, nil
	}

	if settings.Catalog == "" {
		return nil, nil, errors.New("no program source configured: pass --catalog, set SPCALC_CATALOG or SPCALC_DB_DSN")
	}
	catalog, err := config.NewInputParser().LoadCatalog(settings.Catalog)
	if err != nil {
		return nil, nil, err
	}
	return store.NewMemoryStore(catalog.Programs, catalog.MEBValues), func() error { return nil }, nil
}

// render writes the report to the command's output in the selected format
// and, with --save, to a file as well.
func (o *rootOptions) render(cmd *cobra.Command, report *output.Report) error {
	f, ok := output.GetFormatterByName(o.format)
	if !ok {
		return fmt.Errorf("unsupported format %q (available: %s)", o.format, strings.Join(output.FormatNames(), ", "))
	}
	if report.GeneratedAt.IsZero() {
		report.GeneratedAt = time.Now()
	}

	data, err := f.Format(report)
	if err != nil {
		return err
	}
	if _, err := cmd.OutOrStdout().Write(data); err != nil {
		return err
	}

	if o.save {
		ext := f.Name()
		if ext == "console" {
			ext = "txt"
		}
		filename, err := output.WriteFormatted(f, report, ext)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "report written to %s\n", filename)
	}
	return nil
}
