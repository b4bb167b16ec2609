package cmd

import (
	"errors"
	"fmt"
	"io"

	"nicodb/internal/adapter"
	"nicodb/internal/config"
	"nicodb/internal/domain"
	"nicodb/internal/logger"
	"nicodb/internal/metrics"
	"nicodb/internal/repository/sqlite"
	"nicodb/internal/service"
)

// Exit codes
const (
	exitFailure    = 1
	exitUsageError = 2
)

// app holds the components wired for one command invocation
type app struct {
	cfg       *config.Config
	log       *logger.Logger
	logCloser io.Closer
	db        *sqlite.DB

	reconciler domain.StreamerLookup
	pipeline   *service.StreamingPipeline
}

// newApp loads configuration, opens the log sinks and the database, applies
// migrations and builds the services
func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, domain.NewUserFriendlyError(err, fmt.Sprintf("configuration error: %v", err), exitUsageError)
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, domain.NewUserFriendlyError(err, fmt.Sprintf("configuration error: %v", err), exitUsageError)
	}
	log, logCloser, err := logger.Open(logger.Options{
		Level:  level,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open logger: %w", err)
	}
	logger.SetGlobalLogger(log)
	cfg.LogConfiguration(log)

	// Initialize SQLite database with WAL mode
	db, err := sqlite.NewDB(cfg.DatabasePath)
	if err != nil {
		logCloser.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Run database migrations to ensure schema is up to date
	if err := sqlite.Migrate(db.DB); err != nil {
		db.Close()
		logCloser.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	streamerRepo := sqlite.NewStreamerRepository(db)
	channelRepo := sqlite.NewChannelRepository(db)
	streamingRepo := sqlite.NewStreamingRepository(db)

	fetcher := adapter.NewNicoliveAdapter(cfg.StreamingBaseURL, cfg.UserAgent, cfg.FetchTimeout)
	reconciler := service.NewReconciler(streamerRepo, channelRepo, streamingRepo, cfg.Placeholders)
	pipeline := service.NewStreamingPipeline(fetcher, reconciler, cfg.Placeholders)

	return &app{
		cfg:        cfg,
		log:        log,
		logCloser:  logCloser,
		db:         db,
		reconciler: reconciler,
		pipeline:   pipeline,
	}, nil
}

// Close writes the metrics textfile when configured and releases the database and log file
func (a *app) Close() error {
	var errs []error

	if a.cfg.MetricsTextfile != "" {
		if err := metrics.WriteTextfile(a.cfg.MetricsTextfile); err != nil {
			a.log.Warn("failed to write metrics", map[string]interface{}{"error": err})
			errs = append(errs, err)
		}
	}
	if err := a.db.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close database: %w", err))
	}
	if err := a.logCloser.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close log file: %w", err))
	}

	return errors.Join(errs...)
}

// closeWith closes the app from a deferred call and reports a close failure
// through errp unless the command already failed
func (a *app) closeWith(errp *error) {
	if err := a.Close(); err != nil && *errp == nil {
		*errp = err
	}
}
