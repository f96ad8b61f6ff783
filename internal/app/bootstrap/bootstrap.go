package bootstrap

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"dndtools/app/internal/catalog"
	"dndtools/app/internal/config"
	"dndtools/app/internal/db"
	"dndtools/app/internal/filter"
	apphttp "dndtools/app/internal/http"
)

const slowQueryThreshold = 200 * time.Millisecond

// Dependencies are the process-wide collaborators created before bootstrapping.
type Dependencies struct {
	Config    *config.Config
	Logger    *logrus.Logger
	SentryHub *sentry.Hub
	Version   string
}

// Catalog is an opened store with its service.
type Catalog struct {
	Service  catalog.Service
	Database *gorm.DB
}

// Close releases the database connection.
func (c *Catalog) Close() error {
	return db.Close(c.Database)
}

// Result bundles the components of a running server.
type Result struct {
	Catalog    *Catalog
	HTTPServer *apphttp.Server
	Cleanup    func() error
}

// OpenDatabase connects to the configured store without touching the schema.
func OpenDatabase(deps Dependencies) (*gorm.DB, error) {
	if deps.Config == nil {
		return nil, eris.New("configuration is required")
	}

	conn, err := db.Open(db.Options{
		Driver: deps.Config.DBDriver,
		Path:   deps.Config.DBPath,
		DSN:    deps.Config.DBDSN,
		Logger: db.NewLogger(deps.Logger, slowQueryThreshold),
	})
	if err != nil {
		return nil, eris.Wrap(err, "opening database")
	}
	return conn, nil
}

// OpenCatalog opens the store, migrates the schema and builds the catalog service.
func OpenCatalog(ctx context.Context, deps Dependencies) (*Catalog, error) {
	conn, err := OpenDatabase(deps)
	if err != nil {
		return nil, err
	}

	closeOnError := func(wrapped error) (*Catalog, error) {
		if closeErr := db.Close(conn); closeErr != nil && deps.Logger != nil {
			deps.Logger.WithError(closeErr).Error("closing database after bootstrap failure")
		}
		return nil, wrapped
	}

	if err := catalog.Migrate(ctx, conn, deps.Logger); err != nil {
		return closeOnError(eris.Wrap(err, "running catalog migrations"))
	}

	repo, err := catalog.NewRepository(conn, deps.Logger)
	if err != nil {
		return closeOnError(eris.Wrap(err, "creating catalog repository"))
	}

	service, err := catalog.NewService(catalog.Options{
		Repository: repo,
		Logger:     deps.Logger,
		SentryHub:  deps.SentryHub,
		Pages: filter.PageConfig{
			Default: deps.Config.PageSize,
			Max:     deps.Config.PageSizeMax,
		},
		Strict: deps.Config.FilterStrict,
	})
	if err != nil {
		return closeOnError(eris.Wrap(err, "creating catalog service"))
	}

	return &Catalog{Service: service, Database: conn}, nil
}

// Build composes the catalog and its HTTP transport.
func Build(ctx context.Context, deps Dependencies) (Result, error) {
	cat, err := OpenCatalog(ctx, deps)
	if err != nil {
		return Result{}, err
	}

	server, err := apphttp.NewServer(apphttp.Options{
		Catalog:   cat.Service,
		Database:  cat.Database,
		Logger:    deps.Logger,
		SentryHub: deps.SentryHub,
		Version:   deps.Version,
		RateLimiter: apphttp.RateLimiterSettings{
			RequestsPerSecond: deps.Config.RateLimitRPS,
			Burst:             deps.Config.RateLimitBurst,
			ClientTTL:         deps.Config.RateLimitTTL,
		},
	})
	if err != nil {
		if closeErr := cat.Close(); closeErr != nil && deps.Logger != nil {
			deps.Logger.WithError(closeErr).Error("closing database after bootstrap failure")
		}
		return Result{}, eris.Wrap(err, "initialising http server")
	}

	cleanup := func() error {
		server.Close()
		return cat.Close()
	}

	return Result{
		Catalog:    cat,
		HTTPServer: server,
		Cleanup:    cleanup,
	}, nil
}
