// Package server assembles the docme API server: PostgreSQL with goose
// migrations, the services, object storage presigning and the HTTP router.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/dmitrijs2005/docme/internal/logging"
	"github.com/dmitrijs2005/docme/internal/server/config"
	"github.com/dmitrijs2005/docme/internal/server/httpapi"
	"github.com/dmitrijs2005/docme/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/docme/internal/server/services"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	rm     repomanager.RepositoryManager
}

// openDB is a seam for tests.
var openDB = func(dsn string) (*sql.DB, error) {
	return sql.Open("pgx", dsn)
}

// NewApp connects to the database and applies migrations.
func NewApp(ctx context.Context, c *config.Config, l logging.Logger) (*App, error) {
	db, err := openDB(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return &App{config: c, logger: l, db: db, rm: rm}, nil
}

// router wires the services into the HTTP API. ctx bounds the background
// work of the middleware.
func (app *App) router(ctx context.Context) http.Handler {
	users := services.NewUserService(app.db, app.rm, app.config)
	store := services.NewS3Store(app.config)

	handlers := httpapi.NewHandlers(
		users,
		services.NewFolderService(app.db, app.rm, app.logger),
		services.NewDocumentService(app.db, app.rm, store, app.logger),
		services.NewImageService(store),
		app.logger,
	)

	return httpapi.NewRouter(ctx, handlers, users, app.logger, httpapi.RouterOptions{
		CORSOrigins:  app.config.CORSOrigins,
		RateLimitRPS: app.config.RateLimitRPS,
	})
}

// Run serves the API until ctx is canceled and closes the database.
func (app *App) Run(ctx context.Context) error {
	defer app.db.Close()

	app.logger.Info(ctx, "Starting app...")

	return httpapi.NewServer(app.config.EndpointAddr, app.router(ctx), app.logger).Run(ctx)
}
