package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/docme/internal/client/assets"
	"github.com/dmitrijs2005/docme/internal/client/cli"
	"github.com/dmitrijs2005/docme/internal/client/client"
	"github.com/dmitrijs2005/docme/internal/client/config"
	"github.com/dmitrijs2005/docme/internal/client/services"
	"github.com/dmitrijs2005/docme/internal/client/syncer"
	"github.com/dmitrijs2005/docme/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()

	logger, closer := logging.NewFileLogger(cfg.LogFile, slog.LevelInfo)
	defer closer.Close()

	repos, err := client.InitDatabase(ctx, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("error initializing database: %v", err)
	}
	defer repos.Close()

	images, err := assets.NewMaterializer(cfg.AssetsDir, cfg.RequestTimeout)
	if err != nil {
		log.Fatalf("error preparing image directory: %v", err)
	}

	gateway := client.NewHTTPGateway(cfg.ServerURL, cfg.RequestTimeout, services.NewTokenStore(repos.Metadata))

	locks := &syncer.Locks{}
	engine := syncer.NewEngine(syncer.Deps{
		Folders:   repos.Folders,
		Documents: repos.Documents,
		Metadata:  repos.Metadata,
		Gateway:   gateway,
		Assets:    images,
		Locks:     locks,
		Logger:    logger,
	}, syncer.Options{PruneMissing: cfg.PruneMissing})

	auth := services.NewAuthService(gateway, repos.Metadata)
	docs := services.NewDocumentService(repos.Folders, repos.Documents, repos.Fields, images, engine, locks)

	logger.Info(ctx, "docme client started", "server", cfg.ServerURL, "db", cfg.DatabaseDSN)
	cli.NewApp(cfg, auth, docs, repos.Metadata, logger).Run(ctx)
}
