// backend/src/cmd/app.go
package cmd

import (
	"database/sql"
	"fmt"

	"github.com/patrickmn/go-cache"
	"github.com/username/expensetracker/backend/src/config"
	"github.com/username/expensetracker/backend/src/database"
	"github.com/username/expensetracker/backend/src/events"
	"github.com/username/expensetracker/backend/src/importer"
	"github.com/username/expensetracker/backend/src/logger"
	"github.com/username/expensetracker/backend/src/repository"
	"github.com/username/expensetracker/backend/src/services"
)

// app holds the long-lived components shared by the API and the CLI commands.
type app struct {
	cfg          *config.AppConfig
	db           *sql.DB
	publisher    events.Publisher
	stats        services.StatsService
	purchases    services.PurchaseService
	importExport services.ImportExportService
}

func newApp(cfg *config.AppConfig) (*app, error) {
	logger.L.Info("Initializing database...", "path", cfg.DatabasePath)
	db, err := database.OpenAndMigrate(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	mappings := importer.DefaultFieldMappings()
	if cfg.FieldMappingPath != "" {
		if mappings, err = importer.LoadFieldMappings(cfg.FieldMappingPath); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to load field mappings: %w", err)
		}
		logger.L.Info("Field mappings loaded", "path", cfg.FieldMappingPath)
	}

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.AMQPURL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPRoutingPrefix)
		if err != nil {
			logger.L.Warn("AMQP unavailable, events will be dropped", "error", err)
		} else {
			publisher = amqpPublisher
		}
	}

	reportCache := cache.New(cfg.StatsCacheTTL, services.CacheCleanupInterval)
	repo := repository.NewPurchaseRepository(db)
	stats := services.NewStatsService(repo, reportCache)

	return &app{
		cfg:          cfg,
		db:           db,
		publisher:    publisher,
		stats:        stats,
		purchases:    services.NewPurchaseService(repo, stats),
		importExport: services.NewImportExportService(repo, importer.New(mappings, nil), stats, publisher),
	}, nil
}

func (a *app) Close() {
	if err := a.publisher.Close(); err != nil {
		logger.L.Warn("Error closing event publisher", "error", err)
	}
	if err := a.db.Close(); err != nil {
		logger.L.Warn("Error closing database", "error", err)
	}
}
