package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sangkips/invoicely-api/internal/config"
	"github.com/sangkips/invoicely-api/internal/infrastructure/database"
	"github.com/sangkips/invoicely-api/pkg/logger"
	"github.com/sangkips/invoicely-api/pkg/metrics"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// app bundles what every command needs
type app struct {
	cfg      *config.Config
	log      *zap.Logger
	db       *gorm.DB
	registry *prometheus.Registry
	metrics  *metrics.Recorder
}

func newApp() (*app, error) {
	cfg := config.Load()

	log, err := logger.New(logger.Config{
		ServiceName: cfg.App.Name,
		Environment: cfg.App.Env,
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
	})
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	db, err := database.NewDB(&cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &app{
		cfg:      cfg,
		log:      log,
		db:       db,
		registry: registry,
		metrics:  metrics.New(registry),
	}, nil
}

// migrate brings the schema up to date and seeds roles and the admin account
func (a *app) migrate() error {
	if err := database.AutoMigrate(a.db, a.log); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return database.SeedDefaultData(a.db, database.AdminSeed{
		Email:    a.cfg.Admin.Email,
		Password: a.cfg.Admin.Password,
		Name:     a.cfg.Admin.Name,
	}, a.log)
}

func (a *app) close() {
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = a.log.Sync()
}
