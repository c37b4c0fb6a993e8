package main

import (
	"context"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/trace"

	"github.com/shipdesk/logistics/internal/config"
	"github.com/shipdesk/logistics/internal/repository"
	"github.com/shipdesk/logistics/internal/telemetry"
	"github.com/shipdesk/logistics/pkg/courier"
	"github.com/shipdesk/logistics/pkg/courier/bluedart"
	"github.com/shipdesk/logistics/pkg/courier/delhivery"
	"github.com/shipdesk/logistics/pkg/courier/ekart"
	"github.com/shipdesk/logistics/pkg/courier/shadowfax"
	"github.com/shipdesk/logistics/pkg/courier/xpressbees"
	"github.com/shipdesk/logistics/pkg/rate"
)

func loadConfig() (*config.Config, error) {
	return config.Load()
}

func initLogger(level string) (*otelzap.Logger, error) {
	return telemetry.NewLogger(level)
}

func initTracer(ctx context.Context, cfg *config.Config) (func(context.Context) error, error) {
	if !cfg.OTELEnabled {
		return func(context.Context) error { return nil }, nil
	}

	_, shutdown, err := telemetry.InitTracer(ctx, cfg.OTELEndpoint, cfg.ServiceName, cfg.Version)
	return shutdown, err
}

func initMetrics() *telemetry.Metrics {
	return telemetry.NewMetrics()
}

// initRepository picks the backing store: Postgres when DATABASE_URL is set,
// a seeded in-memory store otherwise.
func initRepository(ctx context.Context, cfg *config.Config, logger *otelzap.Logger) (rate.Repository, func(), error) {
	if cfg.DatabaseURL != "" {
		pg, err := repository.NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Using Postgres rate repository")
		return pg, pg.Close, nil
	}

	mem := repository.NewMemory()
	repository.SeedDemo(mem)
	logger.Info("Using seeded in-memory rate repository")
	return mem, func() {}, nil
}

func initRateEngine(cfg *config.Config, repo rate.Repository, metrics *telemetry.Metrics, logger *otelzap.Logger) (*rate.Engine, *rate.Store) {
	store := rate.NewStore(repo, logger)
	engine := rate.NewEngine(store, repo, rate.EngineConfig{
		FuelSurchargePct: cfg.FuelSurchargePct,
		TaxPct:           cfg.TaxPct,
		QuoteTTL:         cfg.QuoteCacheTTL,
		OnCacheEvent:     metrics.RecordCacheEvent,
	}, logger)
	return engine, store
}

func initCourierRegistry(cfg *config.Config, logger *otelzap.Logger) *courier.Registry {
	registry := courier.NewRegistry(logger, courier.DefaultCallTimeout)

	var tracer trace.Tracer
	if cfg.OTELEnabled {
		tracer = telemetry.Tracer(cfg.ServiceName)
	}

	if cfg.DelhiveryEnabled {
		registry.Register(delhivery.New(delhivery.Config{
			APIToken:   cfg.DelhiveryAPIToken,
			BaseURL:    cfg.DelhiveryBaseURL,
			PickupName: cfg.DelhiveryPickupName,
			UseMock:    cfg.DelhiveryUseMock,
		}, logger, tracer))
	}

	if cfg.BlueDartEnabled {
		registry.Register(bluedart.New(bluedart.Config{
			LicenseKey:  cfg.BlueDartLicenseKey,
			LoginID:     cfg.BlueDartLoginID,
			ProfileCode: cfg.BlueDartProfileCode,
			BaseURL:     cfg.BlueDartBaseURL,
			UseMock:     cfg.BlueDartUseMock,
		}, logger, tracer))
	}

	if cfg.XpressbeesEnabled {
		registry.Register(xpressbees.New(xpressbees.Config{
			Email:    cfg.XpressbeesEmail,
			Password: cfg.XpressbeesPassword,
			BaseURL:  cfg.XpressbeesBaseURL,
			UseMock:  cfg.XpressbeesUseMock,
		}, logger, tracer))
	}

	if cfg.EkartEnabled {
		registry.Register(ekart.New(ekart.Config{
			ClientID:     cfg.EkartClientID,
			ClientSecret: cfg.EkartClientSecret,
			BaseURL:      cfg.EkartBaseURL,
			UseMock:      cfg.EkartUseMock,
		}, logger, tracer))
	}

	if cfg.ShadowfaxEnabled {
		registry.Register(shadowfax.New(shadowfax.Config{
			AuthToken: cfg.ShadowfaxAuthToken,
			BaseURL:   cfg.ShadowfaxBaseURL,
			UseMock:   cfg.ShadowfaxUseMock,
		}, logger, tracer))
	}

	return registry
}
