package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"go.opentelemetry.io/otel/attribute"
)

// Config holds all configuration for the service.
type Config struct {
	// Server
	Port     int    `envconfig:"PORT" default:"8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Persistence. Empty DATABASE_URL runs on the seeded in-memory store.
	DatabaseURL string `envconfig:"DATABASE_URL"`

	// Pricing
	FuelSurchargePct float64       `envconfig:"FUEL_SURCHARGE_PCT" default:"10"`
	TaxPct           float64       `envconfig:"TAX_PCT" default:"18"`
	QuoteCacheTTL    time.Duration `envconfig:"QUOTE_CACHE_TTL" default:"5m"`

	// Delhivery
	DelhiveryAPIToken   string `envconfig:"DELHIVERY_API_TOKEN"`
	DelhiveryBaseURL    string `envconfig:"DELHIVERY_BASE_URL" default:"https://track.delhivery.com"`
	DelhiveryPickupName string `envconfig:"DELHIVERY_PICKUP_NAME"`
	DelhiveryEnabled    bool   `envconfig:"DELHIVERY_ENABLED" default:"true"`
	DelhiveryUseMock    bool   `envconfig:"DELHIVERY_USE_MOCK" default:"false"`

	// Blue Dart
	BlueDartLicenseKey  string `envconfig:"BLUEDART_LICENSE_KEY"`
	BlueDartLoginID     string `envconfig:"BLUEDART_LOGIN_ID"`
	BlueDartProfileCode string `envconfig:"BLUEDART_PROFILE_CODE"`
	BlueDartBaseURL     string `envconfig:"BLUEDART_BASE_URL" default:"https://apigateway.bluedart.com"`
	BlueDartEnabled     bool   `envconfig:"BLUEDART_ENABLED" default:"true"`
	BlueDartUseMock     bool   `envconfig:"BLUEDART_USE_MOCK" default:"false"`

	// Xpressbees
	XpressbeesEmail    string `envconfig:"XPRESSBEES_EMAIL"`
	XpressbeesPassword string `envconfig:"XPRESSBEES_PASSWORD"`
	XpressbeesBaseURL  string `envconfig:"XPRESSBEES_BASE_URL" default:"https://shipment.xpressbees.com/api"`
	XpressbeesEnabled  bool   `envconfig:"XPRESSBEES_ENABLED" default:"true"`
	XpressbeesUseMock  bool   `envconfig:"XPRESSBEES_USE_MOCK" default:"false"`

	// Ekart
	EkartClientID     string `envconfig:"EKART_CLIENT_ID"`
	EkartClientSecret string `envconfig:"EKART_CLIENT_SECRET"`
	EkartBaseURL      string `envconfig:"EKART_BASE_URL" default:"https://api.ekartlogistics.com"`
	EkartEnabled      bool   `envconfig:"EKART_ENABLED" default:"true"`
	EkartUseMock      bool   `envconfig:"EKART_USE_MOCK" default:"false"`

	// Shadowfax
	ShadowfaxAuthToken string `envconfig:"SHADOWFAX_AUTH_TOKEN"`
	ShadowfaxBaseURL   string `envconfig:"SHADOWFAX_BASE_URL" default:"https://api.shadowfax.in"`
	ShadowfaxEnabled   bool   `envconfig:"SHADOWFAX_ENABLED" default:"true"`
	ShadowfaxUseMock   bool   `envconfig:"SHADOWFAX_USE_MOCK" default:"false"`

	// Telemetry
	OTELEnabled  bool   `envconfig:"OTEL_ENABLED" default:"true"`
	OTELEndpoint string `envconfig:"OTEL_ENDPOINT" default:"http://jaeger-collector.observability.svc.cluster.local:4318"`
	ServiceName  string `envconfig:"SERVICE_NAME" default:"shipdesk-logistics"`
	Version      string `envconfig:"SERVICE_VERSION" default:"0.0.1"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return &cfg, nil
}

// Attributes returns OpenTelemetry attributes for this configuration.
func (c *Config) Attributes() []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("service.name", c.ServiceName),
		attribute.String("service.version", c.Version),
		attribute.Bool("delhivery.enabled", c.DelhiveryEnabled),
		attribute.Bool("bluedart.enabled", c.BlueDartEnabled),
		attribute.Bool("xpressbees.enabled", c.XpressbeesEnabled),
		attribute.Bool("ekart.enabled", c.EkartEnabled),
		attribute.Bool("shadowfax.enabled", c.ShadowfaxEnabled),
	}
}
