package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config is the configuration of the location endpoint (cmd/locationd).
type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Mongo MongoConfig
	Redis RedisConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=dropoff"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// Persistence backends the reporter can submit to.
const (
	BackendHTTP     = "http"
	BackendMongo    = "mongo"
	BackendDynamoDB = "dynamodb"
)

// Geolocation providers the reporter can read positions from.
const (
	ProviderIPAPI = "ipapi"
	ProviderGeoIP = "geoip"
	ProviderFixed = "fixed"
	ProviderNone  = "none"
)

// ReporterConfig is the configuration of the reporter (cmd/dropoff).
type ReporterConfig struct {
	Env              string        `env:"ENV,                 default=development"`
	LogLevel         string        `env:"LOG_LEVEL,           default=info"`
	Backend          string        `env:"PERSISTENCE_BACKEND, default=http"`
	FeedbackLifetime time.Duration `env:"FEEDBACK_LIFETIME,   default=3s"`
	MetricsAddr      string        `env:"METRICS_ADDR"`

	API         APIConfig
	Geolocation GeolocationConfig
	Mongo       MongoConfig
	DynamoDB    DynamoDBConfig
}

type APIConfig struct {
	URL     string        `env:"API_URL,     default=http://localhost:8080"`
	Timeout time.Duration `env:"API_TIMEOUT, default=15s"`
}

type GeolocationConfig struct {
	Provider     string        `env:"GEOLOCATION_PROVIDER,      default=ipapi"`
	Timeout      time.Duration `env:"GEOLOCATION_TIMEOUT,       default=10s"`
	HighAccuracy bool          `env:"GEOLOCATION_HIGH_ACCURACY, default=true"`

	IPAPIURL   string  `env:"IPAPI_URL"`
	IPAccuracy float64 `env:"IPAPI_ACCURACY"`

	GeoIPPath string `env:"GEOIP_DB_PATH, default=GeoLite2-City.mmdb"`
	GeoIPAddr string `env:"GEOIP_ADDR"`

	FixedLatitude  float64 `env:"FIXED_LATITUDE"`
	FixedLongitude float64 `env:"FIXED_LONGITUDE"`
	FixedAccuracy  float64 `env:"FIXED_ACCURACY, default=10"`
}

type DynamoDBConfig struct {
	Table  string `env:"DYNAMODB_TABLE, default=locations"`
	Region string `env:"AWS_REGION"`
}

// Load reads the endpoint configuration from environment variables using
// go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}

// LoadReporter reads and validates the reporter configuration.
func LoadReporter(ctx context.Context) (*ReporterConfig, error) {
	return loadReporter(ctx, envconfig.OsLookuper())
}

func loadReporter(ctx context.Context, l envconfig.Lookuper) (*ReporterConfig, error) {
	var cfg ReporterConfig
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *ReporterConfig) validate() error {
	switch c.Backend {
	case BackendHTTP, BackendMongo, BackendDynamoDB:
	default:
		return fmt.Errorf("config: unknown PERSISTENCE_BACKEND %q", c.Backend)
	}

	switch c.Geolocation.Provider {
	case ProviderIPAPI, ProviderFixed, ProviderNone:
	case ProviderGeoIP:
		if c.Geolocation.GeoIPAddr == "" {
			return fmt.Errorf("config: GEOIP_ADDR is required for the geoip provider")
		}
	default:
		return fmt.Errorf("config: unknown GEOLOCATION_PROVIDER %q", c.Geolocation.Provider)
	}

	if t := c.Geolocation.Timeout; t < 5*time.Second || t > 10*time.Second {
		return fmt.Errorf("config: GEOLOCATION_TIMEOUT must be between 5s and 10s, got %s", t)
	}
	return nil
}
