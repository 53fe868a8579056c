package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig               `mapstructure:"app"`
	Camunda       CamundaConfig           `mapstructure:"camunda"`
	Database      DatabaseConfig          `mapstructure:"database"`
	Workers       map[string]WorkerConfig `mapstructure:"workers"`
	Pricing       PricingConfig           `mapstructure:"pricing"`
	APIs          APIsConfig              `mapstructure:"apis"`
	Notifications NotificationConfig      `mapstructure:"notifications"`
	Logging       LoggingConfig           `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string.
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// --- Pricing Configuration ---

// PricingConfig drives the regional pricing cache gateway and the market
// multiplier derivation.
type PricingConfig struct {
	Onebuild OnebuildConfig `mapstructure:"onebuild"`

	// CacheTTLHours bounds staleness of cached regional pricing entries.
	CacheTTLHours int `mapstructure:"cache_ttl_hours"`

	// FetchTimeoutMs is the hard ceiling on a single live provider fetch.
	FetchTimeoutMs int `mapstructure:"fetch_timeout_ms"`

	// BaselineHourlyRates maps tradeId to the baseline labor rate used when
	// deriving the market multiplier. Trades absent from the map fall back
	// to DefaultBaselineRate.
	BaselineHourlyRates map[string]float64 `mapstructure:"baseline_hourly_rates"`
	DefaultBaselineRate float64            `mapstructure:"default_baseline_rate"`

	// MultiplierFloor/Ceiling clamp the derived market multiplier.
	MultiplierFloor   float64 `mapstructure:"multiplier_floor"`
	MultiplierCeiling float64 `mapstructure:"multiplier_ceiling"`

	// PricebookVersion is reported in draft provenance.
	PricebookVersion string `mapstructure:"pricebook_version"`
}

type OnebuildConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
}

// --- External API Configuration ---

type APIsConfig struct {
	GenAI     GenAIConfig     `mapstructure:"genai"`
	Pricebook PricebookConfig `mapstructure:"pricebook"`
}

type GenAIConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	APIKey    string `mapstructure:"api_key"`
	TimeoutMs int    `mapstructure:"timeout_ms"`
}

type PricebookConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	TimeoutMs int    `mapstructure:"timeout_ms"`
}

// --- Notifications ---

type NotificationConfig struct {
	AWSRegion    string `mapstructure:"aws_region"`
	SenderEmail  string `mapstructure:"sender_email"`
	EmailEnabled bool   `mapstructure:"email_enabled"`
	SMSEnabled   bool   `mapstructure:"sms_enabled"`
}

// --- Logging ---

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
}
