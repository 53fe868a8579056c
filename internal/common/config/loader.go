package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	// Base config
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like ONEBUILD_API_KEY
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// Environment-specific overlay, e.g. config.production.yaml
	envConfigFile := fmt.Sprintf("config.%s", env)
	viper.SetConfigName(envConfigFile)
	_ = viper.MergeInConfig() // ignore error if not found

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile tries .env in the working directory and walks up toward the
// module root so tests under internal/... and test/e2e pick it up too.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars resolves ${VAR} placeholders in string config values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		val := v.Get(key)

		if strVal, ok := val.(string); ok {
			if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
				expanded := os.ExpandEnv(strVal)
				if expanded != strVal && expanded != "" {
					v.Set(key, expanded)
				}
			}
		}
	}
}

// overrideEmptyConfig pulls secrets straight from the environment when the
// config files left them empty.
func overrideEmptyConfig(cfg *Config) {
	if cfg.Pricing.Onebuild.APIKey == "" {
		if val := os.Getenv("ONEBUILD_API_KEY"); val != "" {
			cfg.Pricing.Onebuild.APIKey = val
		}
	}
	if cfg.Pricing.Onebuild.BaseURL == "" {
		if val := os.Getenv("ONEBUILD_BASE_URL"); val != "" {
			cfg.Pricing.Onebuild.BaseURL = val
		}
	}
	if cfg.APIs.GenAI.APIKey == "" {
		if val := os.Getenv("GENAI_API_KEY"); val != "" {
			cfg.APIs.GenAI.APIKey = val
		}
	}
	if cfg.APIs.GenAI.BaseURL == "" {
		if val := os.Getenv("GENAI_BASE_URL"); val != "" {
			cfg.APIs.GenAI.BaseURL = val
		}
	}
	if cfg.APIs.Pricebook.BaseURL == "" {
		if val := os.Getenv("PRICEBOOK_BASE_URL"); val != "" {
			cfg.APIs.Pricebook.BaseURL = val
		}
	}
	if cfg.Database.Postgres.Password == "" {
		if val := os.Getenv("POSTGRES_PASSWORD"); val != "" {
			cfg.Database.Postgres.Password = val
		}
	}
	if cfg.Database.Redis.Password == "" {
		if val := os.Getenv("REDIS_PASSWORD"); val != "" {
			cfg.Database.Redis.Password = val
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "proposal-workers"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}
	if cfg.Camunda.BrokerAddress == "" {
		cfg.Camunda.BrokerAddress = "localhost:26500"
	}
	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 30000
	}

	if cfg.Database.Postgres.Host == "" {
		cfg.Database.Postgres.Host = "localhost"
	}
	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 20
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}
	if cfg.Database.Redis.Address == "" {
		cfg.Database.Redis.Address = "localhost:6379"
	}

	if cfg.Pricing.CacheTTLHours == 0 {
		cfg.Pricing.CacheTTLHours = 168 // one week
	}
	if cfg.Pricing.FetchTimeoutMs == 0 {
		cfg.Pricing.FetchTimeoutMs = 1500
	}
	if cfg.Pricing.DefaultBaselineRate == 0 {
		cfg.Pricing.DefaultBaselineRate = 75.0
	}
	if len(cfg.Pricing.BaselineHourlyRates) == 0 {
		cfg.Pricing.BaselineHourlyRates = map[string]float64{
			"plumbing":   85.0,
			"electrical": 90.0,
			"hvac":       95.0,
			"roofing":    70.0,
			"painting":   55.0,
			"carpentry":  65.0,
			"general":    75.0,
		}
	}
	if cfg.Pricing.MultiplierFloor == 0 {
		cfg.Pricing.MultiplierFloor = 0.90
	}
	if cfg.Pricing.MultiplierCeiling == 0 {
		cfg.Pricing.MultiplierCeiling = 1.15
	}
	if cfg.Pricing.PricebookVersion == "" {
		cfg.Pricing.PricebookVersion = "v2"
	}

	if cfg.APIs.GenAI.TimeoutMs == 0 {
		cfg.APIs.GenAI.TimeoutMs = 30000
	}
	if cfg.APIs.Pricebook.TimeoutMs == 0 {
		cfg.APIs.Pricebook.TimeoutMs = 5000
	}

	if cfg.Notifications.AWSRegion == "" {
		cfg.Notifications.AWSRegion = "us-east-1"
	}
	if cfg.Notifications.SenderEmail == "" {
		cfg.Notifications.SenderEmail = "proposals@example.com"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.Workers == nil {
		cfg.Workers = map[string]WorkerConfig{}
	}
	for _, taskType := range []string{"proposal-generate-draft", "proposal-notify-draft-ready"} {
		wc, ok := cfg.Workers[taskType]
		if !ok {
			wc = WorkerConfig{Enabled: true}
		}
		if wc.MaxJobsActive == 0 {
			wc.MaxJobsActive = cfg.Camunda.MaxJobsActive
		}
		if wc.Timeout == 0 {
			wc.Timeout = cfg.Camunda.Timeout
		}
		cfg.Workers[taskType] = wc
	}
}

func validateConfig(cfg *Config) error {
	if cfg.Pricing.MultiplierFloor > cfg.Pricing.MultiplierCeiling {
		return fmt.Errorf("pricing multiplier floor %.2f above ceiling %.2f",
			cfg.Pricing.MultiplierFloor, cfg.Pricing.MultiplierCeiling)
	}
	if cfg.Pricing.CacheTTLHours < 0 {
		return fmt.Errorf("pricing cache ttl must not be negative")
	}
	return nil
}
