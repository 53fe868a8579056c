package generatedraft

import "time"

type Config struct {
	Timeout          time.Duration
	PricebookVersion string
}

func LoadConfig() *Config {
	return &Config{
		Timeout:          30 * time.Second,
		PricebookVersion: "v2",
	}
}
