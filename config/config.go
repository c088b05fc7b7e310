package config

import (
	"fmt"
	"time"

	env "github.com/caarlos0/env/v11"
)

type Config struct {
	Port          int    `env:"PORT" envDefault:"8080"`
	AWSRegion     string `env:"AWS_REGION" envDefault:"us-east-1"`
	S3BucketName  string `env:"S3_BUCKET_NAME,required"`
	JWTSecret     string `env:"JWT_SECRET,required"`
	AdminPassword string `env:"ADMIN_PASSWORD,required"`

	// Matching engine knobs
	MatchTTLHours    int `env:"MATCH_TTL_HOURS" envDefault:"36"`
	StoreTimeoutSecs int `env:"STORE_TIMEOUT_SECS" envDefault:"10"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}

// MatchTTL is the time-to-live of an active match.
func (c *Config) MatchTTL() time.Duration {
	return time.Duration(c.MatchTTLHours) * time.Hour
}

// StoreTimeout bounds a single document-store call during a matching pass.
func (c *Config) StoreTimeout() time.Duration {
	return time.Duration(c.StoreTimeoutSecs) * time.Second
}
