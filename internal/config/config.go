package config

import "github.com/Skotchmaster/storefront/pkg/config"

type ServiceConfig struct {
	config.Config
}

// Load reads the environment and exits when a required setting is missing.
// Kafka, Redis and Elasticsearch stay optional; an empty address disables them.
func Load() ServiceConfig {
	cfg := config.Load()

	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustNonEmptyBytes(cfg.JWTAccessSecret, "JWT_SECRET")

	return ServiceConfig{Config: cfg}
}

func (c ServiceConfig) EventsEnabled() bool { return len(c.KafkaBrokers) > 0 }

func (c ServiceConfig) CacheEnabled() bool { return c.RedisAddr != "" }

func (c ServiceConfig) SearchEnabled() bool { return len(c.ESAddresses) > 0 }
