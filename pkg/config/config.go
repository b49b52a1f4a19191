package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	ServiceName string
	LogLevel    string

	ServerPort  int
	CORSOrigins []string

	DatabaseURL string

	JWTAccessSecret []byte

	KafkaBrokers []string

	RedisAddr string

	ESAddresses []string
	ESUsername  string
	ESPassword  string
	ESIndex     string

	AdminEmail    string
	AdminPassword string
	AdminName     string
}

func Load() Config {
	return Config{
		ServiceName: EnvDefault("SERVICE_NAME", "storefront"),
		LogLevel:    os.Getenv("LOG_LEVEL"),

		ServerPort:  EnvIntDefault("SERVER_PORT", 5001),
		CORSOrigins: CSV(os.Getenv("CORS_ORIGINS")),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		JWTAccessSecret: []byte(os.Getenv("JWT_SECRET")),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),

		RedisAddr: os.Getenv("REDIS_ADDR"),

		ESAddresses: CSV(os.Getenv("ES_ADDRESSES")),
		ESUsername:  os.Getenv("ES_USERNAME"),
		ESPassword:  os.Getenv("ES_PASSWORD"),
		ESIndex:     EnvDefault("ES_INDEX", "products"),

		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		AdminName:     EnvDefault("ADMIN_NAME", "Admin"),
	}
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
