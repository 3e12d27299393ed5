package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config is everything the server reads from the environment (or .env).
type Config struct {
	DBDSN             string
	Port              string
	BaseURL           string
	JWTSecret         string
	AllowRegistration bool
	CORSOrigins       []string
	GeminiAPIKey      string
	OfferCodePrefix   string
	OfferCodeStrategy string // uuid | snowflake
	SnowflakeNode     int64
}

// Load reads .env if present, then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: No .env file found")
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		DBDSN:             os.Getenv("DB_DSN"),
		Port:              getenv("PORT", "8080"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		AllowRegistration: os.Getenv("ALLOW_REGISTRATION") == "true",
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		OfferCodePrefix:   getenv("OFFER_CODE_PREFIX", "OFF"),
		OfferCodeStrategy: strings.ToLower(getenv("OFFER_CODE_STRATEGY", "uuid")),
	}
	cfg.BaseURL = getenv("BASE_URL", "http://localhost:"+cfg.Port)

	for _, origin := range strings.Split(getenv("CORS_ORIGINS", "http://localhost:5173"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
		}
	}

	node, err := strconv.ParseInt(getenv("SNOWFLAKE_NODE", "1"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("SNOWFLAKE_NODE: %w", err)
	}
	cfg.SnowflakeNode = node

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.DBDSN == "" {
		errs = append(errs, errors.New("DB_DSN is required"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.OfferCodeStrategy != "uuid" && c.OfferCodeStrategy != "snowflake" {
		errs = append(errs, fmt.Errorf("OFFER_CODE_STRATEGY %q: want uuid or snowflake", c.OfferCodeStrategy))
	}
	return errors.Join(errs...)
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
