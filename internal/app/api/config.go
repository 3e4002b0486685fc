package api

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.temporal.io/sdk/client"
)

// Config carries environment-driven settings for the API process.
type Config struct {
	Port               string
	PostgresDSN        string
	RunMigrations      bool
	TemporalAddress    string
	TemporalNamespace  string
	TemporalDisabled   bool
	JWTSecret          string
	JWTTTL             time.Duration
	AdminEmail         string
	AdminPassword      string
	AdoptRatePerMinute int
}

// LoadConfig reads environment variables, applies defaults, and validates basic constraints.
func LoadConfig() (Config, error) {
	return loadConfig(viper.New())
}

func loadConfig(v *viper.Viper) (Config, error) {
	v.SetDefault("port", "8080")
	v.SetDefault("postgres_dsn", "")
	v.SetDefault("run_migrations", false)
	v.SetDefault("temporal_address", client.DefaultHostPort)
	v.SetDefault("temporal_namespace", client.DefaultNamespace)
	v.SetDefault("temporal_disabled", false)
	v.SetDefault("jwt_secret", "")
	v.SetDefault("jwt_ttl_minutes", 1440)
	v.SetDefault("admin_email", "")
	v.SetDefault("admin_password", "")
	v.SetDefault("adopt_rate_per_minute", 10)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := Config{
		Port:               strings.TrimSpace(v.GetString("port")),
		PostgresDSN:        strings.TrimSpace(v.GetString("postgres_dsn")),
		RunMigrations:      v.GetBool("run_migrations"),
		TemporalAddress:    strings.TrimSpace(v.GetString("temporal_address")),
		TemporalNamespace:  strings.TrimSpace(v.GetString("temporal_namespace")),
		TemporalDisabled:   v.GetBool("temporal_disabled"),
		JWTSecret:          v.GetString("jwt_secret"),
		AdminEmail:         strings.TrimSpace(v.GetString("admin_email")),
		AdminPassword:      v.GetString("admin_password"),
		AdoptRatePerMinute: v.GetInt("adopt_rate_per_minute"),
	}
	ttlMinutes := v.GetInt("jwt_ttl_minutes")

	var errs []error
	if cfg.Port == "" {
		errs = append(errs, errors.New("PORT must not be empty"))
	}
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if ttlMinutes <= 0 {
		errs = append(errs, fmt.Errorf("JWT_TTL_MINUTES must be a positive integer, got %d", ttlMinutes))
	}
	if cfg.AdoptRatePerMinute <= 0 {
		errs = append(errs, fmt.Errorf("ADOPT_RATE_PER_MINUTE must be a positive integer, got %d", cfg.AdoptRatePerMinute))
	}
	if (cfg.AdminEmail == "") != (cfg.AdminPassword == "") {
		errs = append(errs, errors.New("ADMIN_EMAIL and ADMIN_PASSWORD must be set together"))
	}
	if cfg.RunMigrations && cfg.PostgresDSN == "" {
		errs = append(errs, errors.New("RUN_MIGRATIONS requires POSTGRES_DSN"))
	}
	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	cfg.JWTTTL = time.Duration(ttlMinutes) * time.Minute
	return cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}
