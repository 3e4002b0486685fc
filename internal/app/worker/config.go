package worker

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
	"go.temporal.io/sdk/client"
)

// Config carries environment-driven settings for the Temporal worker process.
type Config struct {
	PostgresDSN       string
	TemporalAddress   string
	TemporalNamespace string
}

// LoadConfig reads environment variables and applies defaults.
func LoadConfig() (Config, error) {
	return loadConfig(viper.New())
}

func loadConfig(v *viper.Viper) (Config, error) {
	v.SetDefault("postgres_dsn", "")
	v.SetDefault("temporal_address", client.DefaultHostPort)
	v.SetDefault("temporal_namespace", client.DefaultNamespace)
	v.AutomaticEnv()

	cfg := Config{
		PostgresDSN:       strings.TrimSpace(v.GetString("postgres_dsn")),
		TemporalAddress:   strings.TrimSpace(v.GetString("temporal_address")),
		TemporalNamespace: strings.TrimSpace(v.GetString("temporal_namespace")),
	}
	if cfg.PostgresDSN == "" {
		return Config{}, errors.New("POSTGRES_DSN is required: decisions must apply to the API's database")
	}
	return cfg, nil
}
