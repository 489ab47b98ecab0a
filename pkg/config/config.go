package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Log        LogConfig        `koanf:"log"`
	Telemetry  TelemetryConfig  `koanf:"telemetry"`
	Host       HostConfig       `koanf:"host"`
	Restaurant RestaurantConfig `koanf:"restaurant"`
	Rider      RiderConfig      `koanf:"rider"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // json, text
}

type TelemetryConfig struct {
	Enabled      bool   `koanf:"enabled"`
	Exporter     string `koanf:"exporter"` // stdout, otlp
	OTLPEndpoint string `koanf:"otlp_endpoint"`
	SampleRate   float64 `koanf:"sample_rate"`
}

// HostConfig configures the orchestrator: where it listens and where the
// two downstream agents publish their cards.
type HostConfig struct {
	Listen        string `koanf:"listen"`
	RestaurantURL string `koanf:"restaurant_url"`
	RiderURL      string `koanf:"rider_url"`
	CallTimeout   int    `koanf:"call_timeout_seconds"`
}

type RestaurantConfig struct {
	Listen string `koanf:"listen"`
	DBPath string `koanf:"db_path"`
}

type RiderConfig struct {
	Listen         string `koanf:"listen"`
	MapsAPIKey     string `koanf:"maps_api_key"`
	RoutesEndpoint string `koanf:"routes_endpoint"`
}

// Global k instance
var k = koanf.New(".")

func Load(path string) (*Config, error) {
	// Defaults
	k.Set("log.level", "info")
	k.Set("log.format", "text")

	k.Set("telemetry.enabled", false)
	k.Set("telemetry.exporter", "stdout")
	k.Set("telemetry.otlp_endpoint", "localhost:4317")
	k.Set("telemetry.sample_rate", 1.0)

	k.Set("host.listen", ":8080")
	k.Set("host.restaurant_url", "http://localhost:8081")
	k.Set("host.rider_url", "http://localhost:8082")
	k.Set("host.call_timeout_seconds", 30)

	k.Set("restaurant.listen", ":8081")
	k.Set("restaurant.db_path", "mealmesh.db")

	k.Set("rider.listen", ":8082")
	k.Set("rider.routes_endpoint", "https://routes.googleapis.com/directions/v2:computeRoutes")

	// 1. Load from file
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// 2. Load from ENV (MEALMESH_HOST_LISTEN -> host.listen)
	if err := k.Load(env.Provider("MEALMESH_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, "MEALMESH_")), "_", ".", -1)
	}), nil); err != nil {
		return nil, err
	}

	// The maps key follows the Google SDK convention rather than the
	// MEALMESH_ prefix.
	if key := os.Getenv("GOOGLE_MAPS_API_KEY"); key != "" {
		k.Set("rider.maps_api_key", key)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
