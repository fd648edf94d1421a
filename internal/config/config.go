package config

import (
	"log/slog"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port           int     `envconfig:"PORT" default:"8080"`
	DataDir        string  `envconfig:"DATA_DIR" default:"./data/projects"`
	DatabaseURL    string  `envconfig:"DATABASE_URL" default:""`
	SessionSecret  string  `envconfig:"SESSION_SECRET" default:"dev-secret-change-in-production"`
	GridSize       float64 `envconfig:"GRID_SIZE" default:"50"`
	SnapToGrid     bool    `envconfig:"SNAP_TO_GRID" default:"false"`
	ExportScale    float64 `envconfig:"EXPORT_SCALE" default:"2"`
	AllowedOrigins string  `envconfig:"ALLOWED_ORIGINS" default:"localhost:5173,localhost:3000"`
	LogLevel       string  `envconfig:"LOG_LEVEL" default:"info"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Origins splits AllowedOrigins into websocket origin patterns.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
