// Package config loads application configuration from file and environment
// and bootstraps the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Geo    GeoConfig    `yaml:"geo" mapstructure:"geo"`
	Metric MetricConfig `yaml:"metric" mapstructure:"metric"`
	Output OutputConfig `yaml:"output" mapstructure:"output"`
	Poster PosterConfig `yaml:"poster" mapstructure:"poster"`
	Webmap WebmapConfig `yaml:"webmap" mapstructure:"webmap"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// GeoConfig points at the polygon boundary source.
type GeoConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// MetricConfig points at the tabular metric source.
type MetricConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// OutputConfig configures artifact destinations.
type OutputConfig struct {
	Dir        string `yaml:"dir" mapstructure:"dir"`
	PosterFile string `yaml:"poster_file" mapstructure:"poster_file"`
	WebmapFile string `yaml:"webmap_file" mapstructure:"webmap_file"`
}

// PosterConfig configures the static raster artifact.
type PosterConfig struct {
	Width          int     `yaml:"width" mapstructure:"width"`
	Height         int     `yaml:"height" mapstructure:"height"`
	BasemapEnabled bool    `yaml:"basemap_enabled" mapstructure:"basemap_enabled"`
	BasemapURL     string  `yaml:"basemap_url" mapstructure:"basemap_url"`
	BasemapOpacity float64 `yaml:"basemap_opacity" mapstructure:"basemap_opacity"`
	TileTimeoutSec int     `yaml:"tile_timeout_secs" mapstructure:"tile_timeout_secs"`
	TilesPerSecond float64 `yaml:"tiles_per_second" mapstructure:"tiles_per_second"`
}

// WebmapConfig configures the interactive artifact.
type WebmapConfig struct {
	TileURL         string `yaml:"tile_url" mapstructure:"tile_url"`
	TileAttribution string `yaml:"tile_attribution" mapstructure:"tile_attribution"`
	Zoom            int    `yaml:"zoom" mapstructure:"zoom"`
}

// ServerConfig configures the artifact/tile server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("HEALTHMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("geo.path", "data/chicago-community-areas.geojson")
	v.SetDefault("metric.path", "data/chicago-health-metrics.csv")
	v.SetDefault("output.dir", "output")
	v.SetDefault("output.poster_file", "chicago_health_poster.png")
	v.SetDefault("output.webmap_file", "chicago_health_map.html")
	v.SetDefault("poster.width", 2200)
	v.SetDefault("poster.height", 2800)
	v.SetDefault("poster.basemap_enabled", true)
	v.SetDefault("poster.basemap_url", "https://basemaps.cartocdn.com/light_all")
	v.SetDefault("poster.basemap_opacity", 0.4)
	v.SetDefault("poster.tile_timeout_secs", 30)
	v.SetDefault("poster.tiles_per_second", 8)
	v.SetDefault("webmap.tile_url", "https://{s}.basemaps.cartocdn.com/light_all/{z}/{x}/{y}.png")
	v.SetDefault("webmap.tile_attribution", "&copy; OpenStreetMap contributors &copy; CARTO")
	v.SetDefault("webmap.zoom", 10)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
