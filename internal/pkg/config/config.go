package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/samirrijal/farmmap/internal/core/domain"
	"github.com/samirrijal/farmmap/internal/pkg/logging"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Temporal  TemporalConfig  `mapstructure:"temporal"`
	Map       MapConfig       `mapstructure:"map"`
	FarmAPI   FarmAPIConfig   `mapstructure:"farmapi"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxConns int32  `mapstructure:"max_conns"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

type ValkeyConfig struct {
	Addr string `mapstructure:"addr"`
	// Disabled serves the cache from process memory instead.
	Disabled bool `mapstructure:"disabled"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

type TemporalConfig struct {
	HostPort  string `mapstructure:"host_port"`
	Namespace string `mapstructure:"namespace"`
	TaskQueue string `mapstructure:"task_queue"`
}

// MapConfig tunes zoom gating, debouncing, clustering and plant fetches.
type MapConfig struct {
	Zoom            domain.ZoomThresholds `mapstructure:"zoom"`
	VisibleDebounce time.Duration         `mapstructure:"visible_debounce"`
	FetchDebounce   time.Duration         `mapstructure:"fetch_debounce"`
	ClusterRadiusPx float64               `mapstructure:"cluster_radius_px"`
	ClusterMaxZoom  float64               `mapstructure:"cluster_max_zoom"`
	PlantLimit      int                   `mapstructure:"plant_limit"`
}

// FarmAPIConfig points the remote plant query client at a farm API.
type FarmAPIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
	Token   string        `mapstructure:"token"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()
	setDefaults(v, service)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: FARMMAP_DATABASE_HOST → database.host
	v.SetEnvPrefix("FARMMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper, service string) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "farm")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "farmmap")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 50)
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("valkey.disabled", false)
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", true)
	v.SetDefault("temporal.host_port", "localhost:7233")
	v.SetDefault("temporal.namespace", "default")
	v.SetDefault("temporal.task_queue", "containment-audit")
	v.SetDefault("map.zoom.show_plots", domain.DefaultZoomThresholds.ShowPlots)
	v.SetDefault("map.zoom.show_plants", domain.DefaultZoomThresholds.ShowPlants)
	v.SetDefault("map.visible_debounce", "250ms")
	v.SetDefault("map.fetch_debounce", "500ms")
	v.SetDefault("map.cluster_radius_px", 40)
	v.SetDefault("map.cluster_max_zoom", 16)
	v.SetDefault("map.plant_limit", 5000)
	v.SetDefault("farmapi.base_url", "http://localhost:8080")
	v.SetDefault("farmapi.timeout", "10s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Database.Host == "" {
		errs = append(errs, "database.host is required")
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", c.Database.Port))
	}
	if c.Database.User == "" {
		errs = append(errs, "database.user is required")
	}
	if c.Database.DBName == "" {
		errs = append(errs, "database.dbname is required")
	}
	if c.Database.MaxConns <= 0 {
		errs = append(errs, "database.max_conns must be positive")
	}
	if c.NATS.URL == "" {
		errs = append(errs, "nats.url is required")
	}
	if c.Valkey.Addr == "" && !c.Valkey.Disabled {
		errs = append(errs, "valkey.addr is required unless valkey.disabled is set")
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if err := c.Map.Zoom.Validate(); err != nil {
		errs = append(errs, "map.zoom: "+err.Error())
	}
	if c.Map.VisibleDebounce <= 0 || c.Map.FetchDebounce <= 0 {
		errs = append(errs, "map debounce windows must be positive")
	}
	if c.Map.ClusterRadiusPx <= 0 {
		errs = append(errs, "map.cluster_radius_px must be positive")
	}
	if c.Map.PlantLimit <= 0 {
		errs = append(errs, "map.plant_limit must be positive")
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, "log.level: "+err.Error())
	}
	if c.Temporal.TaskQueue == "" {
		errs = append(errs, "temporal.task_queue is required")
	}
	if c.FarmAPI.Timeout <= 0 {
		errs = append(errs, "farmapi.timeout must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
