package config

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"
)

var configValue atomic.Value

func GetConfig() *Config {
	return configValue.Load().(*Config)
}

func SetConfig(cfg *Config) {
	configValue.Store(cfg)
}

type Config struct {
	Version     string                `mapstructure:"version"`
	Environment string                `mapstructure:"environment"`
	Server      ServerConfig          `mapstructure:"server"`
	KMA         KMAConfig             `mapstructure:"kma"`
	Cities      map[string]CityConfig `mapstructure:"cities"`
	Logging     LoggingConfig         `mapstructure:"logging"`
	Telemetry   TelemetryConfig       `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port         int    `mapstructure:"port"`
	Host         string `mapstructure:"host"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
	IdleTimeout  int    `mapstructure:"idle_timeout"`
}

// KMAConfig configures the KMA village forecast API client.
type KMAConfig struct {
	BaseURL    string       `mapstructure:"base_url"`
	ServiceKey string       `mapstructure:"service_key"`
	Timeout    int          `mapstructure:"timeout"`
	Retries    int          `mapstructure:"retries"`
	CacheTTL   int          `mapstructure:"cache_ttl"`
	CacheSize  int          `mapstructure:"cache_size"`
	Rows       RowsConfig   `mapstructure:"rows"`
	Warmup     WarmupConfig `mapstructure:"warmup"`
}

// RowsConfig is the numOfRows requested per product.
type RowsConfig struct {
	Nowcast    int `mapstructure:"nowcast"`
	UltraShort int `mapstructure:"ultra_short"`
	ShortTerm  int `mapstructure:"short_term"`
}

type WarmupConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Workers int  `mapstructure:"workers"`
}

// CityConfig adds or overrides a city in the built-in grid table.
type CityConfig struct {
	NX int `mapstructure:"nx"`
	NY int `mapstructure:"ny"`
}

type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type TelemetryConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Endpoint    string `mapstructure:"endpoint"`
	ServiceName string `mapstructure:"service_name"`
}

func (c KMAConfig) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

func (c KMAConfig) CacheTTLDuration() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

func NewDefaultConfig() *Config {
	return &Config{
		Version:     "1.0.0",
		Environment: "development",
		Server: ServerConfig{
			Port:         8080,
			Host:         "0.0.0.0",
			ReadTimeout:  30,
			WriteTimeout: 30,
			IdleTimeout:  60,
		},
		KMA: KMAConfig{
			BaseURL:   "http://apis.data.go.kr/1360000/VilageFcstInfoService_2.0",
			Timeout:   10,
			Retries:   2,
			CacheTTL:  600,
			CacheSize: 512,
			Rows: RowsConfig{
				Nowcast:    10,
				UltraShort: 60,
				ShortTerm:  300,
			},
			Warmup: WarmupConfig{
				Enabled: false,
				Workers: 3,
			},
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			OutputPath: "",
		},
		Telemetry: TelemetryConfig{
			Enabled:     false,
			Endpoint:    "tempo:4317",
			ServiceName: "kma-weather",
		},
	}
}

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true,
}

func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.KMA.BaseURL == "" {
		errs = append(errs, errors.New("kma.base_url is required"))
	}
	if c.KMA.Retries < 0 {
		errs = append(errs, fmt.Errorf("kma.retries must not be negative, got %d", c.KMA.Retries))
	}
	if !validLogLevels[c.Logging.Level] {
		errs = append(errs, fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level))
	}

	return errors.Join(errs...)
}
