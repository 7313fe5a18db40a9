package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the chaincode process and tools
type Config struct {
	// Chaincode configuration
	Chaincode ChaincodeConfig `mapstructure:"chaincode"`

	// Monitoring configuration
	Monitoring MonitoringConfig `mapstructure:"monitoring"`

	// Replay tool configuration
	Replay ReplayConfig `mapstructure:"replay"`

	// Logging configuration
	LogLevel string `mapstructure:"log_level"`
}

// ChaincodeConfig holds chaincode identity and server configuration. An
// empty ServerAddress means the peer launches the chaincode.
type ChaincodeConfig struct {
	ID            string    `mapstructure:"id"`
	ServerAddress string    `mapstructure:"server_address"`
	TLS           TLSConfig `mapstructure:"tls"`
}

// TLSConfig holds chaincode-as-a-service TLS material
type TLSConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	KeyFile      string `mapstructure:"key_file"`
	CertFile     string `mapstructure:"cert_file"`
	ClientCAFile string `mapstructure:"client_ca_file"`
}

// MonitoringConfig holds monitoring configuration
type MonitoringConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Address     string `mapstructure:"address"`
	MetricsPath string `mapstructure:"metrics_path"`
	HealthPath  string `mapstructure:"health_path"`

	Tracing TracingConfig `mapstructure:"tracing"`
}

// TracingConfig holds OTLP trace export configuration
type TracingConfig struct {
	Enabled    bool    `mapstructure:"enabled"`
	Endpoint   string  `mapstructure:"endpoint"`
	SampleRate float64 `mapstructure:"sample_rate"`
}

// ReplayConfig holds local replay configuration
type ReplayConfig struct {
	DBPath string `mapstructure:"db_path"`
	Input  string `mapstructure:"input"`
	Output string `mapstructure:"output"`
}

// IsServerMode reports whether the chaincode runs as an external service
func (c ChaincodeConfig) IsServerMode() bool {
	return c.ServerAddress != ""
}

// Load loads configuration from the default viper instance
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom loads configuration using v, so callers can bind flags first
func LoadFrom(v *viper.Viper) (*Config, error) {
	// SetConfigName clears a file the caller set explicitly
	if v.ConfigFileUsed() == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/healthcare-ledger")
	}

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	overrideWithEnv(&config)

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("chaincode.id", "")
	v.SetDefault("chaincode.server_address", "")
	v.SetDefault("chaincode.tls.enabled", false)
	v.SetDefault("chaincode.tls.key_file", "")
	v.SetDefault("chaincode.tls.cert_file", "")
	v.SetDefault("chaincode.tls.client_ca_file", "")

	v.SetDefault("monitoring.enabled", false)
	v.SetDefault("monitoring.address", "0.0.0.0:9443")
	v.SetDefault("monitoring.metrics_path", "/metrics")
	v.SetDefault("monitoring.health_path", "/health")
	v.SetDefault("monitoring.tracing.enabled", false)
	v.SetDefault("monitoring.tracing.endpoint", "localhost:4318")
	v.SetDefault("monitoring.tracing.sample_rate", 1.0)

	v.SetDefault("replay.db_path", "./data/world-state")
	v.SetDefault("replay.input", "-")
	v.SetDefault("replay.output", "-")

	v.SetDefault("log_level", "info")
}

// overrideWithEnv applies the environment names Fabric uses for external
// chaincode
func overrideWithEnv(config *Config) {
	if id := os.Getenv("CHAINCODE_ID"); id != "" {
		config.Chaincode.ID = id
	}

	if addr := os.Getenv("CHAINCODE_SERVER_ADDRESS"); addr != "" {
		config.Chaincode.ServerAddress = addr
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		config.LogLevel = logLevel
	}
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Chaincode.IsServerMode() && config.Chaincode.ID == "" {
		return fmt.Errorf("chaincode ID is required when a server address is set")
	}

	if tls := config.Chaincode.TLS; tls.Enabled {
		if tls.KeyFile == "" || tls.CertFile == "" {
			return fmt.Errorf("TLS key and certificate files are required when TLS is enabled")
		}
	}

	if config.Monitoring.Enabled {
		if config.Monitoring.Address == "" {
			return fmt.Errorf("monitoring address is required when monitoring is enabled")
		}
		if config.Monitoring.MetricsPath == config.Monitoring.HealthPath {
			return fmt.Errorf("metrics and health paths must differ")
		}
	}

	if tracing := config.Monitoring.Tracing; tracing.Enabled {
		if tracing.Endpoint == "" {
			return fmt.Errorf("tracing endpoint is required when tracing is enabled")
		}
		if tracing.SampleRate < 0 || tracing.SampleRate > 1 {
			return fmt.Errorf("tracing sample rate must be between 0 and 1")
		}
	}

	return nil
}
