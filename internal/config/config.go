package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ProbeConfig describes one NetFlow exporter the collector listens for.
// A probe is immutable after startup and owns its UDP port exclusively.
type ProbeConfig struct {
	Name string `yaml:"name"`
	Port int    `yaml:"port"`
	// FilterAddress, when set, restricts the probe to packets whose source
	// IP matches it exactly. Packets from other sources are rejected.
	FilterAddress string `yaml:"filter_address"`
}

// MySQLConfig holds the connection parameters for the MySQL backend.
type MySQLConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// ClickHouseConfig holds the connection parameters for the ClickHouse backend.
type ClickHouseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// NATSConfig holds the connection parameters for the NATS publishing backend.
type NATSConfig struct {
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// StorageConfig selects and parameterizes the storage backend. Every probe
// gets its own sink instance built from this shared configuration.
type StorageConfig struct {
	Type       string           `yaml:"type"`
	SQLitePath string           `yaml:"sqlite_path"`
	CSVPath    string           `yaml:"csv_path"`
	MySQL      MySQLConfig      `yaml:"mysql"`
	ClickHouse ClickHouseConfig `yaml:"clickhouse"`
	NATS       NATSConfig       `yaml:"nats"`
}

// APIConfig configures the optional HTTP status server.
type APIConfig struct {
	Enabled    bool   `yaml:"enabled"`
	ListenAddr string `yaml:"listen_addr"`
}

// Config is the top-level configuration struct for the entire application.
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Probes  []ProbeConfig `yaml:"probes"`
	API     APIConfig     `yaml:"api"`
}

// LoadConfig reads the configuration from a YAML file and returns a Config
// struct. The configuration is validated before it is returned; the core
// only ever sees a fully-resolved probe list.
func LoadConfig(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Storage.Type == "" {
		return fmt.Errorf("storage.type must be set")
	}
	if len(c.Probes) == 0 {
		return fmt.Errorf("at least one probe must be configured")
	}

	seenPorts := make(map[int]string)
	for i, probe := range c.Probes {
		if probe.Name == "" {
			return fmt.Errorf("probe %d is missing a name", i+1)
		}
		if probe.Port <= 0 || probe.Port > 65535 {
			return fmt.Errorf("probe %s has invalid port %d", probe.Name, probe.Port)
		}
		if other, dup := seenPorts[probe.Port]; dup {
			return fmt.Errorf("probes %s and %s both listen on port %d", other, probe.Name, probe.Port)
		}
		seenPorts[probe.Port] = probe.Name
	}

	if c.API.Enabled && c.API.ListenAddr == "" {
		return fmt.Errorf("api.listen_addr must be set when the API is enabled")
	}

	return nil
}
