package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidConfig is returned when a loaded configuration fails validation
var ErrInvalidConfig = errors.New("invalid configuration")

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	// Get specific configuration sections
	GetDatasetConfig() (*DatasetData, error)
	GetServerConfig() (*ServerData, error)
	GetDashboardConfig() (*DashboardData, error)

	IsReadOnly() bool
	Close() error
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Dataset   DatasetData   `json:"dataset" yaml:"dataset"`
	Server    ServerData    `json:"server" yaml:"server"`
	Dashboard DashboardData `json:"dashboard" yaml:"dashboard"`
	Logging   LoggingData   `json:"logging" yaml:"logging"`
}

// DatasetData locates the CSV file and names its columns
type DatasetData struct {
	Path    string      `json:"path" yaml:"path" split_words:"true" validate:"required"`
	Columns ColumnsData `json:"columns,omitempty" yaml:"columns,omitempty"`
}

// ColumnsData maps each analysed field to its CSV header. Empty entries keep the defaults.
type ColumnsData struct {
	Season      string `json:"season,omitempty" yaml:"season,omitempty" split_words:"true"`
	Temperature string `json:"temperature,omitempty" yaml:"temperature,omitempty" split_words:"true"`
	Humidity    string `json:"humidity,omitempty" yaml:"humidity,omitempty" split_words:"true"`
	Windspeed   string `json:"windspeed,omitempty" yaml:"windspeed,omitempty" split_words:"true"`
	Casual      string `json:"casual,omitempty" yaml:"casual,omitempty" split_words:"true"`
	Registered  string `json:"registered,omitempty" yaml:"registered,omitempty" split_words:"true"`
	Total       string `json:"total,omitempty" yaml:"total,omitempty" split_words:"true"`
}

// ServerData holds the configuration for the dashboard HTTP server
type ServerData struct {
	Cert       string `json:"cert,omitempty" yaml:"cert,omitempty" split_words:"true"`
	Key        string `json:"key,omitempty" yaml:"key,omitempty" split_words:"true"`
	Port       int    `json:"port,omitempty" yaml:"port,omitempty" split_words:"true" validate:"min=1,max=65535"`
	ListenAddr string `json:"listen_addr,omitempty" yaml:"listen_addr,omitempty" split_words:"true"`
}

// DashboardData holds page and chart settings
type DashboardData struct {
	PageTitle   string  `json:"page_title,omitempty" yaml:"page_title,omitempty" split_words:"true"`
	PreviewRows int     `json:"preview_rows,omitempty" yaml:"preview_rows,omitempty" split_words:"true" validate:"min=1,max=1000"`
	ChartWidth  float64 `json:"chart_width,omitempty" yaml:"chart_width,omitempty" split_words:"true" validate:"gt=0"`
	ChartHeight float64 `json:"chart_height,omitempty" yaml:"chart_height,omitempty" split_words:"true" validate:"gt=0"`
	ChartFormat string  `json:"chart_format,omitempty" yaml:"chart_format,omitempty" split_words:"true" validate:"oneof=svg png"`
}

// LoggingData configures optional file output for the logger
type LoggingData struct {
	Debug      bool   `json:"debug,omitempty" yaml:"debug,omitempty" split_words:"true"`
	File       string `json:"file,omitempty" yaml:"file,omitempty" split_words:"true"`
	MaxSizeMB  int    `json:"max_size_mb,omitempty" yaml:"max_size_mb,omitempty" split_words:"true" validate:"min=0"`
	MaxBackups int    `json:"max_backups,omitempty" yaml:"max_backups,omitempty" split_words:"true" validate:"min=0"`
	MaxAgeDays int    `json:"max_age_days,omitempty" yaml:"max_age_days,omitempty" split_words:"true" validate:"min=0"`
}

// Defaults
const (
	DefaultDatasetPath = "./dashboard/main_data.csv"
	DefaultListenAddr  = "0.0.0.0"
	DefaultPort        = 8080
	DefaultPageTitle   = "Bike Sharing Dashboard"
	DefaultPreviewRows = 10
	DefaultChartWidth  = 8.0
	DefaultChartHeight = 5.0
	DefaultChartFormat = "svg"
)

var validate = validator.New()

// ApplyDefaults fills every unset field with its default value
func (c *ConfigData) ApplyDefaults() {
	if c.Dataset.Path == "" {
		c.Dataset.Path = DefaultDatasetPath
	}
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = DefaultListenAddr
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Dashboard.PageTitle == "" {
		c.Dashboard.PageTitle = DefaultPageTitle
	}
	if c.Dashboard.PreviewRows == 0 {
		c.Dashboard.PreviewRows = DefaultPreviewRows
	}
	if c.Dashboard.ChartWidth == 0 {
		c.Dashboard.ChartWidth = DefaultChartWidth
	}
	if c.Dashboard.ChartHeight == 0 {
		c.Dashboard.ChartHeight = DefaultChartHeight
	}
	if c.Dashboard.ChartFormat == "" {
		c.Dashboard.ChartFormat = DefaultChartFormat
	}
}

// Validate checks the configuration against its field constraints
func (c *ConfigData) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if (c.Server.Cert == "") != (c.Server.Key == "") {
		return fmt.Errorf("%w: server cert and key must be set together", ErrInvalidConfig)
	}
	return nil
}

// Addr returns the host:port the server listens on
func (s ServerData) Addr() string {
	return fmt.Sprintf("%s:%d", s.ListenAddr, s.Port)
}

// NewProvider opens the configuration source for backend ("yaml" or "sqlite")
func NewProvider(backend, path string) (ConfigProvider, error) {
	switch backend {
	case "yaml":
		return NewYAMLProvider(path), nil
	case "sqlite":
		provider, err := NewSQLiteProvider(path)
		if err != nil {
			return nil, fmt.Errorf("error creating SQLite provider: %w", err)
		}
		return provider, nil
	}
	return nil, fmt.Errorf("unsupported configuration backend: %s. Use 'yaml' or 'sqlite'", backend)
}

// Load reads the configuration from provider, applies defaults and
// environment overrides from envFile and the process environment, and validates the result.
func Load(provider ConfigProvider, envFile string) (*ConfigData, error) {
	cfg, err := provider.LoadConfig()
	if err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()

	if err := ApplyEnv(cfg, envFile); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
