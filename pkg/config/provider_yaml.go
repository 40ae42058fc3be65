package config

import (
	"os"

	"gopkg.in/yaml.v2"
)

// YAMLProvider implements ConfigProvider for YAML configuration files
type YAMLProvider struct {
	filename string
	config   *ConfigData
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// LoadConfig loads the complete configuration from YAML file
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	config := &ConfigData{}
	if err := yaml.UnmarshalStrict(cfgFile, config); err != nil {
		return nil, err
	}

	y.config = config
	return config, nil
}

func (y *YAMLProvider) loaded() (*ConfigData, error) {
	if y.config == nil {
		return y.LoadConfig()
	}
	return y.config, nil
}

// GetDatasetConfig returns the dataset configuration
func (y *YAMLProvider) GetDatasetConfig() (*DatasetData, error) {
	config, err := y.loaded()
	if err != nil {
		return nil, err
	}
	return &config.Dataset, nil
}

// GetServerConfig returns the HTTP server configuration
func (y *YAMLProvider) GetServerConfig() (*ServerData, error) {
	config, err := y.loaded()
	if err != nil {
		return nil, err
	}
	return &config.Server, nil
}

// GetDashboardConfig returns the page and chart configuration
func (y *YAMLProvider) GetDashboardConfig() (*DashboardData, error) {
	config, err := y.loaded()
	if err != nil {
		return nil, err
	}
	return &config.Dashboard, nil
}

// IsReadOnly returns true since YAML files are read-only through this interface
func (y *YAMLProvider) IsReadOnly() bool {
	return true
}

// Close is a no-op for YAML provider
func (y *YAMLProvider) Close() error {
	return nil
}
