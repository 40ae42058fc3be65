package config

import (
	"database/sql"
	"embed"
	"fmt"
	"sort"
	"strconv"

	_ "modernc.org/sqlite"

	"github.com/chrissnell/bikedash/pkg/migrate"
)

//go:embed migrations/*.sql
var migrations embed.FS

// SchemaMigrations is the table tracking the settings schema version
const SchemaMigrations = "config_schema_migrations"

// SQLiteProvider implements ConfigProvider for SQLite database configuration.
// Settings are stored as dotted keys ("server.port") in a key/value table.
type SQLiteProvider struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteProvider creates a new SQLite configuration provider
func NewSQLiteProvider(dbPath string) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	migrator := migrate.NewMigrator(db, migrate.NewFSProvider(migrations, "migrations", SchemaMigrations))
	if err := migrator.MigrateUp(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate settings schema: %w", err)
	}

	return &SQLiteProvider{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// settingFields maps every setting key to the field it populates
func settingFields(c *ConfigData) map[string]any {
	return map[string]any{
		"dataset.path":                &c.Dataset.Path,
		"dataset.columns.season":      &c.Dataset.Columns.Season,
		"dataset.columns.temperature": &c.Dataset.Columns.Temperature,
		"dataset.columns.humidity":    &c.Dataset.Columns.Humidity,
		"dataset.columns.windspeed":   &c.Dataset.Columns.Windspeed,
		"dataset.columns.casual":      &c.Dataset.Columns.Casual,
		"dataset.columns.registered":  &c.Dataset.Columns.Registered,
		"dataset.columns.total":       &c.Dataset.Columns.Total,
		"server.cert":                 &c.Server.Cert,
		"server.key":                  &c.Server.Key,
		"server.port":                 &c.Server.Port,
		"server.listen_addr":          &c.Server.ListenAddr,
		"dashboard.page_title":        &c.Dashboard.PageTitle,
		"dashboard.preview_rows":      &c.Dashboard.PreviewRows,
		"dashboard.chart_width":       &c.Dashboard.ChartWidth,
		"dashboard.chart_height":      &c.Dashboard.ChartHeight,
		"dashboard.chart_format":      &c.Dashboard.ChartFormat,
		"logging.debug":               &c.Logging.Debug,
		"logging.file":                &c.Logging.File,
		"logging.max_size_mb":         &c.Logging.MaxSizeMB,
		"logging.max_backups":         &c.Logging.MaxBackups,
		"logging.max_age_days":        &c.Logging.MaxAgeDays,
	}
}

// SettingKeys returns every key the settings table understands, sorted
func SettingKeys() []string {
	fields := settingFields(&ConfigData{})
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func parseSetting(field any, value string) error {
	switch f := field.(type) {
	case *string:
		*f = value
	case *int:
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		*f = n
	case *float64:
		n, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		*f = n
	case *bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		*f = b
	default:
		return fmt.Errorf("unsupported setting type %T", field)
	}
	return nil
}

func formatSetting(field any) string {
	switch f := field.(type) {
	case *string:
		return *f
	case *int:
		return strconv.Itoa(*f)
	case *float64:
		return strconv.FormatFloat(*f, 'f', -1, 64)
	case *bool:
		return strconv.FormatBool(*f)
	}
	return ""
}

// LoadConfig loads the complete configuration from SQLite database
func (s *SQLiteProvider) LoadConfig() (*ConfigData, error) {
	rows, err := s.db.Query(`SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("failed to query settings: %w", err)
	}
	defer rows.Close()

	config := &ConfigData{}
	fields := settingFields(config)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan setting row: %w", err)
		}

		field, ok := fields[key]
		if !ok {
			return nil, fmt.Errorf("%w: unknown setting %q", ErrInvalidConfig, key)
		}
		if err := parseSetting(field, value); err != nil {
			return nil, fmt.Errorf("%w: setting %q: %v", ErrInvalidConfig, key, err)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}

	return config, nil
}

// GetDatasetConfig returns the dataset configuration from the database
func (s *SQLiteProvider) GetDatasetConfig() (*DatasetData, error) {
	config, err := s.LoadConfig()
	if err != nil {
		return nil, err
	}
	return &config.Dataset, nil
}

// GetServerConfig returns the HTTP server configuration from the database
func (s *SQLiteProvider) GetServerConfig() (*ServerData, error) {
	config, err := s.LoadConfig()
	if err != nil {
		return nil, err
	}
	return &config.Server, nil
}

// GetDashboardConfig returns the page and chart configuration from the database
func (s *SQLiteProvider) GetDashboardConfig() (*DashboardData, error) {
	config, err := s.LoadConfig()
	if err != nil {
		return nil, err
	}
	return &config.Dashboard, nil
}

// IsReadOnly returns false since SQLite configuration can be modified
func (s *SQLiteProvider) IsReadOnly() bool {
	return false
}

// Close closes the database connection
func (s *SQLiteProvider) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Write methods for configuration management

const upsertSetting = `
	INSERT INTO settings (key, value) VALUES (?, ?)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value
`

// SaveConfig replaces every stored setting with the values of configData
func (s *SQLiteProvider) SaveConfig(configData *ConfigData) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM settings`); err != nil {
		return fmt.Errorf("failed to clear settings: %w", err)
	}

	fields := settingFields(configData)
	for _, key := range SettingKeys() {
		if _, err := tx.Exec(upsertSetting, key, formatSetting(fields[key])); err != nil {
			return fmt.Errorf("failed to save setting %s: %w", key, err)
		}
	}

	return tx.Commit()
}

// SetSetting stores a single setting after checking that value parses for key
func (s *SQLiteProvider) SetSetting(key, value string) error {
	field, ok := settingFields(&ConfigData{})[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", ErrInvalidConfig, key)
	}
	if err := parseSetting(field, value); err != nil {
		return fmt.Errorf("%w: setting %q: %v", ErrInvalidConfig, key, err)
	}

	if _, err := s.db.Exec(upsertSetting, key, value); err != nil {
		return fmt.Errorf("failed to save setting %s: %w", key, err)
	}
	return nil
}

// DeleteSetting removes a setting so that its default applies again
func (s *SQLiteProvider) DeleteSetting(key string) error {
	result, err := s.db.Exec(`DELETE FROM settings WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete setting %s: %w", key, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("setting not found: %s", key)
	}
	return nil
}
