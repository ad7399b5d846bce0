// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Backend  BackendConfig  `mapstructure:"backend"`
	Database DatabaseConfig `mapstructure:"database"`
	Actions  ActionsConfig  `mapstructure:"actions"`
	Pricing  PricingConfig  `mapstructure:"pricing"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address         string `mapstructure:"address"`
	ReadTimeout     int    `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int    `mapstructure:"write_timeout"`    // milliseconds
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // milliseconds
}

// BackendConfig selects and configures the listing backend the service reads
// from. Mode "rest" talks to the marketplace REST API, mode "postgres" queries
// the marketplace database directly.
type BackendConfig struct {
	Mode    string `mapstructure:"mode"` // "rest" or "postgres"
	BaseURL string `mapstructure:"base_url"`
	Timeout int    `mapstructure:"timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// --- Action Dispatch Config ---

// EmptyDataPolicy controls what an analysis routine returns when its input
// set is empty (owner with zero listings, listing with zero reviews).
//   - "error": return a RESOURCE_NOT_FOUND error envelope
//   - "zero":  return a success envelope with a zero-valued payload
type ActionsConfig struct {
	EmptyDataPolicy string                  `mapstructure:"empty_data_policy"`
	RegistryPath    string                  `mapstructure:"registry_path"` // optional JSON overlay toggling actions on/off
	Handlers        map[string]ActionConfig `mapstructure:"handlers"`
}

type ActionConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Timeout int  `mapstructure:"timeout"` // milliseconds
}

// PricingConfig bounds the suggested price adjustment. Magnitudes are
// percentages; non-zero suggestions are clamped to [MinAdjustPercent, MaxAdjustPercent].
type PricingConfig struct {
	MinAdjustPercent    float64         `mapstructure:"min_adjust_percent"`
	MaxAdjustPercent    float64         `mapstructure:"max_adjust_percent"`
	StrongDemandPercent float64         `mapstructure:"strong_demand_percent"`
	MildDemandPercent   float64         `mapstructure:"mild_demand_percent"`
	DecreasePercent     float64         `mapstructure:"decrease_percent"`
	HolidayWindows      []HolidayWindow `mapstructure:"holiday_windows"`
}

type HolidayWindow struct {
	Name  string `mapstructure:"name"`
	Start string `mapstructure:"start"` // YYYY-MM-DD
	End   string `mapstructure:"end"`   // YYYY-MM-DD
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
