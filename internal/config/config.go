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
	Source SourceConfig `yaml:"source" mapstructure:"source"`
	Cache  CacheConfig  `yaml:"cache" mapstructure:"cache"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// SourceConfig configures the published Google Sheets CSV export source.
type SourceConfig struct {
	SheetID      string `yaml:"sheet_id" mapstructure:"sheet_id"`
	MonthlySheet string `yaml:"monthly_sheet" mapstructure:"monthly_sheet"`
	OrgSheet     string `yaml:"org_sheet" mapstructure:"org_sheet"`
	KPISheet     string `yaml:"kpi_sheet" mapstructure:"kpi_sheet"`
	TypeSheet    string `yaml:"type_sheet" mapstructure:"type_sheet"`
	TimeoutSecs  int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// CacheConfig configures the snapshot cache.
type CacheConfig struct {
	TTLSecs int `yaml:"ttl_secs" mapstructure:"ttl_secs"`
}

// ServerConfig configures the dashboard API server.
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
	v.SetEnvPrefix("KPI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("source.sheet_id", "1gL-Y0LHpJqlDaqJx0TS87LGOISSX1oER")
	v.SetDefault("source.monthly_sheet", "KPI_Monthly_Data")
	v.SetDefault("source.org_sheet", "Org_Master")
	v.SetDefault("source.kpi_sheet", "KPI_Master")
	v.SetDefault("source.type_sheet", "KPI_Type_Guide")
	v.SetDefault("source.timeout_secs", 30)
	v.SetDefault("cache.ttl_secs", 300)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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
