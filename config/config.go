package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"library-console/logger"
	"library-console/storage"
)

// EnvPrefix prefixes every environment override, e.g. LIBRARY_STORAGE_DIR.
const EnvPrefix = "LIBRARY"

type Config struct {
	Storage Storage    `mapstructure:"storage"`
	Lending Lending    `mapstructure:"lending"`
	Log     logger.Log `mapstructure:"log"`
}

type Storage struct {
	Driver     string `mapstructure:"driver"` // json | sqlite
	Dir        string `mapstructure:"dir"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

type Lending struct {
	LoanDays     int `mapstructure:"loan_days"`
	Extensions   int `mapstructure:"extensions"`
	ReminderDays int `mapstructure:"reminder_days"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("storage.driver", storage.DriverJSON)
	v.SetDefault("storage.dir", "data")
	v.SetDefault("storage.sqlite_path", "data/library.db")
	v.SetDefault("lending.loan_days", 30)
	v.SetDefault("lending.extensions", 3)
	v.SetDefault("lending.reminder_days", 7)
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "console")
}

// Load reads configuration in increasing priority: defaults, config file,
// environment (a .env file in the working directory is loaded first).
// An empty file looks for config.yaml in ./config and the working directory;
// a missing file is not an error unless it was named explicitly.
func Load(file string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	switch cfg.Storage.Driver {
	case storage.DriverJSON, storage.DriverSQLite:
	default:
		return fmt.Errorf("invalid storage driver: %q", cfg.Storage.Driver)
	}
	if cfg.Lending.LoanDays <= 0 {
		return fmt.Errorf("invalid loan period: %d days", cfg.Lending.LoanDays)
	}
	if cfg.Lending.Extensions < 0 {
		return fmt.Errorf("invalid extension count: %d", cfg.Lending.Extensions)
	}
	if cfg.Lending.ReminderDays <= 0 {
		return fmt.Errorf("invalid reminder window: %d days", cfg.Lending.ReminderDays)
	}
	return nil
}
