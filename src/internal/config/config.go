package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. TASKTRACKER_SERVER_PORT
const EnvPrefix = "TASKTRACKER"

// Load reads defaults, an optional config file and environment overrides.
// configFile may be empty, in which case config.yaml is searched for in the
// working directory, /etc/tasktracker and ~/.tasktracker.
func Load(configFile string) (*viper.Viper, error) {
	v := viper.New()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/tasktracker")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".tasktracker"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	if err := Validate(v); err != nil {
		return nil, err
	}

	return v, nil
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.rate_limit", 50)
	v.SetDefault("server.rate_burst", 100)
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.request_timeout", "30s")

	// Database defaults
	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.dsn", "tasktracker.db")
	v.SetDefault("database.max_connections", 25)
	v.SetDefault("database.max_idle_time", 300)
	v.SetDefault("database.conn_max_lifetime", "1h")

	// Logging defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "auto")

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.exporter", "stdout")
	v.SetDefault("telemetry.endpoint", "")
	v.SetDefault("telemetry.service_name", "tasktracker")
	v.SetDefault("telemetry.sample_rate", 1.0)

	v.SetDefault("debug", false)
	v.SetDefault("environment", "development")
}

// Defaults returns a viper instance holding only the default values
func Defaults() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

// Validate rejects settings the service cannot start with
func Validate(v *viper.Viper) error {
	var problems []string

	switch v.GetString("database.type") {
	case "sqlite", "sqlite3", "postgres", "postgresql", "mysql":
	default:
		problems = append(problems, fmt.Sprintf("database.type %q is not supported", v.GetString("database.type")))
	}
	if v.GetString("database.dsn") == "" {
		problems = append(problems, "database.dsn is required")
	}

	if port := v.GetInt("server.port"); port < 0 || port > 65535 {
		problems = append(problems, fmt.Sprintf("server.port %d is out of range", port))
	}
	if v.GetFloat64("server.rate_limit") < 0 {
		problems = append(problems, "server.rate_limit must not be negative")
	}

	switch strings.ToLower(v.GetString("log.level")) {
	case "debug", "info", "warn", "warning", "error":
	default:
		problems = append(problems, fmt.Sprintf("log.level %q is not supported", v.GetString("log.level")))
	}
	switch v.GetString("log.format") {
	case "auto", "text", "json":
	default:
		problems = append(problems, fmt.Sprintf("log.format %q is not supported", v.GetString("log.format")))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Watch re-reads the config file on change and calls onChange with the new values.
// It is a no-op when no config file was loaded.
func Watch(v *viper.Viper, onChange func(v *viper.Viper)) {
	if v.ConfigFileUsed() == "" {
		return
	}
	v.OnConfigChange(func(fsnotify.Event) {
		onChange(v)
	})
	v.WatchConfig()
}
