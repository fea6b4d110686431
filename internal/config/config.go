// Package config reads the mongograph.yaml project file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up when no path is given.
const DefaultPath = "mongograph.yaml"

// Config is the project configuration.
type Config struct {
	Schema  SchemaConfig  `yaml:"schema,omitempty"`
	Mongo   MongoConfig   `yaml:"mongo,omitempty"`
	Codegen CodegenConfig `yaml:"codegen,omitempty"`
	OTel    OTelConfig    `yaml:"otel,omitempty"`
	Log     LogConfig     `yaml:"log,omitempty"`
}

// SchemaConfig locates the base SDL documents.
type SchemaConfig struct {
	// Root is scanned recursively for .graphql files.
	Root string `yaml:"root,omitempty"`
}

// MongoConfig configures the database connection.
type MongoConfig struct {
	URI      string `yaml:"uri,omitempty"`
	Database string `yaml:"database,omitempty"`
}

// CodegenConfig configures the generated collections file.
type CodegenConfig struct {
	Package string `yaml:"package,omitempty"`
	Out     string `yaml:"out,omitempty"`
}

// OTelConfig enables span export when Endpoint is set.
type OTelConfig struct {
	Endpoint string `yaml:"endpoint,omitempty"`
	Service  string `yaml:"service,omitempty"`
}

// LogConfig sets the stderr log level.
type LogConfig struct {
	Level string `yaml:"level,omitempty"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Schema:  SchemaConfig{Root: "schema"},
		Mongo:   MongoConfig{URI: "mongodb://localhost:27017", Database: "mongograph"},
		Codegen: CodegenConfig{Package: "models", Out: "collections.go"},
		OTel:    OTelConfig{Service: "mongograph"},
		Log:     LogConfig{Level: "info"},
	}
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if _, err := ParseLevel(cfg.Log.Level); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// ParseLevel maps debug, info, warn and error to slog levels. The empty
// string is info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}
