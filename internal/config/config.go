package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Supported database/sql driver names.
const (
	DriverSQLite3 = "sqlite3" // github.com/mattn/go-sqlite3 (cgo)
	DriverSQLite  = "sqlite"  // modernc.org/sqlite (pure Go)
)

// AllTypes is the extensions key that applies to every entry type.
const AllTypes = "*"

// Config is the full configuration consumed by the store.
type Config struct {
	SQL            SQL     `yaml:"sql" json:"sql"`
	ReadOnly       bool    `yaml:"readOnly" json:"readOnly"`
	FlowFilePretty bool    `yaml:"flowFilePretty" json:"flowFilePretty"`
	Library        Library `yaml:"library" json:"library"`
}

// SQL holds backend connection parameters.
type SQL struct {
	Driver   string `yaml:"driver" json:"driver"`
	Name     string `yaml:"name" json:"name"`
	Host     string `yaml:"host,omitempty" json:"host,omitempty"`
	Username string `yaml:"username,omitempty" json:"username,omitempty"`
	Password string `yaml:"password,omitempty" json:"password,omitempty"`
}

// Library holds library-entry resolution settings.
type Library struct {
	// Extensions maps an entry type to the implicit extensions tried when
	// the requested path has no exact match.
	Extensions map[string][]string `yaml:"extensions,omitempty" json:"extensions,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		SQL: SQL{
			Driver: DriverSQLite3,
			Name:   "redsql.db",
		},
		Library: Library{
			Extensions: map[string][]string{
				"flows": {".json"},
			},
		},
	}
}

// Load reads and validates a YAML configuration file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML and validates the result. The driver and the
// extension policy fall back to Default when absent; an explicit empty
// extensions map disables implicit extensions.
func Parse(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	applyDefaults(&cfg)
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.SQL.Driver == "" {
		cfg.SQL.Driver = def.SQL.Driver
	}
	if cfg.Library.Extensions == nil {
		cfg.Library.Extensions = def.Library.Extensions
	}
}

// DSN returns the data source name passed to sql.Open.
// Host is treated as the directory holding the database file.
func (s SQL) DSN() string {
	if s.Host == "" || s.Name == ":memory:" || filepath.IsAbs(s.Name) {
		return s.Name
	}
	return filepath.Join(s.Host, s.Name)
}

// LogValue implements slog.LogValuer. The password is never logged.
func (s SQL) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("driver", s.Driver),
		slog.String("dsn", s.DSN()),
	}
	if s.Username != "" {
		attrs = append(attrs, slog.String("username", s.Username))
	}
	if s.Password != "" {
		attrs = append(attrs, slog.String("password", "REDACTED"))
	}
	return slog.GroupValue(attrs...)
}

// ExtensionsFor returns the implicit extensions for an entry type, falling
// back to the AllTypes list.
func (l Library) ExtensionsFor(entryType string) []string {
	if exts, ok := l.Extensions[entryType]; ok {
		return exts
	}
	return l.Extensions[AllTypes]
}

// Clone returns a deep copy so callers can override fields safely.
func (c Config) Clone() Config {
	out := c
	if c.Library.Extensions != nil {
		out.Library.Extensions = make(map[string][]string, len(c.Library.Extensions))
		for k, v := range c.Library.Extensions {
			out.Library.Extensions[k] = append([]string(nil), v...)
		}
	}
	return out
}
