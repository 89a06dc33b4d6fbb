package util

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

type Configuration struct {
	Version      string     `yaml:"-" toml:"-"`
	BuildDate    string     `yaml:"-" toml:"-"`
	Commit       string     `yaml:"-" toml:"-"`
	RootPath     string     `yaml:"root" toml:"root"`
	LogLevel     string     `yaml:"log_level" toml:"log_level"`
	LogFile      string     `yaml:"log_file" toml:"log_file"`
	DebugJsonAST bool       `yaml:"debug_ast" toml:"debug_ast"`
	DebugTxtAST  bool       `yaml:"debug_ast_txt" toml:"debug_ast_txt"`
	REPL         REPLConfig `yaml:"repl" toml:"repl"`
	SQL          SQLConfig  `yaml:"sql" toml:"sql"`
}

type REPLConfig struct {
	Prompt      string `yaml:"prompt" toml:"prompt"`
	HistoryFile string `yaml:"history_file" toml:"history_file"`
}

type SQLConfig struct {
	Drivers      []string `yaml:"drivers" toml:"drivers"`
	MaxOpenConns int      `yaml:"max_open_conns" toml:"max_open_conns"`
	MaxIdleConns int      `yaml:"max_idle_conns" toml:"max_idle_conns"`
}

// DefaultConfiguration is the configuration used when no file is given.
func DefaultConfiguration() Configuration {
	historyFile := ""
	if home, err := os.UserHomeDir(); err == nil {
		historyFile = filepath.Join(home, ".iron_history")
	}
	return Configuration{
		RootPath: ".",
		LogLevel: "none",
		REPL: REPLConfig{
			Prompt:      ">> ",
			HistoryFile: historyFile,
		},
		SQL: SQLConfig{
			Drivers:      []string{"sqlite3", "mysql", "postgres"},
			MaxOpenConns: 4,
			MaxIdleConns: 2,
		},
	}
}

// LoadConfiguration overlays the file at path onto the defaults. The format
// follows the extension: .yaml/.yml or .toml. Unknown keys are rejected.
func LoadConfiguration(path string) (Configuration, error) {
	cfg := DefaultConfiguration()
	if path == "" {
		return cfg, nil
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := decodeYAML(path, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := decodeTOML(path, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("config: unsupported format %q", filepath.Ext(path))
	}

	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

func decodeYAML(path string, cfg *Configuration) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("config: open %s: %w", path, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func decodeTOML(path string, cfg *Configuration) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("config: %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	return nil
}

func (c Configuration) validate() error {
	if c.SQL.MaxOpenConns < 0 || c.SQL.MaxIdleConns < 0 {
		return errors.New("sql connection limits must not be negative")
	}
	return nil
}
