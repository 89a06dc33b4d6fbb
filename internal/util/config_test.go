package util

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestLoadConfigurationDefaults(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LogLevel != "none" || cfg.REPL.Prompt != ">> " || cfg.SQL.MaxOpenConns != 4 {
		t.Errorf("unexpected defaults %+v", cfg)
	}
}

func TestLoadConfigurationFormats(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "yaml",
			file: "iron.yaml",
			content: `
log_level: debug
log_file: /tmp/iron.log
debug_ast: true
repl:
  prompt: "iron> "
sql:
  drivers: [sqlite3]
  max_open_conns: 1
`,
		},
		{
			name: "toml",
			file: "iron.toml",
			content: `
log_level = "debug"
log_file = "/tmp/iron.log"
debug_ast = true

[repl]
prompt = "iron> "

[sql]
drivers = ["sqlite3"]
max_open_conns = 1
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfiguration(writeFile(t, tt.file, tt.content))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cfg.LogLevel != "debug" || cfg.LogFile != "/tmp/iron.log" || !cfg.DebugJsonAST {
				t.Errorf("top-level keys not applied: %+v", cfg)
			}
			if cfg.REPL.Prompt != "iron> " {
				t.Errorf("expected prompt override, got %q", cfg.REPL.Prompt)
			}
			if cfg.REPL.HistoryFile != DefaultConfiguration().REPL.HistoryFile {
				t.Errorf("unset keys should keep their defaults, got %q", cfg.REPL.HistoryFile)
			}
			if !reflect.DeepEqual(cfg.SQL.Drivers, []string{"sqlite3"}) || cfg.SQL.MaxOpenConns != 1 {
				t.Errorf("sql section not applied: %+v", cfg.SQL)
			}
			if cfg.SQL.MaxIdleConns != 2 {
				t.Errorf("expected default idle conns, got %d", cfg.SQL.MaxIdleConns)
			}
		})
	}
}

func TestLoadConfigurationRejects(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		message string
	}{
		{"unknown yaml key", "iron.yml", "colour: blue\n", "colour"},
		{"unknown toml key", "iron.toml", "colour = \"blue\"\n", "colour"},
		{"bad yaml", "iron.yaml", "log_level: [\n", "parse"},
		{"negative limits", "iron.yaml", "sql:\n  max_open_conns: -1\n", "negative"},
		{"unsupported format", "iron.json", "{}", "unsupported"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfiguration(writeFile(t, tt.file, tt.content))
			if err == nil {
				t.Fatalf("expected an error")
			}
			if !strings.Contains(err.Error(), tt.message) {
				t.Errorf("expected %q in %q", tt.message, err.Error())
			}
		})
	}
}

func TestLoadConfigurationEmptyFile(t *testing.T) {
	cfg, err := LoadConfiguration(writeFile(t, "iron.yaml", ""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.REPL.Prompt != ">> " {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestGetLineAndColumn(t *testing.T) {
	src := "ab\ncd\né"
	tests := []struct {
		pos          int
		line, column int
	}{
		{0, 1, 1},
		{1, 1, 2},
		{3, 2, 1},
		{7, 3, 2},
	}
	for _, tt := range tests {
		line, column := GetLineAndColumn(src, tt.pos)
		if line != tt.line || column != tt.column {
			t.Errorf("pos %d: expected %d:%d, got %d:%d", tt.pos, tt.line, tt.column, line, column)
		}
	}
}

func TestGetContextLinesStaleLine(t *testing.T) {
	got := GetContextLines("a\nb", 5, 1)
	if !strings.Contains(got, ">    2 | b") {
		t.Errorf("expected the last line marked, got %q", got)
	}
}
