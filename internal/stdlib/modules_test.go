package stdlib

import (
	stderrors "errors"
	"iron/internal/errors"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

func TestStdModules(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"abs int", "std::math::abs(-3)", "3"},
		{"abs float", "std::math::abs(-2.5)", "2.5"},
		{"min", "std::math::min(3, 7)", "3"},
		{"max float", "std::math::max(2.5, 1.0)", "2.5"},
		{"sqrt", "std::math::sqrt(16.0)", "4"},
		{"pow", "std::math::pow(2.0, 10.0)", "1024"},
		{"floor", "std::math::floor(2.7)", "2"},
		{"ceil", "std::math::ceil(2.1)", "3"},
		{"to_float", "std::math::to_float(3) / 2.0", "1.5"},

		{"elapsed", "let t = std::time::now(); std::time::elapsed_ms(t) >= 0", "true"},
		{"instant type", "type_of(std::time::now())", "variant<stdlib.Instant>"},
		{"parse and format", `std::time::format(std::time::parse("2006-01-02", "2024-03-05"), "02/01/2006")`, "05/03/2024"},
		{"unix", `std::time::unix(std::time::parse("2006-01-02", "1970-01-02"))`, "86400"},
		{"between", `let a = std::time::parse("15:04", "10:00"); let b = std::time::parse("15:04", "10:01"); std::time::between_ms(a, b)`, "60000"},
		{"sleep", "std::time::sleep(0)", "()"},

		{"matches", `std::regex::matches("abc123", "[0-9]+")`, "true"},
		{"no match", `std::regex::matches("abc", "^[0-9]+$")`, "false"},
		{"index_of", `std::regex::index_of("abc123", "[0-9]")`, "3"},
		{"index_of missing", `std::regex::index_of("abc", "[0-9]")`, "-1"},
		{"find_all", `std::regex::find_all("a1b22c333", "[0-9]+")`, "[1, 22, 333]"},
		{"find_groups", `std::regex::find_groups("k=v;x=y", "([a-z])=([a-z])")`, "[[k=v, k, v], [x=y, x, y]]"},
		{"split", `std::regex::split("a1b2c", "[0-9]")`, "[a, b, c]"},
		{"replace_all", `std::regex::replace_all("a1b2", "[0-9]", "#")`, "a#b#"},

		{"md5", `std::codec::md5("abc")`, "900150983cd24fb0d6963f7d28e17f72"},
		{"sha256", `std::codec::sha256("abc")`, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
		{"base64", `std::codec::base64_encode("hello")`, "aGVsbG8="},
		{"base64 round trip", `std::codec::base64_decode(std::codec::base64_encode("iron"))`, "iron"},
		{"hex", `std::codec::hex_encode("hi")`, "6869"},
		{"hex round trip", `std::codec::hex_decode("6869")`, "hi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := run(t, tt.input, DefaultSQLOptions())
			if res.err != nil {
				t.Fatalf("unexpected error: %v", res.err)
			}
			if res.value != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, res.value)
			}
		})
	}
}

func TestStdModuleErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		message string
	}{
		{"empty random range", "std::math::rnd_range(3, 3)", "invalid range"},
		{"bad time", `std::time::parse("2006-01-02", "soon")`, "parse time"},
		{"negative sleep", "std::time::sleep(-1)", "negative duration"},
		{"bad pattern", `std::regex::matches("a", "(")`, "invalid pattern"},
		{"bad base64", `std::codec::base64_decode("!!")`, "base64_decode"},
		{"missing file", `std::fs::read_file("/does/not/exist")`, "failed to read file"},
		{"bad mode", `std::fs::open("x", "rw")`, "unknown file mode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := run(t, tt.input, DefaultSQLOptions())
			if !stderrors.Is(res.err, errors.HostFunction) {
				t.Fatalf("expected a host function error, got %v", res.err)
			}
			if !strings.Contains(res.err.Error(), tt.message) {
				t.Errorf("expected %q in %q", tt.message, res.err.Error())
			}
		})
	}
}

func TestRandomRange(t *testing.T) {
	for range 50 {
		res := run(t, "std::math::rnd_range(-2, 3)", DefaultSQLOptions())
		if res.err != nil {
			t.Fatalf("unexpected error: %v", res.err)
		}
		n, err := strconv.Atoi(res.value)
		if err != nil || n < -2 || n >= 3 {
			t.Fatalf("expected a value in [-2, 3), got %s", res.value)
		}
	}
}

func TestFs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	prelude := `let dir = "` + dir + `"; let p = "` + path + `";`

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"write and read", `std::fs::write_file(p, "one\ntwo\n"); std::fs::read_file(p)`, "one\ntwo\n"},
		{"append", `std::fs::write_file(p, "a"); std::fs::append_file(p, "b"); std::fs::read_file(p)`, "ab"},
		{"exists", `std::fs::write_file(p, ""); std::fs::exists(p)`, "true"},
		{"is_dir", `std::fs::is_dir(dir)`, "true"},
		{"ls", `std::fs::write_file(p, ""); std::fs::mkdirs(dir + "/sub"); std::fs::ls(dir)`, "[a.txt, sub]"},
		{"rm", `std::fs::write_file(p, ""); std::fs::rm(p); std::fs::exists(p)`, "false"},
		{"read lines", `
std::fs::write_file(p, "one\r\ntwo\nthree");
let f = std::fs::open(p, "r");
let mut out = "";
let mut line = std::fs::read_line(f);
while line.is_some() {
    out = out + line.unwrap() + "|";
    line = std::fs::read_line(f);
}
std::fs::close(f);
out`, "one|two|three|"},
		{"write handle", `
let f = std::fs::open(p, "w");
std::fs::write(f, "x");
std::fs::write(f, "y");
std::fs::close(f);
std::fs::read_file(p)`, "xy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := run(t, prelude+tt.input, DefaultSQLOptions())
			if res.err != nil {
				t.Fatalf("unexpected error: %v", res.err)
			}
			if res.value != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, res.value)
			}
		})
	}
}

func TestFsClosedHandle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.txt")
	input := `let p = "` + path + `"; std::fs::write_file(p, "x"); let f = std::fs::open(p, "r"); std::fs::close(f); std::fs::read_line(f)`
	res := run(t, input, DefaultSQLOptions())
	if !stderrors.Is(res.err, errors.HostFunction) || !strings.Contains(res.err.Error(), "file is closed") {
		t.Errorf("expected a closed file error, got %v", res.err)
	}
}
