package stdlib

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iron/internal/object"
	"iron/internal/runtime"
	"os"
	"strings"
)

var errFileClosed = errors.New("file is closed")

// File is an open file handle. Copies of a File share the descriptor.
type File struct {
	path  string
	state *fileState
}

type fileState struct {
	f *os.File
	r *bufio.Reader
}

func (f File) String() string {
	return fmt.Sprintf("file(%s)", f.path)
}

func (f File) open() (*fileState, error) {
	if f.state == nil || f.state.f == nil {
		return nil, errFileClosed
	}
	return f.state, nil
}

var openFlags = map[string]int{
	"r": os.O_RDONLY,
	"w": os.O_WRONLY | os.O_CREATE | os.O_TRUNC,
	"a": os.O_WRONLY | os.O_CREATE | os.O_APPEND,
}

// FsModule is std::fs.
func FsModule[T any]() *runtime.Module[T] {
	return runtime.NewModule[T]().
		MustRegister("read_file", func(path string) (string, error) {
			data, err := os.ReadFile(path)
			if err != nil {
				return "", fmt.Errorf("failed to read file: %w", err)
			}
			return string(data), nil
		}).
		MustRegister("write_file", func(path, content string) (int32, error) {
			return writeFile(path, content, openFlags["w"])
		}).
		MustRegister("append_file", func(path, content string) (int32, error) {
			return writeFile(path, content, openFlags["a"])
		}).
		MustRegister("exists", func(path string) bool {
			_, err := os.Stat(path)
			return !errors.Is(err, os.ErrNotExist)
		}).
		MustRegister("is_dir", func(path string) (bool, error) {
			info, err := os.Stat(path)
			if err != nil {
				return false, fmt.Errorf("failed to get file info: %w", err)
			}
			return info.IsDir(), nil
		}).
		MustRegister("ls", func(path string) (object.Array, error) {
			entries, err := os.ReadDir(path)
			if err != nil {
				return object.Array{}, fmt.Errorf("failed to read directory: %w", err)
			}
			names := make([]string, len(entries))
			for i, e := range entries {
				names[i] = e.Name()
			}
			return stringArray(names), nil
		}).
		MustRegister("mkdirs", func(path string) error {
			return os.MkdirAll(path, 0o755)
		}).
		MustRegister("rm", func(path string) error {
			return os.RemoveAll(path)
		}).
		MustRegister("open", openFile).
		MustRegister("read_line", readLine).
		MustRegister("write", func(f File, s string) (int32, error) {
			st, err := f.open()
			if err != nil {
				return 0, err
			}
			n, err := st.f.WriteString(s)
			return int32(n), err
		}).
		MustRegister("close", func(f File) error {
			st, err := f.open()
			if err != nil {
				return err
			}
			err = st.f.Close()
			st.f, st.r = nil, nil
			return err
		})
}

func writeFile(path, content string, flag int) (int32, error) {
	f, err := os.OpenFile(path, flag, 0o644)
	if err != nil {
		return 0, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()
	n, err := f.WriteString(content)
	if err != nil {
		return int32(n), fmt.Errorf("failed to write file: %w", err)
	}
	return int32(n), nil
}

func openFile(path, mode string) (File, error) {
	flag, ok := openFlags[mode]
	if !ok {
		return File{}, fmt.Errorf("unknown file mode %q, want r, w or a", mode)
	}
	f, err := os.OpenFile(path, flag, 0o644)
	if err != nil {
		return File{}, fmt.Errorf("failed to open file: %w", err)
	}
	return File{path: path, state: &fileState{f: f, r: bufio.NewReader(f)}}, nil
}

// readLine returns the next line without its terminator, or none at EOF.
func readLine(f File) (object.Option, error) {
	st, err := f.open()
	if err != nil {
		return object.None(), err
	}
	line, err := st.r.ReadString('\n')
	if errors.Is(err, io.EOF) {
		if line == "" {
			return object.None(), nil
		}
	} else if err != nil {
		return object.None(), err
	}
	return object.Some(object.String(strings.TrimRight(line, "\r\n"))), nil
}
