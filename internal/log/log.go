package log

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logger atomic.Pointer[zap.Logger]
	nop    = zap.NewNop()

	mu   sync.Mutex
	sink *reopenableFile
)

// L returns the process-wide logger. It is a no-op logger until InitLogger
// or SetLogger is called.
func L() *zap.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	return nop
}

// SetLogger replaces the process-wide logger, used by tests and embedding hosts.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = nop
	}
	logger.Store(l)
}

// InitLogger builds a JSON logger writing to logFile, or stderr when logFile is
// empty. A level of "none" keeps the no-op logger.
func InitLogger(logLevel string, logFile string) error {
	lvl, enabled := ParseLevel(logLevel)
	if !enabled {
		SetLogger(zap.NewNop())
		return nil
	}

	var out zapcore.WriteSyncer = zapcore.Lock(os.Stderr)
	if logFile != "" {
		f, err := openReopenable(logFile)
		if err != nil {
			return err
		}
		mu.Lock()
		if sink != nil {
			_ = sink.Close()
		}
		sink = f
		mu.Unlock()
		out = zapcore.AddSync(f)
		f.rotateOnHangup()
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), out, lvl)
	SetLogger(zap.New(core))
	return nil
}

// ParseLevel maps a flag value onto a zap level. The second result is false
// for "none" and unknown values.
func ParseLevel(s string) (zapcore.Level, bool) {
	switch strings.ToLower(s) {
	case "trace", "debug":
		return zapcore.DebugLevel, true
	case "info":
		return zapcore.InfoLevel, true
	case "warn":
		return zapcore.WarnLevel, true
	case "error":
		return zapcore.ErrorLevel, true
	default:
		return zapcore.InfoLevel, false
	}
}

func Close() {
	_ = L().Sync()
	mu.Lock()
	defer mu.Unlock()
	if sink != nil {
		_ = sink.Close()
		sink = nil
	}
}

type reopenableFile struct {
	mu   sync.Mutex
	path string
	f    *os.File
	sigs chan os.Signal
}

var _ io.WriteCloser = (*reopenableFile)(nil)

func openReopenable(path string) (*reopenableFile, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory for %q: %w", path, err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file %q: %w", path, err)
	}
	return &reopenableFile{path: path, f: f}, nil
}

func (r *reopenableFile) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.f.Write(p)
}

func (r *reopenableFile) Close() error {
	if r.sigs != nil {
		signal.Stop(r.sigs)
		close(r.sigs)
		r.sigs = nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.f.Close()
}

func (r *reopenableFile) reopen() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, err := os.OpenFile(r.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	_ = r.f.Close()
	r.f = f
	return nil
}

// rotateOnHangup reopens the file on SIGHUP:
//
//	mv iron.log iron.bak && kill -HUP <pid>
func (r *reopenableFile) rotateOnHangup() {
	r.sigs = make(chan os.Signal, 1)
	signal.Notify(r.sigs, syscall.SIGHUP)
	go func() {
		for range r.sigs {
			if err := r.reopen(); err != nil {
				fmt.Fprintf(os.Stderr, "could not reopen log file: %v\n", err)
			}
		}
	}()
}
