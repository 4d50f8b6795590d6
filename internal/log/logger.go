// Package log provides structured logging for dsdelink using zap.
package log

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap.Logger with dsdelink-specific helpers.
type Logger struct {
	*zap.Logger
}

var (
	// L is the global logger instance.
	L    *Logger
	once sync.Once
)

// Init initializes the global logger with the given configuration.
// Safe to call multiple times; only the first call takes effect.
func Init(debug bool) {
	once.Do(func() {
		L = New(debug)
	})
}

// New creates a new Logger instance.
func New(debug bool) *Logger {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}

	// ISO8601 timestamps under a short key, in both modes
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		// Fallback to no-op if config fails
		logger = zap.NewNop()
	}

	return &Logger{Logger: logger}
}

// NewNop creates a no-op logger for testing.
func NewNop() *Logger {
	return &Logger{Logger: zap.NewNop()}
}

// Run returns a logger tagged with a run id, so every warning/error from
// one `init` invocation can be correlated in aggregated logs.
func (l *Logger) Run(id uuid.UUID) *Logger {
	return &Logger{Logger: l.Logger.With(zap.String("run", id.String()))}
}

// WarnSoft logs one of the soft errors named in spec.md §7
// (NoCandidates, MidFunctionCall) under a distinct category so tooling
// can filter them independently of other warnings.
func (l *Logger) WarnSoft(category, msg string, fields ...zap.Field) {
	l.Warn(msg, append([]zap.Field{zap.String("category", category)}, fields...)...)
}

// ErrorChain logs one of the fatal errors named in spec.md §7 at error
// level before it is wrapped and returned to the caller.
func (l *Logger) ErrorChain(category string, err error, fields ...zap.Field) {
	l.Error(err.Error(), append([]zap.Field{zap.String("category", category)}, fields...)...)
}

// Hex formats a uint32 address as a hex string for logging.
func Hex(addr uint32) string {
	return "0x" + hexString(uint64(addr))
}

func hexString(v uint64) string {
	const digits = "0123456789abcdef"
	if v == 0 {
		return "0"
	}
	buf := make([]byte, 16)
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = digits[v&0xf]
		v >>= 4
	}
	return string(buf[i:])
}

// Field helpers for common patterns.

// Addr creates an address field.
func Addr(addr uint32) zap.Field {
	return zap.String("addr", Hex(addr))
}

// Module creates a module-kind field.
func Module(kind fmt.Stringer) zap.Field {
	return zap.String("module", kind.String())
}

// Size creates a size field.
func Size(size uint32) zap.Field {
	return zap.Uint32("size", size)
}
