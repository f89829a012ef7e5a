package logger

import (
	"os"
	"path/filepath"
	"runtime"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options control logger construction. Zero value gives an info-level
// console-only logger.
type Options struct {
	Level       string
	FileEnabled bool
	LogDir      string // overrides the platform default
}

// New builds the service logger: human-readable console output plus,
// when enabled, a JSON file under the platform log directory.
func New(opts Options) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if opts.Level != "" {
		if err := level.Set(opts.Level); err != nil {
			return nil, err
		}
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	consoleCfg := encCfg
	consoleCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cores := []zapcore.Core{
		zapcore.NewCore(
			zapcore.NewConsoleEncoder(consoleCfg),
			zapcore.Lock(os.Stderr),
			level,
		),
	}

	if opts.FileEnabled {
		logDir := opts.LogDir
		if logDir == "" {
			dir, err := defaultLogDir()
			if err != nil {
				return nil, err
			}
			logDir = dir
		}
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			return nil, err
		}
		file, err := os.OpenFile(
			filepath.Join(logDir, "print-bridge.log"),
			os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644,
		)
		if err != nil {
			return nil, err
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(encCfg),
			zapcore.Lock(file),
			level,
		))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()), nil
}

func defaultLogDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	var logDir string
	switch runtime.GOOS {
	case "windows":
		logDir = filepath.Join(homeDir, "AppData", "Local", "print-bridge", "logs")
	case "darwin":
		logDir = filepath.Join(homeDir, "Library", "Logs", "print-bridge")
	default: // linux and others
		logDir = filepath.Join(homeDir, ".local", "share", "print-bridge", "logs")
		if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
			logDir = filepath.Join(xdgData, "print-bridge", "logs")
		}
	}

	return logDir, nil
}

// PrintJob logs the outcome of a print submission.
func PrintJob(l *zap.Logger, jobID, printer, status string) {
	l.Info("print job",
		zap.String("job_id", jobID),
		zap.String("printer", printer),
		zap.String("status", status))
}

// Error logs a scoped application error with its context.
func Error(l *zap.Logger, err error, context string) {
	l.Error("application error",
		zap.Error(err),
		zap.String("context", context))
}
