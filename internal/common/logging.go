package common

import (
	"io"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	logger = log.New(os.Stderr, "[adifmerge] ", log.LstdFlags|log.Lmicroseconds)
)

func Logf(format string, args ...interface{}) {
	logger.Printf(format, args...)
}

func Fatalf(format string, args ...interface{}) {
	logger.Fatalf(format, args...)
}

// LogRotation configures the rotating run log.
type LogRotation struct {
	MaxSizeMB  int
	MaxAgeDays int
	MaxBackups int
	Compress   bool
}

// AttachRotatingLog tees log output to a size-rotated file under dir in
// addition to stderr. Returns the file path being written.
func AttachRotatingLog(dir string, rot LogRotation) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	if rot.MaxSizeMB <= 0 {
		rot.MaxSizeMB = 25
	}
	if rot.MaxAgeDays <= 0 {
		rot.MaxAgeDays = 7
	}
	if rot.MaxBackups <= 0 {
		rot.MaxBackups = 5
	}
	logFile := filepath.Join(dir, "adifmerge.log")
	rotator := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    rot.MaxSizeMB,
		MaxAge:     rot.MaxAgeDays,
		MaxBackups: rot.MaxBackups,
		Compress:   rot.Compress,
	}
	logger.SetOutput(io.MultiWriter(os.Stderr, rotator))
	return logFile, nil
}
