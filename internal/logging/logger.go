// Package logging wires logrus into the service: base logger setup with a
// rotating file sink, Gin middleware for request logging and panic recovery,
// and the bounded tail reader backing the /logs endpoint.
package logging

import (
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls base logger behavior.
type Options struct {
	// File is the log file path. Empty disables the file sink.
	File string
	// Level is the minimum level: debug, info, warn or error.
	Level string
	// MaxSizeMB rotates the file once it exceeds this size.
	MaxSizeMB int
	// MaxBackups is the number of rotated files kept.
	MaxBackups int
}

// SetupBaseLogger configures the global logrus logger. Output is teed to
// stdout and, when a file is configured, a size-rotated log file. The file is
// the same one the /logs endpoint reads back, so the formatter is forced to
// the non-TTY text layout (key=value) for stable line parsing.
func SetupBaseLogger(opts Options) {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
		DisableColors:   true,
	})
	log.SetLevel(parseLevel(opts.Level))

	if opts.File == "" {
		log.SetOutput(os.Stdout)
		return
	}
	rotator := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		Compress:   true,
	}
	log.SetOutput(io.MultiWriter(os.Stdout, rotator))
}

func parseLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}
