package logging

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/sirupsen/logrus"
	"github.com/snowzach/rotatefilehook"
)

// NewSlog returns the request logger: JSON in production, colored text
// in development.
func NewSlog(development bool) *slog.Logger {
	if development {
		return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.Kitchen,
		}))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, nil))
}

/*
Setup configures a logrus logger from the environment.

LOG_LEVEL takes any level logrus understands and defaults to info, or
debug in development. When LOG_FILE is set, entries are also written to
that file as JSON and the file is rotated at 50 MB.
*/
func Setup(log *logrus.Logger, development bool) error {
	level := logrus.InfoLevel
	if development {
		level = logrus.DebugLevel
	}
	if value, ok := os.LookupEnv("LOG_LEVEL"); ok && value != "" {
		parsed, err := logrus.ParseLevel(value)
		if err != nil {
			return fmt.Errorf("unable to parse LOG_LEVEL: %w", err)
		}
		level = parsed
	}
	log.SetLevel(level)
	log.SetFormatter(&logrus.TextFormatter{ForceColors: development})

	filename, ok := os.LookupEnv("LOG_FILE")
	if !ok || filename == "" {
		return nil
	}

	hook, err := rotatefilehook.NewRotateFileHook(rotatefilehook.RotateFileConfig{
		Filename:   filename,
		MaxSize:    50, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Level:      level,
		Formatter: &logrus.JSONFormatter{
			TimestampFormat: time.RFC3339,
		},
	})
	if err != nil {
		return fmt.Errorf("unable to create log file hook: %w", err)
	}
	log.AddHook(hook)

	return nil
}
