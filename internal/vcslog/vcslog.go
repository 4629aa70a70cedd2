// Package vcslog is the structured-logging wrapper commands use to report
// what they did: object writes, ref advances, merge outcomes. Grounded on
// cuemby-warren's pkg/log zerolog wrapper, adapted from that project's
// component/node/service/task fields to this one's operation/repo/ref
// fields.
package vcslog

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the global logger instance; Init replaces it.
var Logger zerolog.Logger

// Level names one of zerolog's leveled severities.
type Level string

const (
	DebugLevel Level = "debug"
	InfoLevel  Level = "info"
	WarnLevel  Level = "warn"
	ErrorLevel Level = "error"
)

// Config controls Init's output format and verbosity.
type Config struct {
	Level      Level
	JSONOutput bool
	Output     io.Writer
}

// Init replaces the global Logger per cfg. The package's own init calls it
// with Info level, and the CLI's root command calls it again before running
// a subcommand; package-level helpers below always write through the shared
// instance.
func Init(cfg Config) {
	var level zerolog.Level
	switch cfg.Level {
	case DebugLevel:
		level = zerolog.DebugLevel
	case InfoLevel:
		level = zerolog.InfoLevel
	case WarnLevel:
		level = zerolog.WarnLevel
	case ErrorLevel:
		level = zerolog.ErrorLevel
	default:
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	if cfg.JSONOutput {
		Logger = zerolog.New(output).With().Timestamp().Logger()
	} else {
		Logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Logger()
	}
}

func init() {
	Init(Config{Level: InfoLevel})
}

// WithOperation creates a child logger tagged with the command name
// currently running (init/add/commit/merge/...).
func WithOperation(operation string) zerolog.Logger {
	return Logger.With().Str("operation", operation).Logger()
}

// WithRepo creates a child logger tagged with the repository's control
// directory path.
func WithRepo(path string) zerolog.Logger {
	return Logger.With().Str("repo", path).Logger()
}

// WithRef creates a child logger tagged with the reference name an
// operation is about to update.
func WithRef(name string) zerolog.Logger {
	return Logger.With().Str("ref", name).Logger()
}

func Info(msg string) { Logger.Info().Msg(msg) }

func Debug(msg string) { Logger.Debug().Msg(msg) }

func Warn(msg string) { Logger.Warn().Msg(msg) }

func Error(msg string) { Logger.Error().Msg(msg) }

func Errorf(format string, err error) { Logger.Error().Err(err).Msg(format) }
