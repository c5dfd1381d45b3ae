package logging

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/lmittmann/tint"
)

const (
	JSON = "json"
	Text = "text"
	Tint = "tint"
)

// NewHandler builds the slog handler for loggingType writing to w.
func NewHandler(w io.Writer, loggingType string, logLevelName string) (slog.Handler, error) {
	var logLevel slog.Level
	err := logLevel.UnmarshalText([]byte(logLevelName))
	if err != nil {
		return nil, fmt.Errorf("could not parse log level: %w", err)
	}

	options := slog.HandlerOptions{
		AddSource: logLevel <= slog.LevelDebug,
		Level:     logLevel,
	}

	switch loggingType {
	case JSON:
		return slog.NewJSONHandler(w, &options), nil
	case Text:
		return slog.NewTextHandler(w, &options), nil
	case Tint:
		return tint.NewHandler(w, &tint.Options{
			AddSource: options.AddSource,
			Level:     options.Level,
		}), nil
	default:
		return nil, fmt.Errorf("unknown logging type: %s", loggingType)
	}
}

// Initialize installs the handler as the slog default. Step tools write their
// own output files, so logs go to w (usually stderr).
func Initialize(w io.Writer, loggingType string, logLevelName string) error {
	handler, err := NewHandler(w, loggingType, logLevelName)
	if err != nil {
		return err
	}

	slog.SetDefault(slog.New(handler))
	slog.Debug("logging initialized", "type", loggingType, "logLevel", logLevelName)
	return nil
}
