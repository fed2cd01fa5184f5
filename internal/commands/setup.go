package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/driftersoft/janitord/internal/config"
	"github.com/driftersoft/janitord/internal/engine"
)

var (
	prefixStyle = color.New(color.FgHiCyan, color.Bold)
	infoStyle   = color.New(color.FgHiWhite)
	subtleStyle = color.New(color.FgHiBlack)
	dirStyle    = color.New(color.FgHiBlue, color.Bold)
	deleteStyle = color.New(color.FgHiYellow, color.Bold)
	errorStyle  = color.New(color.FgHiRed, color.Bold)
)

func prefix() string {
	return prefixStyle.Sprint("[janitord]")
}

func logInfo(out io.Writer, message string) {
	fmt.Fprintf(out, "%s %s\n", prefix(), infoStyle.Sprint(message))
}

// loadConfig reads the file named by the --config flag (or the default
// search path when the flag is empty).
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the daemon logger from config.
func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

// newCleaner wires a Cleaner from config: filters, protect list and policy
// settings. Configuration problems surface here, before anything runs.
func newCleaner(cfg *config.Config, log *slog.Logger) (*engine.Cleaner, error) {
	var filters []engine.Filter
	if cfg.Filter != "" {
		f, err := engine.NewGlobFilter(cfg.Root, cfg.Filter)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}
	if cfg.FilterRegexp != "" {
		f, err := engine.NewRegexpFilter(cfg.FilterRegexp)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}
	var filter engine.Filter
	if len(filters) == 1 {
		filter = filters[0]
	} else if len(filters) > 1 {
		filter = engine.AllOf(filters...)
	}

	protect, err := engine.NewProtectList(cfg.Root, cfg.Protect)
	if err != nil {
		return nil, err
	}

	field, err := engine.ParseTimestampField(cfg.Timestamp)
	if err != nil {
		return nil, err
	}

	return engine.New(engine.Options{
		Root:              cfg.Root,
		Filter:            filter,
		Protect:           protect,
		Timestamp:         field,
		MaxAge:            cfg.MaxAge,
		UsedThreshold:     cfg.UsedThreshold,
		RemoveCleanedDirs: cfg.RemoveCleanedDirs,
		RemoveEmptyDirs:   cfg.RemoveEmptyDirs,
		AllowRootPath:     cfg.AllowRootPath,
		Logger:            log,
	})
}
