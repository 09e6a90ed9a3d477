package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Puppetdog/sp-calculator-sub000/internal/calculation"
	"github.com/Puppetdog/sp-calculator-sub000/internal/metrics"
)

// engineLogger adapts a *slog.Logger to calculation.Logger. Warnings are
// counted because every engine warning is a degraded evaluation.
type engineLogger struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
}

var _ calculation.Logger = engineLogger{}

func (l engineLogger) Debugf(format string, args ...any) {
	l.log(slog.LevelDebug, format, args)
}

func (l engineLogger) Infof(format string, args ...any) {
	l.log(slog.LevelInfo, format, args)
}

func (l engineLogger) Warnf(format string, args ...any) {
	l.metrics.IncrementEngineWarnings()
	l.log(slog.LevelWarn, format, args)
}

func (l engineLogger) Errorf(format string, args ...any) {
	l.log(slog.LevelError, format, args)
}

func (l engineLogger) log(level slog.Level, format string, args []any) {
	ctx := context.Background()
	if !l.logger.Enabled(ctx, level) {
		return
	}
	l.logger.Log(ctx, level, fmt.Sprintf(format, args...), "component", "engine")
}
