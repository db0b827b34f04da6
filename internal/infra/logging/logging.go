package logging

import (
	"context"
	"os"
	"strings"
	"time"

	"shaparak-pay/internal/config"

	"github.com/rs/zerolog"
)

// New creates a zerolog logger configured from config.
// Supports "trace" | "debug" | "info" | "warn" | "error" levels
// and "json" | "console" formats. Sampling can be enabled to reduce noise in prod.
func New(cfg config.LogConfig, dev bool) *zerolog.Logger {
	level, _ := zerolog.ParseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	var base zerolog.Logger
	if strings.ToLower(cfg.Format) == "console" || dev {
		out := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		base = zerolog.New(out).With().Timestamp().Logger()
	} else {
		base = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}

	if cfg.Sampling && !dev {
		// Keep first 100, then 1 every 100 thereafter.
		sampled := base.Sample(&zerolog.BasicSampler{N: 100})
		return &sampled
	}
	return &base
}

type ctxKey string

const ctxTrackingNumber ctxKey = "tracking_number"

// WithTrackingNumber stores the payment correlation id in the context so
// handlers deeper in the stack log against the same payment.
func WithTrackingNumber(ctx context.Context, n int64) context.Context {
	return context.WithValue(ctx, ctxTrackingNumber, n)
}

// With attaches common context fields such as the tracking number.
func With(ctx context.Context, base *zerolog.Logger) *zerolog.Logger {
	l := base.With()
	if v := ctx.Value(ctxTrackingNumber); v != nil {
		l = l.Int64("tracking_number", v.(int64))
	}
	logger := l.Logger()
	return &logger
}
