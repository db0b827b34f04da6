package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"shaparak-pay/internal/domain/ports/repository"
)

// PaymentExpirer periodically fails initiated payments whose client never
// came back from the bank page. Bank tokens expire within minutes, so a
// payment stuck in the initiated state past staleAfter will never verify.
type PaymentExpirer struct {
	payments   repository.PaymentRepository
	interval   time.Duration
	staleAfter time.Duration
	log        zerolog.Logger
}

func NewPaymentExpirer(payments repository.PaymentRepository, interval, staleAfter time.Duration, logger *zerolog.Logger) *PaymentExpirer {
	if interval <= 0 {
		interval = time.Minute
	}
	if staleAfter <= 0 {
		staleAfter = 30 * time.Minute
	}
	return &PaymentExpirer{
		payments:   payments,
		interval:   interval,
		staleAfter: staleAfter,
		log:        logger.With().Str("component", "payment_expirer").Logger(),
	}
}

func (w *PaymentExpirer) Run(ctx context.Context) {
	t := time.NewTicker(w.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			w.tick(ctx)
		}
	}
}

func (w *PaymentExpirer) tick(ctx context.Context) {
	cutoff := time.Now().Add(-w.staleAfter)
	n, err := w.payments.ExpireInitiatedBefore(ctx, cutoff)
	if err != nil {
		w.log.Error().Err(err).Msg("expire initiated payments")
		return
	}
	if n > 0 {
		w.log.Info().Int64("expired", n).Msg("stale payments failed")
	}
}
