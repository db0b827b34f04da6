package repository

import (
	"context"
	"time"

	"shaparak-pay/internal/domain/model"
)

// PaymentRepository persists payments and their per-phase transactions. The
// repository is expected to serialize concurrent attempts against the same
// payment (the unique tracking number constraint plus row locking); the
// lifecycle code itself performs no locking.
type PaymentRepository interface {
	Save(ctx context.Context, p *model.Payment) error
	FindByTrackingNumber(ctx context.Context, trackingNumber int64) (*model.Payment, error)
	UpdateStatus(ctx context.Context, id string, status model.PaymentStatus) error
	AddTransaction(ctx context.Context, paymentID string, tx *model.Transaction) error

	// ExpireInitiatedBefore fails initiated payments not updated since cutoff.
	// Covers clients that never returned from the bank page. Returns the number
	// of payments expired.
	ExpireInitiatedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// TrackingNumberProvider allocates caller-unique tracking numbers. Allocation
// may hit the network (redis) and must be called at most once per built
// invoice.
type TrackingNumberProvider interface {
	Next(ctx context.Context) (int64, error)
}
