package redis

import (
	"context"
	"fmt"

	"shaparak-pay/internal/domain/ports/repository"
)

const trackingNumberKey = "payments:tracking_number"

var _ repository.TrackingNumberProvider = (*TrackingNumberProvider)(nil)

// TrackingNumberProvider allocates tracking numbers with a redis INCR, which
// keeps them unique across processes. The counter can be seeded by setting
// the key before the first allocation.
type TrackingNumberProvider struct {
	client RedisClient
}

func NewTrackingNumberProvider(client RedisClient) *TrackingNumberProvider {
	return &TrackingNumberProvider{client: client}
}

func (p *TrackingNumberProvider) Next(ctx context.Context) (int64, error) {
	n, err := p.client.Incr(ctx, trackingNumberKey)
	if err != nil {
		return 0, fmt.Errorf("incr tracking number: %w", err)
	}
	return n, nil
}
