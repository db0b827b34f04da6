//go:build !integration

package redis

import (
	"context"
	"strconv"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"shaparak-pay/internal/config"
)

func newTestClient(t *testing.T) (RedisClient, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	cli, err := NewClient(context.Background(), &config.RedisConfig{URL: mr.Addr()})
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	t.Cleanup(func() { _ = cli.Close() })
	return cli, mr
}

func TestTrackingNumberProvider_Next(t *testing.T) {
	ctx := context.Background()
	cli, _ := newTestClient(t)
	p := NewTrackingNumberProvider(cli)

	t.Run("monotonic from one", func(t *testing.T) {
		for want := int64(1); want <= 3; want++ {
			got, err := p.Next(ctx)
			if err != nil {
				t.Fatalf("next: %v", err)
			}
			if got != want {
				t.Fatalf("next = %d, want %d", got, want)
			}
		}
	})
}

func TestTrackingNumberProvider_Seeded(t *testing.T) {
	ctx := context.Background()
	cli, mr := newTestClient(t)
	mr.Set(trackingNumberKey, strconv.Itoa(1000))

	p := NewTrackingNumberProvider(cli)
	got, err := p.Next(ctx)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if got != 1001 {
		t.Fatalf("next = %d, want 1001 after seeding", got)
	}
}

func TestTrackingNumberProvider_RedisDown(t *testing.T) {
	ctx := context.Background()
	cli, mr := newTestClient(t)
	p := NewTrackingNumberProvider(cli)
	mr.Close()

	if _, err := p.Next(ctx); err == nil {
		t.Fatal("want error when redis is unreachable")
	}
}
