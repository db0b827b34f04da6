//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"shaparak-pay/internal/domain"
	"shaparak-pay/internal/domain/model"
	"shaparak-pay/internal/usecase"
)

func TestInvoiceBuilder_Build(t *testing.T) {
	ctx := context.Background()
	provider := newMockProvider(&mockGateway{name: "irankish"})

	t.Run("success appends tracking number to callback url", func(t *testing.T) {
		tracking := &seqTracking{}
		inv, err := usecase.NewInvoiceBuilder(provider, tracking).
			SetGateway("irankish").
			SetAmount(model.NewMoney(50000)).
			SetCallbackURL("https://shop.example/return?order=42").
			AddData("mobile", "09120000000").
			Build(ctx)
		if err != nil {
			t.Fatalf("build: %v", err)
		}
		if inv.TrackingNumber != 1 {
			t.Fatalf("tracking number = %d, want 1", inv.TrackingNumber)
		}
		u, err := url.Parse(inv.CallbackURL)
		if err != nil {
			t.Fatalf("parse callback url: %v", err)
		}
		if got := u.Query().Get(usecase.TrackingNumberParam); got != "1" {
			t.Fatalf("callback url tracking param = %q, want 1", got)
		}
		if got := u.Query().Get("order"); got != "42" {
			t.Fatal("existing query params must survive")
		}
		if inv.Data("mobile") != "09120000000" {
			t.Fatal("additional data lost")
		}
	})

	t.Run("tracking number allocated exactly once", func(t *testing.T) {
		tracking := &seqTracking{}
		_, err := usecase.NewInvoiceBuilder(provider, tracking).
			SetGateway("irankish").
			SetAmount(model.NewMoney(100)).
			SetCallbackURL("https://shop.example/return").
			Build(ctx)
		if err != nil {
			t.Fatalf("build: %v", err)
		}
		if tracking.calls != 1 {
			t.Fatalf("tracking allocations = %d, want 1", tracking.calls)
		}
	})

	t.Run("missing gateway", func(t *testing.T) {
		_, err := usecase.NewInvoiceBuilder(provider, &seqTracking{}).
			SetAmount(model.NewMoney(100)).
			SetCallbackURL("https://shop.example/return").
			Build(ctx)
		if !errors.Is(err, domain.ErrGatewayTypeNotSet) {
			t.Fatalf("want ErrGatewayTypeNotSet, got %v", err)
		}
	})

	t.Run("unregistered gateway", func(t *testing.T) {
		_, err := usecase.NewInvoiceBuilder(provider, &seqTracking{}).
			SetGateway("nope").
			SetAmount(model.NewMoney(100)).
			SetCallbackURL("https://shop.example/return").
			Build(ctx)
		if !errors.Is(err, domain.ErrGatewayNotRegistered) {
			t.Fatalf("want ErrGatewayNotRegistered, got %v", err)
		}
	})

	t.Run("amount not set", func(t *testing.T) {
		_, err := usecase.NewInvoiceBuilder(provider, &seqTracking{}).
			SetGateway("irankish").
			SetCallbackURL("https://shop.example/return").
			Build(ctx)
		if !errors.Is(err, domain.ErrAmountNotSet) {
			t.Fatalf("want ErrAmountNotSet, got %v", err)
		}
	})

	t.Run("non-positive amount", func(t *testing.T) {
		_, err := usecase.NewInvoiceBuilder(provider, &seqTracking{}).
			SetGateway("irankish").
			SetAmount(model.NewMoney(0)).
			SetCallbackURL("https://shop.example/return").
			Build(ctx)
		if !errors.Is(err, domain.ErrAmountNotSet) {
			t.Fatalf("want ErrAmountNotSet, got %v", err)
		}
	})

	t.Run("missing callback url", func(t *testing.T) {
		_, err := usecase.NewInvoiceBuilder(provider, &seqTracking{}).
			SetGateway("irankish").
			SetAmount(model.NewMoney(100)).
			Build(ctx)
		if !errors.Is(err, domain.ErrCallbackURLNotSet) {
			t.Fatalf("want ErrCallbackURLNotSet, got %v", err)
		}
	})

	t.Run("tracking provider failure propagates", func(t *testing.T) {
		tracking := &seqTracking{err: errors.New("redis down")}
		_, err := usecase.NewInvoiceBuilder(provider, tracking).
			SetGateway("irankish").
			SetAmount(model.NewMoney(100)).
			SetCallbackURL("https://shop.example/return").
			Build(ctx)
		if err == nil {
			t.Fatal("want error when tracking allocation fails")
		}
	})
}
