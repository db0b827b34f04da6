//go:build !integration

package gateways

import (
	"errors"
	"sort"
	"testing"

	"shaparak-pay/internal/domain"
)

func TestRegistry(t *testing.T) {
	ik := newTestIranKish(t)
	sm := newTestSaman(t)
	reg := NewRegistry(ik, sm)

	t.Run("provide by name", func(t *testing.T) {
		g, err := reg.Provide("irankish")
		if err != nil {
			t.Fatalf("provide: %v", err)
		}
		if g.Name() != "irankish" {
			t.Fatalf("got %q", g.Name())
		}
	})

	t.Run("unknown name", func(t *testing.T) {
		_, err := reg.Provide("zarinpal")
		if !errors.Is(err, domain.ErrGatewayNotRegistered) {
			t.Fatalf("want ErrGatewayNotRegistered, got %v", err)
		}
	})

	t.Run("names lists registrations", func(t *testing.T) {
		names := reg.Names()
		sort.Strings(names)
		if len(names) != 2 || names[0] != "irankish" || names[1] != "saman" {
			t.Fatalf("names = %v", names)
		}
	})
}
