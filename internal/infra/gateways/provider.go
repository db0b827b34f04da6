package gateways

import (
	"fmt"

	"shaparak-pay/internal/domain"
	"shaparak-pay/internal/domain/ports/adapter"
)

var _ adapter.Provider = (*Registry)(nil)

// Registry maps gateway names to adapter instances. Registration happens once
// at wiring time; Provide is a pure lookup and safe for concurrent use.
type Registry struct {
	gateways map[string]adapter.Gateway
}

func NewRegistry(gws ...adapter.Gateway) *Registry {
	r := &Registry{gateways: make(map[string]adapter.Gateway, len(gws))}
	for _, g := range gws {
		r.gateways[g.Name()] = g
	}
	return r
}

func (r *Registry) Provide(name string) (adapter.Gateway, error) {
	g, ok := r.gateways[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrGatewayNotRegistered, name)
	}
	return g, nil
}

// Names lists registered gateway names, for config validation and handlers.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.gateways))
	for n := range r.gateways {
		names = append(names, n)
	}
	return names
}
