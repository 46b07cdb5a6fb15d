package payment

import (
	"fmt"

	"sitepay-be/internal/config"
)

type gatewayFactory func(config.GatewayParams, Options) Gateway

var factories = map[string]gatewayFactory{
	psbankName:    NewPSBankGateway,
	qiwiName:      NewQIWIGateway,
	robokassaName: NewRobokassaGateway,
}

// Registry resolves gateways by the name used in callback URLs.
type Registry struct {
	gateways map[string]Gateway
}

// NewRegistry builds every known gateway from its parameters. A gateway
// with no parameters still resolves; its operations fail with
// ErrConfiguration.
func NewRegistry(params map[string]config.GatewayParams, opts Options) *Registry {
	r := &Registry{gateways: make(map[string]Gateway, len(factories))}
	for name, build := range factories {
		r.gateways[name] = build(params[name], opts)
	}
	return r
}

// NewRegistryOf wraps prebuilt gateways.
func NewRegistryOf(gateways ...Gateway) *Registry {
	r := &Registry{gateways: make(map[string]Gateway, len(gateways))}
	for _, g := range gateways {
		r.gateways[g.Name()] = g
	}
	return r
}

func (r *Registry) Get(name string) (Gateway, error) {
	g, ok := r.gateways[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownGateway, name)
	}
	return g, nil
}
