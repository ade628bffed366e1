package processor

import (
	"context"
	"errors"
	"fmt"

	"github.com/yourorg/checkout-relay/internal/adapter"
	"github.com/yourorg/checkout-relay/internal/session"
)

// ErrAdapterNotFound is returned for an unregistered vendor.
var ErrAdapterNotFound = errors.New("no adapter registered for vendor")

// Processor selects the vendor adapter for a call.
type Processor struct {
	adapterRegistry map[string]adapter.ProviderAdapter
}

// NewProcessor creates a new Processor with a given adapter registry.
func NewProcessor(registry map[string]adapter.ProviderAdapter) *Processor {
	if registry == nil {
		panic("adapter registry cannot be nil")
	}
	return &Processor{
		adapterRegistry: registry,
	}
}

// NewProcessorFromAdapters registers each adapter under its own name.
func NewProcessorFromAdapters(adapters ...adapter.ProviderAdapter) *Processor {
	registry := make(map[string]adapter.ProviderAdapter, len(adapters))
	for _, a := range adapters {
		registry[a.GetName()] = a
	}
	return NewProcessor(registry)
}

// Has reports whether vendor has an adapter.
func (p *Processor) Has(vendor string) bool {
	_, ok := p.adapterRegistry[vendor]
	return ok
}

// Process dispatches one request to the vendor's adapter.
func (p *Processor) Process(ctx context.Context, vendor string, req adapter.Request, call session.Call) (adapter.ProviderResult, error) {
	a, ok := p.adapterRegistry[vendor]
	if !ok {
		return adapter.ProviderResult{Provider: vendor}, fmt.Errorf("%w: %s", ErrAdapterNotFound, vendor)
	}

	res, err := a.Process(ctx, req, call)
	if err != nil {
		return res, fmt.Errorf("adapter %s failed to process %s: %w", vendor, req.Operation, err)
	}
	return res, nil
}
