package engine

import (
	"context"
	"fmt"
	"slices"

	"github.com/samber/do/v2"
	"github.com/samber/lo"
)

type CollectorFactory func(ctx context.Context, i do.Injector, input any) (Collector, error)
type ResourceFactory func(ctx context.Context, i do.Injector, id string, collector Collector, input any) (Resource, error)

// TypedCollectorFactory is a strongly-typed collector factory.
// T is the concrete spec type (e.g. v1.HTTPResource).
type TypedCollectorFactory[T any] func(ctx context.Context, i do.Injector, spec T) (Collector, error)

// TypedResourceFactory is a strongly-typed resource factory.
// C is the concrete collector type (e.g. *http.Collector).
// S is the concrete resource spec type (e.g. v1.HTTPResource).
type TypedResourceFactory[C Collector, S any] func(ctx context.Context, i do.Injector, id string, collector C, spec S) (Resource, error)

// TypedResourceFactoryWithoutCollector is a strongly-typed resource factory for
// resources that don't require a collector (e.g. a static literal value).
// S is the concrete resource spec type (e.g. v1.StaticResource).
type TypedResourceFactoryWithoutCollector[S any] func(ctx context.Context, i do.Injector, id string, spec S) (Resource, error)

// NewCollectorFactory wraps a typed collector factory into a generic CollectorFactory.
// It centralizes the unsafe cast from any → T and provides a clear error if the type mismatches.
func NewCollectorFactory[T any](kind string, f TypedCollectorFactory[T]) CollectorFactory {
	return func(ctx context.Context, i do.Injector, input any) (Collector, error) {
		spec, ok := input.(T)
		if !ok {
			return nil, fmt.Errorf("invalid collector spec for kind %q: %T", kind, input)
		}
		return f(ctx, i, spec)
	}
}

// NewResourceFactory wraps a typed resource factory into a generic ResourceFactory.
// It centralizes the unsafe casts from Collector → C and any → S and provides clear errors.
func NewResourceFactory[C Collector, S any](kind string, f TypedResourceFactory[C, S]) ResourceFactory {
	return func(ctx context.Context, i do.Injector, id string, collector Collector, input any) (Resource, error) {
		if collector == nil {
			return nil, fmt.Errorf("resource kind %q requires a collector, got nil", kind)
		}

		typedCollector, ok := collector.(C)
		if !ok {
			return nil, fmt.Errorf("invalid collector type for resource %q with id %s: %T", kind, id, collector)
		}

		spec, ok := input.(S)
		if !ok {
			return nil, fmt.Errorf("invalid resource spec for kind %q with id %s: %T", kind, id, input)
		}

		return f(ctx, i, id, typedCollector, spec)
	}
}

// NewResourceFactoryWithoutCollector wraps a typed resource factory for resources
// that don't require a collector. It centralizes the unsafe cast from any → S and
// provides a clear error if the type mismatches.
func NewResourceFactoryWithoutCollector[S any](kind string, f TypedResourceFactoryWithoutCollector[S]) ResourceFactory {
	return func(ctx context.Context, i do.Injector, id string, _ Collector, input any) (Resource, error) {
		spec, ok := input.(S)
		if !ok {
			return nil, fmt.Errorf("invalid resource spec for kind %q with id %s: %T", kind, id, input)
		}

		return f(ctx, i, id, spec)
	}
}

// UnsupportedTypeError is returned when a collector or resource kind is not registered.
type UnsupportedTypeError struct {
	Category  string   // "collector" or "resource"
	Kind      string   // the requested kind
	Available []string // registered kinds
}

func (e *UnsupportedTypeError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("unsupported %s type %q: no %ss registered", e.Category, e.Kind, e.Category)
	}
	return fmt.Sprintf("unsupported %s type %q (available: %v)", e.Category, e.Kind, e.Available)
}

// Registry maps collector/resource kinds (as they appear in a job file) to the
// factories that build them. It is backed by a samber/do injector so factories
// can request shared dependencies (an HTTP client, an AWS config) without the
// registry itself constructing them eagerly.
type Registry struct {
	injector   do.Injector
	collectors map[string]CollectorFactory
	resources  map[string]ResourceFactory
}

func NewRegistry(injector do.Injector) *Registry {
	return &Registry{
		injector:   injector,
		collectors: make(map[string]CollectorFactory),
		resources:  make(map[string]ResourceFactory),
	}
}

func (r *Registry) RegisterCollector(kind string, factory CollectorFactory) {
	r.collectors[kind] = factory
}

func (r *Registry) RegisterResource(kind string, factory ResourceFactory) {
	r.resources[kind] = factory
}

func (r *Registry) CreateCollector(ctx context.Context, kind string, spec any) (Collector, error) {
	factory, ok := r.collectors[kind]
	if !ok {
		return nil, &UnsupportedTypeError{Category: "collector", Kind: kind, Available: r.AvailableCollectors()}
	}
	return factory(ctx, r.injector, spec)
}

func (r *Registry) CreateResource(ctx context.Context, kind string, id string, collector Collector, spec any) (Resource, error) {
	factory, ok := r.resources[kind]
	if !ok {
		return nil, &UnsupportedTypeError{Category: "resource", Kind: kind, Available: r.AvailableResources()}
	}
	return factory(ctx, r.injector, id, collector, spec)
}

func (r *Registry) AvailableCollectors() []string {
	collectors := lo.Keys(r.collectors)
	slices.Sort(collectors)
	return collectors
}

func (r *Registry) AvailableResources() []string {
	resources := lo.Keys(r.resources)
	slices.Sort(resources)
	return resources
}
