package http

import (
	"context"
	"time"

	v1 "github.com/bundlestream/bundlestream/apis/v1"
	"github.com/bundlestream/bundlestream/internal/engine"
	"github.com/samber/do/v2"
)

// Register registers the http collector and resource factories with the registry.
func Register(r *engine.Registry) {
	r.RegisterCollector(CollectorKind, engine.NewCollectorFactory(CollectorKind, collectorFactory))
	r.RegisterResource(ResourceKind, engine.NewResourceFactory(ResourceKind, resourceFactory))
}

func collectorFactory(ctx context.Context, i do.Injector, spec v1.HTTPResource) (engine.Collector, error) {
	cfg := Config{
		BaseURL:  spec.URL,
		Headers:  spec.Headers,
		Insecure: spec.Insecure,
	}

	if spec.Auth != nil && spec.Auth.Basic != nil {
		cfg.Auth = &AuthConfig{
			Basic: &BasicAuthConfig{
				Username: spec.Auth.Basic.Username,
				Password: spec.Auth.Basic.Password,
				Encoded:  spec.Auth.Basic.Encoded,
			},
		}
	}

	if spec.Timeout != nil {
		cfg.Timeout = time.Duration(*spec.Timeout) * time.Second
	}

	return NewCollector(cfg)
}

func resourceFactory(ctx context.Context, i do.Injector, id string, collector *Collector, spec v1.HTTPResource) (engine.Resource, error) {
	return NewGetResource(id, id, collector, GetConfig{Path: "", Headers: spec.Headers}), nil
}
