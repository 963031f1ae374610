package s3

import (
	"context"

	v1 "github.com/bundlestream/bundlestream/apis/v1"
	"github.com/bundlestream/bundlestream/internal/engine"
	"github.com/samber/do/v2"
)

// Register registers the s3 collector and resource factories with the registry.
func Register(r *engine.Registry) {
	r.RegisterCollector(CollectorKind, engine.NewCollectorFactory(CollectorKind, collectorFactory))
	r.RegisterResource(ResourceKind, engine.NewResourceFactory(ResourceKind, resourceFactory))
}

func collectorFactory(ctx context.Context, i do.Injector, spec v1.S3Resource) (engine.Collector, error) {
	cfg := Config{ForcePathStyle: spec.ForcePathStyle}
	if spec.Region != nil {
		cfg.Region = *spec.Region
	}
	if spec.Endpoint != nil {
		cfg.Endpoint = *spec.Endpoint
	}

	return NewCollector(ctx, cfg)
}

func resourceFactory(ctx context.Context, i do.Injector, id string, collector *Collector, spec v1.S3Resource) (engine.Resource, error) {
	return NewGetObjectResource(id, id, collector, GetObjectConfig{Bucket: spec.Bucket, Key: spec.Key}), nil
}
