package file

import (
	"context"

	v1 "github.com/bundlestream/bundlestream/apis/v1"
	"github.com/bundlestream/bundlestream/internal/engine"
	"github.com/samber/do/v2"
	"github.com/spf13/afero"
)

// Register registers the file collector and resource factories with the registry.
func Register(r *engine.Registry) {
	r.RegisterCollector(CollectorKind, engine.NewCollectorFactory(CollectorKind, collectorFactory))
	r.RegisterResource(ResourceKind, engine.NewResourceFactory(ResourceKind, resourceFactory))
}

func collectorFactory(ctx context.Context, i do.Injector, spec v1.FileResource) (engine.Collector, error) {
	return NewCollector(afero.NewOsFs()), nil
}

func resourceFactory(ctx context.Context, i do.Injector, id string, collector *Collector, spec v1.FileResource) (engine.Resource, error) {
	return NewReadResource(id, id, collector, ReadConfig{Path: spec.Path}), nil
}
