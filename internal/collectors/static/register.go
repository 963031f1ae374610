package static

import (
	"context"

	v1 "github.com/bundlestream/bundlestream/apis/v1"
	"github.com/bundlestream/bundlestream/internal/engine"
	"github.com/samber/do/v2"
)

// Register registers the static resource factory with the registry. Static
// resources need no collector, so only a resource factory is registered.
func Register(r *engine.Registry) {
	r.RegisterResource(ResourceKind, engine.NewResourceFactoryWithoutCollector(ResourceKind, resourceFactory))
}

func resourceFactory(ctx context.Context, i do.Injector, id string, spec v1.StaticResource) (engine.Resource, error) {
	return NewValueResource(id, id, spec.Value), nil
}
