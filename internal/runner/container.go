package runner

import (
	fileCollector "github.com/bundlestream/bundlestream/internal/collectors/file"
	httpCollector "github.com/bundlestream/bundlestream/internal/collectors/http"
	s3Collector "github.com/bundlestream/bundlestream/internal/collectors/s3"
	staticCollector "github.com/bundlestream/bundlestream/internal/collectors/static"
	"github.com/bundlestream/bundlestream/internal/engine"
	"github.com/samber/do/v2"
	"go.uber.org/zap"
)

// BuildContainer creates a new DI container with all dependencies registered.
// Dependencies are lazily initialized when first requested.
func BuildContainer(logger *zap.Logger) *do.RootScope {
	injector := do.New()
	do.ProvideValue(injector, logger)
	return injector
}

// BuildRegistry creates a new registry with all collector and resource
// factories registered.
func BuildRegistry(injector do.Injector) *engine.Registry {
	registry := engine.NewRegistry(injector)

	httpCollector.Register(registry)
	s3Collector.Register(registry)
	fileCollector.Register(registry)
	staticCollector.Register(registry)

	return registry
}
