package runner

import (
	"context"
	"fmt"

	v1 "github.com/bundlestream/bundlestream/apis/v1"
	"github.com/bundlestream/bundlestream/internal/engine"
	"go.uber.org/zap"
)

// createPipeline builds a collector and resource for every entry in the job's
// resource list, in declaration order. Each resource spec is self-contained
// (a full HTTP URL, S3 bucket/key, file path, or static value), so a fresh
// collector is built per resource rather than shared by reference.
func createPipeline(ctx context.Context, logger *zap.Logger, registry *engine.Registry, job v1.BundleJob) (*engine.Pipeline, error) {
	logger.Info("creating pipeline", zap.String("job_name", job.Metadata.Name))

	pipeline := engine.NewPipeline(job.Metadata.Name)

	for _, resourceSpec := range job.Spec.Resources {
		resolved, err := ResolveResourceSpec(resourceSpec)
		if err != nil {
			return nil, err
		}

		var collector engine.Collector
		if resolved.Kind != "static" {
			collector, err = registry.CreateCollector(ctx, resolved.Kind, resolved.Spec)
			if err != nil {
				return nil, fmt.Errorf("resource %q: failed to create %s collector: %w", resourceSpec.ID, resolved.Kind, err)
			}

			if err := pipeline.AddCollector(resourceSpec.ID, collector); err != nil {
				return nil, fmt.Errorf("resource %q: %w", resourceSpec.ID, err)
			}
		}

		res, err := registry.CreateResource(ctx, resolved.Kind, resourceSpec.ID, collector, resolved.Spec)
		if err != nil {
			return nil, fmt.Errorf("resource %q: failed to create %s resource: %w", resourceSpec.ID, resolved.Kind, err)
		}

		// CreateResource builds the resource around the resource's own ID, but
		// the entry name in the archive is whatever the job file declared.
		entryResource := res
		if resourceSpec.EntryName != resourceSpec.ID {
			entryResource = renameEntry(res, resourceSpec.EntryName)
		}

		if err := pipeline.AddResource(resourceSpec.ID, entryResource); err != nil {
			return nil, fmt.Errorf("resource %q: %w", resourceSpec.ID, err)
		}

		logger.Info("created resource", zap.String("resource_id", resourceSpec.ID), zap.String("kind", resolved.Kind))
	}

	return pipeline, nil
}

// renameEntry wraps a resource so its resolved entry carries the declared
// archive name instead of the name the underlying factory defaulted to.
func renameEntry(r engine.Resource, entryName string) engine.Resource {
	return engine.ResourceFunc(r.Name(), r.Kind(), func(ctx context.Context) (engine.Entry, error) {
		entry, err := r.Resolve(ctx)
		if err != nil {
			return engine.Entry{}, err
		}
		entry.Name = entryName
		return entry, nil
	})
}
