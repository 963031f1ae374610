package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	v1 "github.com/bundlestream/bundlestream/apis/v1"
	"github.com/bundlestream/bundlestream/internal/engine"
	"github.com/bundlestream/bundlestream/internal/engine/sinks"
	"github.com/bundlestream/bundlestream/pkg/streaming/chunk"
	"github.com/bundlestream/bundlestream/pkg/streaming/zipstream"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
	"go.uber.org/zap"
)

type Runner struct {
	logger   *zap.Logger
	job      v1.BundleJob
	pipeline *engine.Pipeline
	sink     engine.Sink
	options  zipstream.Options
}

var defaultValidator = validator.New(validator.WithRequiredStructEnabled())

// ParseBundleJob parses a YAML or JSON job file and validates it against the
// struct tags on v1.BundleJob. It returns a validated BundleJob or an error if
// parsing or validation fails.
func ParseBundleJob(data []byte) (v1.BundleJob, error) {
	var job v1.BundleJob
	if err := yaml.Unmarshal(data, &job); err != nil {
		return v1.BundleJob{}, fmt.Errorf("failed to unmarshal job data: %w", err)
	}

	if err := defaultValidator.Struct(job); err != nil {
		return v1.BundleJob{}, fmt.Errorf("failed to validate job: %w", err)
	}

	return job, nil
}

func New(ctx context.Context, logger *zap.Logger, job v1.BundleJob) (*Runner, error) {
	logger.Info("creating runner", zap.String("job_name", job.Metadata.Name))

	injector := BuildContainer(logger)
	registry := BuildRegistry(injector)

	pipeline, err := createPipeline(ctx, logger.Named("pipeline"), registry, job)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline: %w", err)
	}

	options, err := buildOptions(job.Spec.Output)
	if err != nil {
		return nil, fmt.Errorf("failed to build archive options: %w", err)
	}

	sink, err := buildSink(ctx, job)
	if err != nil {
		return nil, fmt.Errorf("failed to build sink: %w", err)
	}

	return &Runner{
		logger:   logger,
		pipeline: pipeline,
		job:      job,
		sink:     sink,
		options:  options,
	}, nil
}

func (r *Runner) Run(ctx context.Context) error {
	for id, collector := range r.pipeline.Collectors() {
		if err := collector.Start(ctx); err != nil {
			return fmt.Errorf("failed to start collector '%s' (%s): %w", id, collector.Name(), err)
		}
	}

	defer func() {
		// Cleanup runs against a background context so it happens even if the
		// caller's context was cancelled mid-run.
		cleanupCtx := context.Background()
		for id, collector := range r.pipeline.Collectors() {
			if err := collector.Close(cleanupCtx); err != nil {
				r.logger.Error("failed to close collector", zap.String("collector_id", id), zap.String("collector_name", collector.Name()), zap.Error(err))
			}
		}
	}()

	entries, err := r.pipeline.Run(ctx)
	if err != nil {
		return fmt.Errorf("failed to run pipeline: %w", err)
	}

	if err := r.writeArchive(ctx, entries); err != nil {
		return fmt.Errorf("failed to write archive: %w", err)
	}

	return nil
}

// writeArchive streams every resolved entry through a ZIP encoder straight
// into the sink: the archive is never buffered in memory, matching the
// encoder's streaming contract all the way to the final write.
func (r *Runner) writeArchive(ctx context.Context, entries []engine.Entry) error {
	zipEntries := make([]zipstream.Entry, len(entries))
	for i, e := range entries {
		zipEntries[i] = zipstream.NewEntry(e.Name, e.Source)
	}

	encoder, err := zipstream.NewZipStream(zipEntries, r.options)
	if err != nil {
		return fmt.Errorf("failed to build archive encoder: %w", err)
	}

	filename := archiveFilename(r.job)
	if err := r.sink.Write(ctx, filename, chunk.NewReader(ctx, encoder)); err != nil {
		return fmt.Errorf("failed to write archive: %w", err)
	}

	if err := r.sink.Close(ctx); err != nil {
		return fmt.Errorf("failed to close sink: %w", err)
	}

	return nil
}

func archiveFilename(job v1.BundleJob) string {
	if job.Spec.Output != nil && job.Spec.Output.Destination != nil && job.Spec.Output.Destination.Folder != nil && job.Spec.Output.Destination.Folder.Filename != "" {
		return job.Spec.Output.Destination.Folder.Filename
	}
	if job.Spec.Output != nil && job.Spec.Output.Destination != nil && job.Spec.Output.Destination.S3 != nil {
		return job.Spec.Output.Destination.S3.Key
	}
	return job.Metadata.Name + ".zip"
}

// buildOptions derives zipstream.Options from the job's output spec. Defaults
// to deflate compression with the default deduplicator enabled.
func buildOptions(output *v1.OutputSpec) (zipstream.Options, error) {
	options := zipstream.Options{Compression: zipstream.CompressionDeflate}

	if output == nil {
		return options, nil
	}

	if output.Compression != nil {
		switch *output.Compression {
		case "deflate":
			options.Compression = zipstream.CompressionDeflate
		case "stored":
			options.Compression = zipstream.CompressionStored
		default:
			return options, fmt.Errorf("unknown compression method: %s", *output.Compression)
		}
	}

	if output.Deduplicate != nil && !*output.Deduplicate {
		options.Deduplicator = zipstream.NoDeduplicator
	}

	return options, nil
}

// buildSink creates a sink from the job's output destination. Defaults to
// stdout when no destination is configured.
func buildSink(ctx context.Context, job v1.BundleJob) (engine.Sink, error) {
	if job.Spec.Output == nil || job.Spec.Output.Destination == nil || job.Spec.Output.Destination.Stdout != nil {
		return sinks.NewStreamSink(os.Stdout), nil
	}

	dest := job.Spec.Output.Destination
	if dest.Folder != nil {
		return sinks.NewFilesystemSinkFromPath(filepath.Clean(dest.Folder.Path))
	}

	if dest.S3 != nil {
		cfg := sinks.S3Config{
			Bucket:         dest.S3.Bucket,
			ForcePathStyle: dest.S3.ForcePathStyle,
		}
		if dest.S3.Region != nil {
			cfg.Region = *dest.S3.Region
		}
		if dest.S3.Endpoint != nil {
			cfg.Endpoint = *dest.S3.Endpoint
		}
		return sinks.NewS3Sink(ctx, cfg)
	}

	return nil, fmt.Errorf("invalid destination configuration: no destination type specified")
}

// BuildVariables creates the template expansion variables map: built-in job
// variables plus any allow-listed environment variable. Returns an error if
// an allow-listed variable is not set.
func BuildVariables(job v1.BundleJob, allowedEnv []string) (map[string]string, error) {
	date := time.Now().UTC()
	variables := map[string]string{
		"JOB_NAME":         job.Metadata.Name,
		"JOB_DATE_ISO8601": date.Format(engine.ISO8601Basic),
		"JOB_DATE_RFC3339": date.Format(time.RFC3339),
	}

	var errs error
	for _, envName := range allowedEnv {
		val, ok := os.LookupEnv(envName)
		if !ok {
			errs = errors.Join(errs, fmt.Errorf("environment variable %q is not set", envName))
			continue
		}
		variables[envName] = val
	}

	if errs != nil {
		return nil, errs
	}

	return variables, nil
}
