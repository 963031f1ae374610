// Package s3 fetches archive entry bytes from S3-compatible object storage.
package s3

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/bundlestream/bundlestream/internal/engine"
)

const CollectorKind = "s3"

// Getter is the subset of the S3 client the collector depends on; satisfied
// by *awss3.Client and by mocks in tests.
type Getter interface {
	GetObject(ctx context.Context, input *awss3.GetObjectInput, opts ...func(*awss3.Options)) (*awss3.GetObjectOutput, error)
}

type Config struct {
	Region         string
	Endpoint       string
	ForcePathStyle bool
}

// Collector holds the S3 client shared by every object fetched with the same
// region/endpoint configuration.
type Collector struct {
	client Getter
}

func NewCollector(ctx context.Context, cfg Config) (engine.Collector, error) {
	var opts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Opts []func(*awss3.Options)
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *awss3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}
	if cfg.ForcePathStyle {
		s3Opts = append(s3Opts, func(o *awss3.Options) {
			o.UsePathStyle = true
		})
	}

	return NewCollectorWithClient(awss3.NewFromConfig(awsCfg, s3Opts...)), nil
}

// NewCollectorWithClient builds a collector around an already-configured
// client, useful for testing against a fake Getter.
func NewCollectorWithClient(client Getter) engine.Collector {
	return &Collector{client: client}
}

func (c *Collector) Name() string {
	return CollectorKind
}

func (c *Collector) Kind() string {
	return CollectorKind
}

func (c *Collector) Start(ctx context.Context) error {
	return nil
}

func (c *Collector) Close(ctx context.Context) error {
	return nil
}
