package s3

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/bundlestream/bundlestream/internal/engine"
	"github.com/bundlestream/bundlestream/pkg/streaming/chunk"
	"github.com/bundlestream/bundlestream/pkg/streaming/resource"
)

const ResourceKind = "s3"

type GetObjectConfig struct {
	Bucket string
	Key    string
}

type getArgs struct {
	collector *Collector
	config    GetObjectConfig
}

// NewGetObjectResource builds an engine.Resource that fetches bucket/key on
// every Resolve. A GetObject response body is not seekable, so a restart
// mid-stream reissues the request rather than rewinding the body.
func NewGetObjectResource(id, entryName string, collector *Collector, cfg GetObjectConfig) engine.Resource {
	open := resource.ResourceStreamFunction(fetchObject)

	return engine.ResourceFunc(id, ResourceKind, func(ctx context.Context) (engine.Entry, error) {
		stream := open(getArgs{collector: collector, config: cfg})
		return engine.Entry{Name: entryName, Source: stream}, nil
	})
}

func fetchObject(ctx context.Context, args getArgs) (chunk.Source, error) {
	out, err := args.collector.client.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(args.config.Bucket),
		Key:    aws.String(args.config.Key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get s3://%s/%s: %w", args.config.Bucket, args.config.Key, err)
	}

	return chunk.FromReader(out.Body, 0), nil
}
