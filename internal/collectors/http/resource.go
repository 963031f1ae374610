package http

import (
	"compress/gzip"
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/bundlestream/bundlestream/internal/engine"
	"github.com/bundlestream/bundlestream/pkg/streaming/chunk"
	"github.com/bundlestream/bundlestream/pkg/streaming/resource"
)

const ResourceKind = "http"

// GetConfig describes one HTTP resource: a GET request against the
// collector's base URL whose (possibly gzip-encoded) body becomes the
// archive entry's bytes, verbatim.
type GetConfig struct {
	Path    string
	Headers map[string]string
	Params  map[string]string
}

type getArgs struct {
	collector *Collector
	config    GetConfig
}

// NewGetResource builds an engine.Resource that fetches entryName from
// collector on every Resolve. The request is re-issued, not replayed, if the
// encoder needs to restart mid-stream: an http.Response body has no seek
// semantics, so resource.ResourceStreamFunction is the only way to make it
// safe for the archive to retry.
func NewGetResource(id, entryName string, collector *Collector, cfg GetConfig) engine.Resource {
	open := resource.ResourceStreamFunction(fetchGet)

	return engine.ResourceFunc(id, ResourceKind, func(ctx context.Context) (engine.Entry, error) {
		stream := open(getArgs{collector: collector, config: cfg})
		return engine.Entry{Name: entryName, Source: stream}, nil
	})
}

func fetchGet(ctx context.Context, args getArgs) (chunk.Source, error) {
	reqURL, err := buildURL(args.collector.BaseURL(), args.config)
	if err != nil {
		return nil, fmt.Errorf("failed to build request URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for k, v := range args.config.Headers {
		req.Header.Set(k, v)
	}

	resp, err := args.collector.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer func() { _ = resp.Body.Close() }()
		return nil, fmt.Errorf("request to %s failed with status %d", reqURL, resp.StatusCode)
	}

	body := resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzipReader, err := gzip.NewReader(body)
		if err != nil {
			_ = body.Close()
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		return chunk.FromReader(gzipAndBodyCloser{gzipReader, body}, 0), nil
	}

	return chunk.FromReader(body, 0), nil
}

// gzipAndBodyCloser closes both the gzip reader and the underlying response
// body, since closing one does not close the other.
type gzipAndBodyCloser struct {
	*gzip.Reader
	body interface{ Close() error }
}

func (c gzipAndBodyCloser) Close() error {
	gzErr := c.Reader.Close()
	bodyErr := c.body.Close()
	if gzErr != nil {
		return gzErr
	}
	return bodyErr
}

func buildURL(base *url.URL, cfg GetConfig) (*url.URL, error) {
	pathURL, err := url.Parse(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse path '%s': %w", cfg.Path, err)
	}

	fullURL := base.ResolveReference(pathURL)

	if len(cfg.Params) > 0 {
		query := fullURL.Query()
		for k, v := range cfg.Params {
			query.Set(k, v)
		}
		fullURL.RawQuery = query.Encode()
	}

	return fullURL, nil
}
