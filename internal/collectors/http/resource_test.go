package http

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bundlestream/bundlestream/pkg/streaming/chunk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type getResourceTest struct {
	name               string
	config             GetConfig
	response           string
	responseStatusCode int // defaults to 200
	gzipResponse       bool
	expected           string
	expectErr          string
	validateReq        func(t *testing.T, req *http.Request)
}

func runGetResourceTests(t *testing.T, tests []getResourceTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			statusCode := tt.responseStatusCode
			if statusCode == 0 {
				statusCode = http.StatusOK
			}

			var capturedReq *http.Request
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				capturedReq = r
				if tt.gzipResponse {
					w.Header().Set("Content-Encoding", "gzip")
					w.WriteHeader(statusCode)
					gw := gzip.NewWriter(w)
					_, _ = gw.Write([]byte(tt.response))
					_ = gw.Close()
					return
				}
				w.WriteHeader(statusCode)
				_, _ = w.Write([]byte(tt.response))
			}))
			defer server.Close()

			collectorIface, err := NewCollector(Config{
				BaseURL: server.URL,
			}, WithHTTPClient(server.Client()))
			require.NoError(t, err)
			collector := collectorIface.(*Collector)

			res := NewGetResource("r1", "entry.bin", collector, tt.config)
			entry, err := res.Resolve(t.Context())

			// resolution is lazy: the request is only issued once the source is
			// read, and the source is single-pass, so the captured request is
			// checked after the one read of the body.
			if tt.expectErr != "" {
				if err == nil {
					_, err = io.ReadAll(chunk.NewReader(t.Context(), entry.Source))
				}
				if tt.validateReq != nil {
					tt.validateReq(t, capturedReq)
				}
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectErr)
				return
			}

			require.NoError(t, err)
			data, err := io.ReadAll(chunk.NewReader(t.Context(), entry.Source))
			require.NoError(t, err)
			if tt.validateReq != nil {
				tt.validateReq(t, capturedReq)
			}
			assert.Equal(t, tt.expected, string(data))
		})
	}
}

func TestGetResource_Resolve(t *testing.T) {
	t.Run("path handling", func(t *testing.T) {
		runGetResourceTests(t, []getResourceTest{
			{
				name:     "simple path",
				config:   GetConfig{Path: "/test"},
				response: `{"status":"ok"}`,
				expected: `{"status":"ok"}`,
			},
			{
				name:     "path without leading slash",
				config:   GetConfig{Path: "test"},
				response: "ok",
				expected: "ok",
				validateReq: func(t *testing.T, req *http.Request) {
					assert.Equal(t, "/test", req.URL.Path)
				},
			},
		})
	})

	t.Run("request building", func(t *testing.T) {
		runGetResourceTests(t, []getResourceTest{
			{
				name: "custom headers",
				config: GetConfig{
					Path:    "/test",
					Headers: map[string]string{"X-Custom-Header": "custom-value"},
				},
				response: "ok",
				expected: "ok",
				validateReq: func(t *testing.T, req *http.Request) {
					assert.Equal(t, "custom-value", req.Header.Get("X-Custom-Header"))
				},
			},
			{
				name: "query params",
				config: GetConfig{
					Path:   "/test",
					Params: map[string]string{"page": "1", "limit": "10"},
				},
				response: "ok",
				expected: "ok",
				validateReq: func(t *testing.T, req *http.Request) {
					assert.Equal(t, "1", req.URL.Query().Get("page"))
					assert.Equal(t, "10", req.URL.Query().Get("limit"))
				},
			},
		})
	})

	t.Run("gzip decoding", func(t *testing.T) {
		runGetResourceTests(t, []getResourceTest{
			{
				name:         "gzip-encoded body",
				config:       GetConfig{Path: "/test"},
				response:     "plain text payload",
				gzipResponse: true,
				expected:     "plain text payload",
			},
		})
	})

	t.Run("error handling", func(t *testing.T) {
		runGetResourceTests(t, []getResourceTest{
			{
				name:               "500 internal server error",
				config:             GetConfig{Path: "/test"},
				response:           "Internal Server Error",
				responseStatusCode: http.StatusInternalServerError,
				expectErr:          "500",
			},
			{
				name:               "404 not found",
				config:             GetConfig{Path: "/nonexistent"},
				response:           "Not Found",
				responseStatusCode: http.StatusNotFound,
				expectErr:          "404",
			},
		})
	})

	t.Run("restartable", func(t *testing.T) {
		var requestCount int
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestCount++
			_, _ = w.Write([]byte("attempt"))
		}))
		defer server.Close()

		collectorIface, err := NewCollector(Config{BaseURL: server.URL}, WithHTTPClient(server.Client()))
		require.NoError(t, err)
		collector := collectorIface.(*Collector)

		res := NewGetResource("r1", "entry.bin", collector, GetConfig{Path: "/test"})

		entryA, err := res.Resolve(t.Context())
		require.NoError(t, err)
		_, err = io.ReadAll(chunk.NewReader(t.Context(), entryA.Source))
		require.NoError(t, err)

		entryB, err := res.Resolve(t.Context())
		require.NoError(t, err)
		_, err = io.ReadAll(chunk.NewReader(t.Context(), entryB.Source))
		require.NoError(t, err)

		assert.Equal(t, 2, requestCount)
	})
}
