package runner

import (
	"archive/zip"
	"bytes"
	"testing"

	v1 "github.com/bundlestream/bundlestream/apis/v1"
	"github.com/bundlestream/bundlestream/internal/engine/sinks"
	"github.com/bundlestream/bundlestream/pkg/streaming/zipstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParseBundleJob(t *testing.T) {
	data := []byte(`
kind: BundleJob
metadata:
  name: test-job
spec:
  resources:
    - id: notice
      entry_name: notice.txt
      static:
        value: hello
`)

	job, err := ParseBundleJob(data)
	require.NoError(t, err)
	assert.Equal(t, "test-job", job.Metadata.Name)
	require.Len(t, job.Spec.Resources, 1)
	require.NotNil(t, job.Spec.Resources[0].Static)
	assert.Equal(t, "hello", job.Spec.Resources[0].Static.Value)
}

func TestParseBundleJob_MissingResources(t *testing.T) {
	data := []byte(`
kind: BundleJob
metadata:
  name: test-job
spec:
  resources: []
`)

	_, err := ParseBundleJob(data)
	require.Error(t, err)
}

func TestRunner_Run_WritesArchiveInOrder(t *testing.T) {
	job := v1.BundleJob{
		Kind:     "BundleJob",
		Metadata: v1.Metadata{Name: "test-job"},
		Spec: v1.BundleJobSpec{
			Resources: []v1.ResourceSpec{
				{ID: "first", EntryName: "a.txt", Static: &v1.StaticResource{Value: "first"}},
				{ID: "second", EntryName: "b.txt", Static: &v1.StaticResource{Value: "second"}},
			},
		},
	}

	logger := zap.NewNop()
	r, err := New(t.Context(), logger, job)
	require.NoError(t, err)

	var buf bytes.Buffer
	r.sink = sinks.NewStreamSink(&buf)
	r.options = zipstream.Options{Compression: zipstream.CompressionStored}

	require.NoError(t, r.Run(t.Context()))
	assert.Positive(t, buf.Len())

	// Local file header signature 0x04034b50, little-endian.
	data := buf.Bytes()
	require.GreaterOrEqual(t, len(data), 4)
	assert.Equal(t, []byte{0x50, 0x4b, 0x03, 0x04}, data[0:4])

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	require.Len(t, zr.File, 2)
	assert.Equal(t, "a.txt", zr.File[0].Name)
	assert.Equal(t, "b.txt", zr.File[1].Name)
}
