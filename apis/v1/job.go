// Package v1 defines the on-disk shape of a bundle job: the declarative
// resource list and output configuration the bundle runner resolves into a
// streamed ZIP archive.
package v1

// BundleJob is the top-level document a job file decodes into.
type BundleJob struct {
	Kind     string        `yaml:"kind" json:"kind" validate:"required,eq=BundleJob" template:"-"`
	Metadata Metadata      `yaml:"metadata" json:"metadata" validate:"required"`
	Spec     BundleJobSpec `yaml:"spec" json:"spec" validate:"required"`
}

// Metadata carries the job's name, used for JOB_NAME template expansion and as
// the default archive filename.
type Metadata struct {
	Name string `yaml:"name" json:"name" validate:"required" template:"-"`
}

// BundleJobSpec lists the resources to collect into archive entries, in the
// order they should appear in the produced archive, plus output configuration.
type BundleJobSpec struct {
	Resources []ResourceSpec `yaml:"resources" json:"resources" validate:"required,min=1,dive"`
	Output    *OutputSpec    `yaml:"output,omitempty" json:"output,omitempty"`
}

// ResourceSpec is a tagged union: exactly one of HTTP, S3, File, or Static
// resolves to one archive entry named EntryName.
type ResourceSpec struct {
	ID        string          `yaml:"id" json:"id" validate:"required" template:"-"`
	EntryName string          `yaml:"entry_name" json:"entry_name" validate:"required"`
	HTTP      *HTTPResource   `yaml:"http,omitempty" json:"http,omitempty"`
	S3        *S3Resource     `yaml:"s3,omitempty" json:"s3,omitempty"`
	File      *FileResource   `yaml:"file,omitempty" json:"file,omitempty"`
	Static    *StaticResource `yaml:"static,omitempty" json:"static,omitempty"`
}

// HTTPResource fetches one archive entry's bytes from a GET request.
type HTTPResource struct {
	URL      string            `yaml:"url" json:"url" validate:"required,url"`
	Headers  map[string]string `yaml:"headers,omitempty" json:"headers,omitempty" template:""`
	Auth     *HTTPAuth         `yaml:"auth,omitempty" json:"auth,omitempty"`
	Timeout  *int              `yaml:"timeout,omitempty" json:"timeout,omitempty"`
	Insecure bool              `yaml:"insecure,omitempty" json:"insecure,omitempty"`
}

// HTTPAuth configures request authentication (one of the fields should be set).
type HTTPAuth struct {
	Basic *HTTPBasicAuth `yaml:"basic,omitempty" json:"basic,omitempty"`
}

// HTTPBasicAuth configures HTTP Basic authentication.
type HTTPBasicAuth struct {
	Username string `yaml:"username,omitempty" json:"username,omitempty" template:""`
	Password string `yaml:"password,omitempty" json:"password,omitempty" template:""`
	Encoded  string `yaml:"encoded,omitempty" json:"encoded,omitempty" template:""`
}

// S3Resource fetches one archive entry's bytes from an S3-compatible object.
// GetObject bodies are not seekable, so the collector wraps each fetch in a
// resource.ResourceStream: a retried read reissues GetObject instead of
// replaying a partially-drained body.
type S3Resource struct {
	Bucket         string  `yaml:"bucket" json:"bucket" validate:"required"`
	Key            string  `yaml:"key" json:"key" validate:"required"`
	Region         *string `yaml:"region,omitempty" json:"region,omitempty"`
	Endpoint       *string `yaml:"endpoint,omitempty" json:"endpoint,omitempty"`
	ForcePathStyle bool    `yaml:"force_path_style,omitempty" json:"force_path_style,omitempty"`
}

// FileResource reads one archive entry's bytes from a local filesystem path.
type FileResource struct {
	Path string `yaml:"path" json:"path" validate:"required"`
}

// StaticResource supplies one archive entry's bytes as a literal value embedded
// in the job file.
type StaticResource struct {
	Value string `yaml:"value" json:"value" template:""`
}

// OutputSpec configures how the produced archive is encoded and where it is
// written.
type OutputSpec struct {
	// Compression selects the archive-wide compression method: "deflate"
	// (default) or "stored".
	Compression *string `yaml:"compression,omitempty" json:"compression,omitempty" validate:"omitempty,oneof=deflate stored"`

	// Deduplicate enables the default entry-name deduplicator. Defaults to
	// true; set to false to emit entry names verbatim, caller's responsibility
	// for collisions.
	Deduplicate *bool `yaml:"deduplicate,omitempty" json:"deduplicate,omitempty"`

	// Destination configures where the archive bytes are written (default: stdout).
	Destination *Destination `yaml:"destination,omitempty" json:"destination,omitempty"`
}

// Destination configures the sink the archive's bytes are written to (one of
// the fields should be set). Leaving OutputSpec.Destination unset writes to
// stdout; a Destination with none of its fields set is rejected.
type Destination struct {
	Stdout *StdoutDestination `yaml:"stdout,omitempty" json:"stdout,omitempty"`
	Folder *FolderDestination `yaml:"folder,omitempty" json:"folder,omitempty"`
	S3     *S3Destination     `yaml:"s3,omitempty" json:"s3,omitempty"`
}

// StdoutDestination writes the archive bytes to standard output (no options).
type StdoutDestination struct{}

// FolderDestination writes the archive to a single file inside a local directory.
type FolderDestination struct {
	Path     string `yaml:"path" json:"path" validate:"required"`
	Filename string `yaml:"filename,omitempty" json:"filename,omitempty"`
}

// S3Destination uploads the archive as a single object to S3-compatible storage.
type S3Destination struct {
	Bucket         string  `yaml:"bucket" json:"bucket" validate:"required"`
	Key            string  `yaml:"key" json:"key" validate:"required"`
	Region         *string `yaml:"region,omitempty" json:"region,omitempty"`
	Endpoint       *string `yaml:"endpoint,omitempty" json:"endpoint,omitempty"`
	ForcePathStyle bool    `yaml:"force_path_style,omitempty" json:"force_path_style,omitempty"`
}
