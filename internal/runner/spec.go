package runner

import (
	"fmt"

	v1 "github.com/bundlestream/bundlestream/apis/v1"
)

// ResolvedSpec holds a kind identifier and the spec for that kind.
type ResolvedSpec struct {
	Kind string
	Spec any
}

// ResolveResourceSpec extracts the kind and spec from a v1.ResourceSpec.
// Returns an error if no resource type is specified.
func ResolveResourceSpec(r v1.ResourceSpec) (ResolvedSpec, error) {
	switch {
	case r.HTTP != nil:
		return ResolvedSpec{Kind: "http", Spec: *r.HTTP}, nil
	case r.S3 != nil:
		return ResolvedSpec{Kind: "s3", Spec: *r.S3}, nil
	case r.File != nil:
		return ResolvedSpec{Kind: "file", Spec: *r.File}, nil
	case r.Static != nil:
		return ResolvedSpec{Kind: "static", Spec: *r.Static}, nil
	default:
		return ResolvedSpec{}, fmt.Errorf("resource %q has no type specified", r.ID)
	}
}
