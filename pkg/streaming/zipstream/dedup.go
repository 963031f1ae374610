package zipstream

import (
	"regexp"
	"strconv"
	"strings"
)

// Deduplicator maps a sequence of incoming entry names to a sequence of pairwise
// distinct output names. It is initialized once per archive and is not safe for
// concurrent or re-entrant use.
type Deduplicator interface {
	// Accept receives the next incoming name and returns the name to write to the
	// archive. An error aborts the archive with ErrDedupFailure.
	Accept(name string) (string, error)
}

// DeduplicatorFactory instantiates a fresh Deduplicator for one archive.
type DeduplicatorFactory func() Deduplicator

// Reconstructor renders a (path, index, extension) split back into a name. index
// 0 means "no disambiguating suffix"; index >= 1 means "append suffix index".
// hasExtension distinguishes a name with no extension from one with an empty one.
type Reconstructor func(path string, index int, hasExtension bool, extension string) string

// DefaultNamePattern splits a name into an optional directory-qualified path, an
// optional " (N)" disambiguator, and an optional ".ext" — the same three-part split
// used by the default reconstructor. Forward slashes in path are preserved verbatim.
var DefaultNamePattern = regexp.MustCompile(`^((?:.*/)?.*?)(?: \((\d+)\))?(?:\.(.*?))?$`)

// DefaultReconstructor renders path + " (k)" (when index > 0) + ".ext" (when an
// extension was present).
func DefaultReconstructor(path string, index int, hasExtension bool, extension string) string {
	var b strings.Builder
	b.WriteString(path)
	if index > 0 {
		b.WriteString(" (")
		b.WriteString(strconv.Itoa(index))
		b.WriteString(")")
	}
	if hasExtension {
		b.WriteString(".")
		b.WriteString(extension)
	}
	return b.String()
}

// NoDeduplication is an alias of NoDeduplicator: when configured, the encoder
// emits incoming names verbatim and never rejects a duplicate.
var NoDeduplication DeduplicatorFactory = NoDeduplicator

// DefaultDeduplicator returns a factory producing the default deduplicator: it
// splits each incoming name with pattern, tries the bare reconstruction (index 0)
// first, and otherwise probes increasing indices — starting from the matched
// index (or 1, whichever is larger) or from the running counter for that path,
// whichever is larger — until it finds a name not yet emitted.
func DefaultDeduplicator(pattern *regexp.Regexp, reconstructor Reconstructor) DeduplicatorFactory {
	return func() Deduplicator {
		return &defaultDeduplicator{
			pattern:     pattern,
			reconstruct: reconstructor,
			seen:        make(map[string]struct{}),
			nextIndex:   make(map[pathExtKey]int),
		}
	}
}

type pathExtKey struct {
	path         string
	hasExtension bool
	extension    string
}

type defaultDeduplicator struct {
	pattern     *regexp.Regexp
	reconstruct Reconstructor
	seen        map[string]struct{}
	nextIndex   map[pathExtKey]int
}

func (d *defaultDeduplicator) Accept(name string) (string, error) {
	path, indexIn, hasExtension, extension := d.split(name)
	key := pathExtKey{path: path, hasExtension: hasExtension, extension: extension}

	bare := d.reconstruct(path, 0, hasExtension, extension)
	if _, taken := d.seen[bare]; !taken {
		d.seen[bare] = struct{}{}
		return bare, nil
	}

	k := indexIn
	if k < 1 {
		k = 1
	}
	if stored, ok := d.nextIndex[key]; ok && stored > k {
		k = stored
	}

	for {
		candidate := d.reconstruct(path, k, hasExtension, extension)
		if _, taken := d.seen[candidate]; !taken {
			d.seen[candidate] = struct{}{}
			d.nextIndex[key] = k + 1
			return candidate, nil
		}
		k++
	}
}

// split matches name against d.pattern, returning the path, the matched
// disambiguator index (0 if none was present), and the extension. If the pattern
// does not match at all, the whole name is treated as path with no extension.
func (d *defaultDeduplicator) split(name string) (path string, index int, hasExtension bool, extension string) {
	m := d.pattern.FindStringSubmatchIndex(name)
	if m == nil {
		return name, 0, false, ""
	}

	path = name[m[2]:m[3]]

	if m[4] != -1 {
		index, _ = strconv.Atoi(name[m[4]:m[5]])
	}

	if m[6] != -1 {
		hasExtension = true
		extension = name[m[6]:m[7]]
	}

	return path, index, hasExtension, extension
}

// verbatimDeduplicator is installed when the caller disables deduplication; it
// never rejects a name, including repeats.
type verbatimDeduplicator struct{}

func (verbatimDeduplicator) Accept(name string) (string, error) { return name, nil }
