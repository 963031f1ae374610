package zipstream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDefaultDedup() Deduplicator {
	return DefaultDeduplicator(DefaultNamePattern, DefaultReconstructor)()
}

func acceptAll(t *testing.T, d Deduplicator, names []string) []string {
	t.Helper()
	out := make([]string, len(names))
	for i, n := range names {
		got, err := d.Accept(n)
		require.NoError(t, err)
		out[i] = got
	}
	return out
}

func TestDefaultDeduplicator_NoCollision(t *testing.T) {
	d := newDefaultDedup()
	out := acceptAll(t, d, []string{"a.txt", "b.txt", "c.txt"})
	assert.Equal(t, []string{"a.txt", "b.txt", "c.txt"}, out)
}

func TestDefaultDeduplicator_RepeatedNameGetsSuffixed(t *testing.T) {
	d := newDefaultDedup()
	out := acceptAll(t, d, []string{"a.txt", "a.txt", "a.txt"})
	assert.Equal(t, []string{"a.txt", "a (1).txt", "a (2).txt"}, out)
}

func TestDefaultDeduplicator_AbsorbsAlreadyDisambiguatedName(t *testing.T) {
	d := newDefaultDedup()
	out := acceptAll(t, d, []string{"a.txt", "a (1).txt", "a.txt"})
	assert.Equal(t, []string{"a.txt", "a (1).txt", "a (2).txt"}, out)
	assert.NotEqual(t, "a (1).txt", out[2])
}

func TestDefaultDeduplicator_AbsorptionScenarioFromSpec(t *testing.T) {
	d := newDefaultDedup()
	out := acceptAll(t, d, []string{"foo.txt", "foo (1).txt", "foo.txt"})
	require.Len(t, out, 3)
	assert.Len(t, map[string]struct{}{out[0]: {}, out[1]: {}, out[2]: {}}, 3, "all three names must be distinct")
	assert.NotEqual(t, "foo (1).txt", out[2])
}

func TestDefaultDeduplicator_NoExtension(t *testing.T) {
	d := newDefaultDedup()
	out := acceptAll(t, d, []string{"README", "README"})
	assert.Equal(t, []string{"README", "README (1)"}, out)
}

func TestDefaultDeduplicator_PreservesDirectoryPrefix(t *testing.T) {
	d := newDefaultDedup()
	out := acceptAll(t, d, []string{"dir/a.txt", "dir/a.txt"})
	assert.Equal(t, []string{"dir/a.txt", "dir/a (1).txt"}, out)
}

func TestDefaultDeduplicator_UniquenessUnderStress(t *testing.T) {
	d := newDefaultDedup()
	names := make([]string, 50)
	for i := range names {
		names[i] = "dup.bin"
	}
	out := acceptAll(t, d, names)

	seen := make(map[string]struct{}, len(out))
	for _, n := range out {
		_, ok := seen[n]
		assert.False(t, ok, "duplicate output name %q", n)
		seen[n] = struct{}{}
	}
}

func TestVerbatimDeduplicator_NeverRejectsDuplicates(t *testing.T) {
	d := verbatimDeduplicator{}
	out := acceptAll(t, d, []string{"a.txt", "a.txt", "a.txt"})
	assert.Equal(t, []string{"a.txt", "a.txt", "a.txt"}, out)
}

func TestDefaultReconstructor(t *testing.T) {
	assert.Equal(t, "a.txt", DefaultReconstructor("a", 0, true, "txt"))
	assert.Equal(t, "a (1).txt", DefaultReconstructor("a", 1, true, "txt"))
	assert.Equal(t, "a (2)", DefaultReconstructor("a", 2, false, ""))
	assert.Equal(t, "a", DefaultReconstructor("a", 0, false, ""))
}
