package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/traverse/internal/sink"
)

// TimingTolerance absorbs timer and scheduler jitter in timing assertions.
const TimingTolerance = 60 * time.Millisecond

// AssertElapsed checks that each named node was visited within tolerance of
// the wanted time since the root visit, and that its planned offset matches
// exactly. Node names in want must be unique within visits.
func AssertElapsed(t *testing.T, visits []sink.Visit, want map[string]time.Duration, tolerance time.Duration) {
	t.Helper()

	byName := make(map[string]sink.Visit, len(visits))
	for _, v := range visits {
		byName[v.Name] = v
	}

	for name, expected := range want {
		v, ok := byName[name]
		require.True(t, ok, "node %q was never visited", name)
		assert.Equal(t, expected, v.Offset, "planned offset of node %q", name)
		assert.InDelta(t, expected.Seconds(), v.Elapsed.Seconds(), tolerance.Seconds(),
			"node %q visited at %s, want %s", name, v.Elapsed, expected)
	}
}

// AssertBefore checks that first was visited before second.
func AssertBefore(t *testing.T, names []string, first, second string) {
	t.Helper()

	i, j := indexOf(names, first), indexOf(names, second)
	require.NotEqual(t, -1, i, "node %q was never visited", first)
	require.NotEqual(t, -1, j, "node %q was never visited", second)
	assert.Less(t, i, j, "expected %q before %q in %v", first, second, names)
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}
