package integration_tests

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/traverse/internal/app"
	"github.com/vk/traverse/internal/sink"
	"github.com/vk/traverse/internal/testutil"
)

// timedLine is one `name, timestamp` console line.
type timedLine struct {
	name string
	at   time.Time
}

// runTimestamped runs the workflow through a full App with timestamps on
// and returns the parsed console lines.
func runTimestamped(t *testing.T, file, content string) []timedLine {
	t.Helper()

	path := testutil.WriteFixture(t, file, content)
	cfg, err := app.NewConfig(app.Config{WorkflowPath: path, WithTimestamps: true, LogLevel: "warn"})
	require.NoError(t, err)

	out, logs := &testutil.SafeBuffer{}, &testutil.SafeBuffer{}
	require.NoError(t, app.NewApp(out, logs, cfg, nil).Run(context.Background()), "logs: %s", logs.String())

	var lines []timedLine
	for _, raw := range strings.Split(strings.TrimSpace(out.String()), "\n") {
		name, ts, ok := strings.Cut(raw, ", ")
		require.True(t, ok, "line %q has no timestamp", raw)
		at, err := time.Parse(sink.TimestampLayout, ts)
		require.NoError(t, err)
		lines = append(lines, timedLine{name: name, at: at})
	}
	return lines
}

func names(lines []timedLine) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.name
	}
	return out
}

// assertSinceFirst checks each node's time relative to the first line.
func assertSinceFirst(t *testing.T, lines []timedLine, want map[string]time.Duration) {
	t.Helper()
	require.NotEmpty(t, lines)

	first := lines[0].at
	for _, l := range lines {
		expected, ok := want[l.name]
		if !ok {
			continue
		}
		got := l.at.Sub(first)
		assert.InDelta(t, expected.Seconds(), got.Seconds(), testutil.TimingTolerance.Seconds(),
			"node %q visited at +%s, want +%s", l.name, got, expected)
	}
}
