package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"regexp"
	"strings"
	"testing"
	"time"

	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/traverse/internal/testutil"
	"github.com/vk/traverse/internal/workflow"
)

// setupAppTest creates an App for the given workflow file, capturing visit
// output and logs separately.
func setupAppTest(t *testing.T, cfg Config) (*App, *testutil.SafeBuffer, *testutil.SafeBuffer) {
	t.Helper()

	if cfg.LogLevel == "" {
		cfg.LogLevel = "debug"
	}
	appConfig, err := NewConfig(cfg)
	require.NoError(t, err)

	out, logs := &testutil.SafeBuffer{}, &testutil.SafeBuffer{}
	testApp := NewApp(out, logs, appConfig, nil)

	t.Cleanup(func() {
		if os.Getenv("TRAVERSE_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logs.String())
		}
	})

	return testApp, out, logs
}

func TestRun_PrintsVisitsInTimeOrder(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		file    string
		content string
		want    string
	}{
		{name: "trivial json", file: "trivial.json", content: testutil.TrivialJSON, want: "A\n"},
		{name: "simple json", file: "simple.json", content: testutil.SimpleJSON, want: "A\nB\nC\n"},
		{name: "interleaved json", file: "interleaved.json", content: testutil.InterleavedJSON, want: "A\nB\nD\nC\n"},
		{name: "interleaved hcl", file: "interleaved.hcl", content: testutil.InterleavedHCL, want: "A\nB\nD\nC\n"},
		{name: "json with escapes", file: "escaped.json", content: `{"A\/1": {"start": true}}`, want: "A/1\n"},
		{name: "yaml", file: "simple.yml", content: "A: {start: true, edges: {B: 0.1}}\nB: {}\n", want: "A\nB\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// Arrange
			path := testutil.WriteFixture(t, tc.file, tc.content)
			testApp, out, _ := setupAppTest(t, Config{WorkflowPath: path})

			// Act
			err := testApp.Run(context.Background())

			// Assert
			require.NoError(t, err)
			assert.Equal(t, tc.want, out.String())
		})
	}
}

func TestRun_WithTimestamps(t *testing.T) {
	t.Parallel()

	path := testutil.WriteFixture(t, "simple.json", testutil.SimpleJSON)
	testApp, out, _ := setupAppTest(t, Config{WorkflowPath: path, WithTimestamps: true})

	require.NoError(t, testApp.Run(context.Background()))

	line := regexp.MustCompile(`^[ABC], \d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{6}Z$`)
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	for _, l := range lines {
		assert.Regexp(t, line, l)
	}
}

func TestRun_LogsEveryVisitWithRunID(t *testing.T) {
	t.Parallel()

	path := testutil.WriteFixture(t, "simple.json", testutil.SimpleJSON)
	testApp, _, logs := setupAppTest(t, Config{WorkflowPath: path, LogLevel: "info", LogFormat: "json"})

	require.NoError(t, testApp.Run(context.Background()))

	assert.Equal(t, 3, strings.Count(logs.String(), `"msg":"Node visited."`))
	assert.Contains(t, logs.String(), `"run_id":"`+testApp.RunID()+`"`)
	assert.Contains(t, logs.String(), `"node":"C"`)
}

func TestRun_RecordsMetrics(t *testing.T) {
	t.Parallel()

	path := testutil.WriteFixture(t, "interleaved.json", testutil.InterleavedJSON)
	testApp, _, _ := setupAppTest(t, Config{WorkflowPath: path})

	require.NoError(t, testApp.Run(context.Background()))

	series, err := promtestutil.GatherAndCount(testApp.Registry(), "traverse_visits_total")
	require.NoError(t, err)
	assert.Equal(t, 4, series, "one series per visited node")
}

func TestRun_RejectsInvalidWorkflows(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		file    string
		content string
		wantErr error
	}{
		{name: "malformed json", file: "invalid.json", content: testutil.InvalidJSON, wantErr: workflow.ErrMalformedInput},
		{name: "no start", file: "no_starts.json", content: testutil.NoStartsJSON, wantErr: workflow.ErrNoStartNode},
		{name: "two starts", file: "two_starts.json", content: testutil.TwoStartsJSON, wantErr: workflow.ErrMultipleStartNodes},
		{name: "cycle", file: "cyclical.json", content: testutil.CyclicalJSON, wantErr: workflow.ErrCycleDetected},
		{name: "dangling edge", file: "dangling.json", content: `{"A": {"start": true, "edges": {"X": 0.1}}}`, wantErr: workflow.ErrDanglingEdge},
		{name: "unknown extension", file: "workflow.toml", content: testutil.SimpleJSON, wantErr: workflow.ErrMalformedInput},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			path := testutil.WriteFixture(t, tc.file, tc.content)
			testApp, out, _ := setupAppTest(t, Config{WorkflowPath: path})

			err := testApp.Run(context.Background())

			require.ErrorIs(t, err, tc.wantErr)
			assert.Contains(t, err.Error(), "invalid")
			assert.Empty(t, out.String(), "no node may be visited when the workflow is invalid")
		})
	}
}

func TestRun_MissingFile(t *testing.T) {
	t.Parallel()

	testApp, _, _ := setupAppTest(t, Config{WorkflowPath: "/nonexistent/workflow.json"})

	err := testApp.Run(context.Background())

	assert.ErrorIs(t, err, workflow.ErrMalformedInput)
}

func TestRun_TimeoutStopsTraversal(t *testing.T) {
	t.Parallel()

	// Arrange
	path := testutil.WriteFixture(t, "slow.json", `{"A": {"start": true, "edges": {"B": 5}}, "B": {}}`)
	testApp, out, _ := setupAppTest(t, Config{WorkflowPath: path, Timeout: 50 * time.Millisecond})

	// Act
	start := time.Now()
	err := testApp.Run(context.Background())

	// Assert
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, "A\n", out.String())
}

func TestHealthMux(t *testing.T) {
	t.Parallel()

	testApp, _, _ := setupAppTest(t, Config{WorkflowPath: "unused.json"})
	mux := testApp.healthMux()

	t.Run("health", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "OK\n", rec.Body.String())
	})

	t.Run("metrics", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "go_goroutines")
	})
}

func TestRun_HealthcheckPortInUse(t *testing.T) {
	t.Parallel()

	// Arrange
	ln, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer ln.Close()
	port := ln.Addr().(*net.TCPAddr).Port

	path := testutil.WriteFixture(t, "trivial.json", testutil.TrivialJSON)
	testApp, out, _ := setupAppTest(t, Config{WorkflowPath: path, HealthcheckPort: port})

	// Act
	err = testApp.Run(context.Background())

	// Assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), "health check server")
	assert.Empty(t, out.String())
}

func TestRun_HealthcheckServerLifecycle(t *testing.T) {
	t.Parallel()

	// Arrange
	ln, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	path := testutil.WriteFixture(t, "trivial.json", testutil.TrivialJSON)
	testApp, out, _ := setupAppTest(t, Config{WorkflowPath: path, HealthcheckPort: port})

	// Act
	err = testApp.Run(context.Background())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "A\n", out.String())
	assert.Nil(t, testApp.httpServer, "server must be shut down when Run returns")

	testApp.closeHealthcheckServer(context.Background())
	assert.Nil(t, testApp.httpServer, "closing a stopped server is a no-op")
}

func TestNewConfig(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "minimal", cfg: Config{WorkflowPath: "w.json"}},
		{name: "missing path", cfg: Config{}, wantErr: "WorkflowPath"},
		{name: "negative port", cfg: Config{WorkflowPath: "w.json", HealthcheckPort: -1}, wantErr: "HealthcheckPort"},
		{name: "port too large", cfg: Config{WorkflowPath: "w.json", HealthcheckPort: 70000}, wantErr: "HealthcheckPort"},
		{name: "negative timeout", cfg: Config{WorkflowPath: "w.json", Timeout: -time.Second}, wantErr: "Timeout"},
		{name: "observer bad scheme", cfg: Config{WorkflowPath: "w.json", ObserverURL: "ftp://host"}, wantErr: "ObserverURL"},
		{name: "observer ok", cfg: Config{WorkflowPath: "w.json", ObserverURL: "ws://localhost:3000/socket.io/"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg, err := NewConfig(tc.cfg)

			if tc.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "/", cfg.ObserverNamespace)
			assert.Equal(t, "visit", cfg.ObserverEvent)
		})
	}
}

func TestNewLogger(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		level     string
		format    string
		wantDebug bool
		wantInfo  bool
		wantWarn  bool
		wantJSON  bool
	}{
		{level: "debug", format: "text", wantDebug: true, wantInfo: true, wantWarn: true},
		{level: "info", format: "json", wantInfo: true, wantWarn: true, wantJSON: true},
		{level: "warn", format: "text", wantWarn: true},
		{level: "error", format: "json"},
		{level: "bogus", format: "text", wantWarn: true},
		{level: "", format: "json", wantWarn: true, wantJSON: true},
	}

	for _, tc := range testCases {
		t.Run(tc.level+"/"+tc.format, func(t *testing.T) {
			t.Parallel()

			buf := &testutil.SafeBuffer{}
			logger := newLogger(tc.level, tc.format, buf)

			logger.Debug("debug message")
			logger.Info("info message")
			logger.Warn("warn message")

			assert.Equal(t, tc.wantDebug, strings.Contains(buf.String(), "debug message"))
			assert.Equal(t, tc.wantInfo, strings.Contains(buf.String(), "info message"))
			assert.Equal(t, tc.wantWarn, strings.Contains(buf.String(), "warn message"))
			assert.Equal(t, tc.wantJSON, strings.HasPrefix(buf.String(), "{"))
		})
	}
}

func TestRun_ObserverUnreachable(t *testing.T) {
	t.Parallel()

	path := testutil.WriteFixture(t, "trivial.json", testutil.TrivialJSON)
	testApp, out, _ := setupAppTest(t, Config{WorkflowPath: path, ObserverURL: "http://127.0.0.1:1"})

	err := testApp.Run(context.Background())

	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "connecting to observer"), "got %v", err)
	assert.False(t, errors.Is(err, workflow.ErrMalformedInput))
	assert.Empty(t, out.String())
}
