package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/traverse/internal/app"
)

// Process exit codes.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("traverse", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
traverse - Run a timed workflow: visit the start node at once and every
successor after the delay of the edge leading to it.

Usage:
  traverse [options] WORKFLOW_PATH

Arguments:
  WORKFLOW_PATH
    Path to a .json, .yaml, .yml or .hcl workflow description.

Options:
`)
		flagSet.PrintDefaults()
	}

	timestampsFlag := flagSet.Bool("with-timestamps", false, "Print the visit timestamp next to each node name.")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the HTTP health check and metrics server. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "warn", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	timeoutFlag := flagSet.Duration("timeout", 0, "Abort the traversal after this long, e.g. '30s'. 0 is no limit.")
	observerURLFlag := flagSet.String("observer-url", "", "Forward every visit to this socket.io server.")
	observerNSFlag := flagSet.String("observer-namespace", "/", "Socket.io namespace used with --observer-url.")
	observerEventFlag := flagSet.String("observer-event", "visit", "Socket.io event name used with --observer-url.")
	observerInsecureFlag := flagSet.Bool("observer-insecure", false, "Skip TLS certificate verification for --observer-url.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: ExitUsage, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	switch flagSet.NArg() {
	case 0:
		flagSet.Usage()
		return nil, false, &ExitError{Code: ExitUsage, Message: "missing WORKFLOW_PATH argument"}
	case 1:
	default:
		return nil, false, &ExitError{Code: ExitUsage, Message: fmt.Sprintf("expected exactly one WORKFLOW_PATH, got %d arguments", flagSet.NArg())}
	}
	path := flagSet.Arg(0)
	slog.Debug("Workflow path determined.", "path", path)

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: ExitUsage, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: ExitUsage, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		WorkflowPath:      path,
		WithTimestamps:    *timestampsFlag,
		LogFormat:         logFormat,
		LogLevel:          logLevel,
		HealthcheckPort:   *healthPortFlag,
		Timeout:           *timeoutFlag,
		ObserverURL:       *observerURLFlag,
		ObserverNamespace: *observerNSFlag,
		ObserverEvent:     *observerEventFlag,
		ObserverInsecure:  *observerInsecureFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: ExitUsage, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
