package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/vk/traverse/internal/app"
	"github.com/vk/traverse/internal/cli"
)

// main is the entrypoint for the traverse application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Stdout, os.Stderr, os.Args[1:])
	stop()
	os.Exit(code)
}

// run encapsulates the main application logic for easier testing. Visit
// lines go to outW; usage, logs and errors go to errW. It returns the
// process exit code.
func run(ctx context.Context, outW, errW io.Writer, args []string) int {
	appConfig, shouldExit, err := cli.Parse(args, errW)
	if err != nil {
		return report(errW, err)
	}
	if shouldExit {
		return cli.ExitOK
	}

	traverseApp := app.NewApp(outW, errW, appConfig, nil)
	if err := traverseApp.Run(ctx); err != nil {
		return report(errW, err)
	}
	return cli.ExitOK
}

func report(errW io.Writer, err error) int {
	var exitErr *cli.ExitError
	if errors.As(err, &exitErr) {
		fmt.Fprintln(errW, exitErr.Message)
		return exitErr.Code
	}
	fmt.Fprintln(errW, err)
	return cli.ExitFailure
}
