package main

// Tailor a resume from the command line:
//   go run ./cmd/tailor extract resume.pdf
//   go run ./cmd/tailor tailor --jd posting.txt
//   go run ./cmd/tailor render --company "Acme Corp" --role "Backend Engineer" --pdf

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"resume-tailor/internal/shared/config"
	"resume-tailor/internal/shared/telemetry"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := newCLI(config.Load, os.Stdin)
	root := c.rootCommand()
	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)

	err := root.ExecuteContext(ctx)
	if cerr := c.close(); cerr != nil {
		telemetry.Warn("close app", map[string]any{"error": cerr})
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
