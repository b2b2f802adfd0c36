package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"
	"github.com/vuciv/true-random-shuffle/internal/shared"
)

func main() {
	logger := shared.NewLogger(nil)

	runner := NewRunner(RunnerOpts{Logger: logger})
	defer runner.Close()

	app := &cli.Command{
		Name:     "shuffle",
		Usage:    "True random shuffle for Spotify",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
