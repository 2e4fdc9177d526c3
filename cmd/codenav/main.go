package main

import (
	"errors"
	"log/slog"
	"os"

	"github.com/codenav/codenav/internal/cli"
)

var version = "0.1.0-dev"

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	err := cli.NewRootCommand(version, logger).Execute()
	if err == nil {
		os.Exit(cli.ExitOK)
	}

	var exitErr *cli.ExitError
	if errors.As(err, &exitErr) {
		logger.Error(exitErr.Err.Error())
		os.Exit(exitErr.Code)
	}

	logger.Error(err.Error())
	os.Exit(cli.ExitUsageError)
}
