// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/marcelocantos/elevate/internal/cli"
)

// version is overwritten at build time using -ldflags.
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	// Cancellation kills the child's process group and is audited as a
	// failed operation.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := cli.NewRootCmd(version).ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	var exit *cli.ExitError
	if errors.As(err, &exit) {
		return exit.Code
	}
	fmt.Fprintf(os.Stderr, "elevate: %v\n", err)
	return 1
}
