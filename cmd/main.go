// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package main is the cuecast command: the run-sheet broadcast server and
// its helper tools.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/absmach/cuecast"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "cuecast",
		Short: "Broadcast a live cue stack to booth monitors and tablets",
		Long: `cuecast serves the operator's run sheet over plain HTTP.

The operator pushes cue stacks, highlight colors and clock state to the
/api endpoints; viewers poll /cues for a JSON snapshot and the embedded
viewer page renders it. Configuration is read from CUECAST_* environment
variables and an optional .env file.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCmd(), newClassifyCmd(), newSeedCmd())
	return root
}

// newLogger creates a structured logger with the configured level and format.
func newLogger(cfg cuecast.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.Level()}

	var handler slog.Handler
	if cfg.LogFormat == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

// StopSignalHandler cancels ctx on SIGINT or SIGTERM.
func StopSignalHandler(ctx context.Context, cancel context.CancelFunc, logger *slog.Logger) error {
	c := make(chan os.Signal, 2)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(c)

	select {
	case sig := <-c:
		logger.Info("received shutdown signal", slog.String("signal", sig.String()))
		cancel()
		return nil
	case <-ctx.Done():
		return nil
	}
}
