/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

// jdbg runs the supervisor side of the Java remote-debugging agent protocol:
// it listens for the in-target agent's connection and maintains the debug
// session until interrupted.
package main

import (
	"context"
	"fmt"
	"os"
	ossignal "os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/microsoft/jdbg/internal/agent"
	"github.com/microsoft/jdbg/internal/jvm"
	"github.com/microsoft/jdbg/internal/signal"
	"github.com/microsoft/jdbg/pkg/logger"
)

const defaultPort = 5000

func main() {
	log := logger.New("jdbg")
	defer log.Flush()

	cmd := newRootCmd(log)

	ctx, stop := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(log *logger.Logger) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "jdbg",
		Short: "Supervisor for the in-JVM debugging agent",
		Long: "jdbg listens for a connection from the debugging agent injected into a " +
			"target JVM, exchanges debug signals with it, and tracks the session state " +
			"(breakpoints, received method bytecode, source paths).",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), log, port)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", defaultPort, "port the agent server listens on")
	log.AddFlags(cmd.PersistentFlags())

	return cmd
}

func run(ctx context.Context, log *logger.Logger, port int) error {
	server := agent.NewServer(agent.ServerConfig{
		Address:  fmt.Sprintf("127.0.0.1:%d", port),
		Registry: signal.DefaultRegistry(),
		Logger:   log.Logger.WithName("agent"),
	})

	session := jvm.NewContext(server, log.Logger.WithName("jvm"))
	server.SetDispatcher(session)

	if err := server.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	log.Info("Interrupted, shutting down")

	// Detach runs the shutdown protocol through the session context so the
	// agent receives the final exit signal.
	if err := session.Detach(); err != nil {
		return err
	}
	return server.Close()
}
