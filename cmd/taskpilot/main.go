package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/taskpilot/taskpilot/adapter/cli"
	"github.com/taskpilot/taskpilot/adapter/cli/assign"
	"github.com/taskpilot/taskpilot/adapter/cli/block"
	"github.com/taskpilot/taskpilot/adapter/cli/schedule"
	"github.com/taskpilot/taskpilot/adapter/cli/session"
	"github.com/taskpilot/taskpilot/adapter/cli/task"
	"github.com/taskpilot/taskpilot/adapter/cli/workload"
	"github.com/taskpilot/taskpilot/internal/app"
	"github.com/taskpilot/taskpilot/pkg/config"
	"github.com/taskpilot/taskpilot/pkg/observability"
)

func main() {
	logger := observability.LoggerFromEnv()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		cancel()
	}()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cli.SetLogger(logger)

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to wire application", "error", err)
		os.Exit(1)
	}
	defer container.Close()
	cli.SetContainer(container)

	cli.AddCommand(assign.Cmd)
	cli.AddCommand(workload.Cmd)
	cli.AddCommand(schedule.Cmd)
	cli.AddCommand(session.Cmd)
	cli.AddCommand(task.Cmd)
	cli.AddCommand(block.Cmd)

	cli.Execute()
}
