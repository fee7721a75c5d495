package task

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskpilot/taskpilot/adapter/cli"
	"github.com/taskpilot/taskpilot/internal/allocation/infrastructure/persistence"
	internalApp "github.com/taskpilot/taskpilot/internal/app"
	"github.com/taskpilot/taskpilot/pkg/config"
)

// setupLocalModeContainer wires a real local-mode container on a temp
// SQLite file and installs it as the CLI's global container.
func setupLocalModeContainer(t *testing.T) *internalApp.Container {
	t.Helper()

	cfg := &config.Config{
		AppEnv:              "test",
		SQLitePath:          filepath.Join(t.TempDir(), "test.db"),
		DailyCapacityHours:  8,
		ScheduleHorizonDays: 14,
		UrgencyWeight:       40,
		ImportanceWeight:    40,
		ContinuityWeight:    20,
		NotifyBaseURL:       "http://localhost:8080",
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))

	container, err := internalApp.NewContainer(context.Background(), cfg, logger)
	require.NoError(t, err)
	t.Cleanup(container.Close)

	cli.SetContainer(container)
	t.Cleanup(func() { cli.SetContainer(nil) })
	return container
}

func TestTaskAddListDone(t *testing.T) {
	container := setupLocalModeContainer(t)

	addCmd.SetContext(context.Background())
	require.NoError(t, addCmd.Flags().Set("hours", "6"))
	require.NoError(t, addCmd.Flags().Set("deadline", "2026-09-15"))
	require.NoError(t, addCmd.RunE(addCmd, []string{"Prepare demo"}))

	items, err := container.LocalStore.OpenItems(context.Background(), persistence.LocalPersonID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Prepare demo", items[0].Name)
	assert.InDelta(t, 6.0, items[0].EstimatedHours, 1e-9)
	require.NotNil(t, items[0].Deadline)

	doneCmd.SetContext(context.Background())
	require.NoError(t, doneCmd.RunE(doneCmd, []string{"1"}))

	items, err = container.LocalStore.OpenItems(context.Background(), persistence.LocalPersonID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestTaskDoneUnknownIDIsNotAnError(t *testing.T) {
	setupLocalModeContainer(t)

	doneCmd.SetContext(context.Background())
	require.NoError(t, doneCmd.RunE(doneCmd, []string{"999"}))
}
