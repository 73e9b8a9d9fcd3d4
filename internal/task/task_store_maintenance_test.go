package task

import (
	"context"
	"testing"
	"time"

	"github.com/haierkeys/note-rpc-service/internal/app"
	"github.com/haierkeys/note-rpc-service/internal/dao"
	"github.com/haierkeys/note-rpc-service/internal/dto"
	"github.com/haierkeys/note-rpc-service/pkg/safe_close"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newTestApp(t *testing.T, maintenanceCron string, lg *zap.Logger) *app.App {
	t.Helper()
	cfg, err := app.ParseConfig([]byte("database:\n  path: \"file::memory:\"\n  max-idle-conns: 1\n  max-open-conns: 1\n"))
	require.NoError(t, err)
	cfg.App.MaintenanceCron = maintenanceCron

	db, err := dao.NewDBEngine(cfg.Database)
	require.NoError(t, err)

	a, err := app.NewApp(cfg, lg, db)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Shutdown(context.Background()) })
	return a
}

func TestNewStoreMaintenanceTask(t *testing.T) {
	disabled, err := NewStoreMaintenanceTask(newTestApp(t, "", zap.NewNop()))
	require.NoError(t, err)
	assert.Nil(t, disabled)

	_, err = NewStoreMaintenanceTask(newTestApp(t, "every tuesday", zap.NewNop()))
	assert.ErrorContains(t, err, `parse maintenance-cron "every tuesday"`)

	task, err := NewStoreMaintenanceTask(newTestApp(t, "0 4 * * *", zap.NewNop()))
	require.NoError(t, err)
	require.NotNil(t, task)
	assert.Equal(t, "StoreMaintenance", task.Name())
	assert.False(t, task.IsStartupRun())

	from := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)
	next := task.Schedule().Next(from)
	assert.True(t, next.Equal(time.Date(2024, 1, 3, 4, 0, 0, 0, time.UTC)), next.String())
}

func TestStoreMaintenanceTask_Run(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	a := newTestApp(t, "0 4 * * *", zap.New(core))

	_, err := a.NoteService.Create(context.Background(), &dto.CreateNoteInput{Title: "A", Content: "x"})
	require.NoError(t, err)

	task, err := NewStoreMaintenanceTask(a)
	require.NoError(t, err)
	require.NoError(t, task.Run(context.Background()))

	entries := logs.FilterMessage("task log").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(1), entries[0].ContextMap()["notes"])
	assert.Equal(t, int64(1), a.QueueMetrics().Executed[a.StoreName()])
}

func TestManager_RegisterTasks(t *testing.T) {
	sc := safe_close.NewSafeClose()

	m := NewManager(zap.NewNop(), sc, newTestApp(t, "0 4 * * *", zap.NewNop()))
	require.NoError(t, m.RegisterTasks())
	assert.Len(t, m.scheduler.tasks, 1)
	m.Start()

	bad := NewManager(zap.NewNop(), sc, newTestApp(t, "61 * * * *", zap.NewNop()))
	assert.Error(t, bad.RegisterTasks())

	sc.SendCloseSignal(nil)
	assert.NoError(t, sc.WaitClosed())
}
