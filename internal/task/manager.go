package task

import (
	"github.com/haierkeys/note-rpc-service/internal/app"
	"github.com/haierkeys/note-rpc-service/pkg/safe_close"

	"go.uber.org/zap"
)

// Manager 任务管理器，负责创建和管理所有任务
type Manager struct {
	scheduler *Scheduler
	logger    *zap.Logger
	app       *app.App
}

// NewManager 创建任务管理器
func NewManager(logger *zap.Logger, sc *safe_close.SafeClose, appContainer *app.App) *Manager {
	return &Manager{
		scheduler: NewScheduler(logger, sc),
		logger:    logger,
		app:       appContainer,
	}
}

// RegisterTasks 注册所有任务
func (m *Manager) RegisterTasks() error {
	maintenance, err := NewStoreMaintenanceTask(m.app)
	if err != nil {
		return err
	}

	if maintenance != nil {
		m.scheduler.AddTask(maintenance)
	} else {
		m.logger.Info("store maintenance task is disabled (maintenance-cron not configured)")
	}

	return nil
}

// Start 启动所有已注册的任务
func (m *Manager) Start() {
	m.scheduler.Start()
}
