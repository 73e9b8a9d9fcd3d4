package task

import (
	"context"
	"time"

	"github.com/haierkeys/note-rpc-service/internal/app"
	"github.com/haierkeys/note-rpc-service/internal/dao"
	"github.com/haierkeys/note-rpc-service/pkg/logger"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// cronParser 标准 5 段 cron 表达式
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// StoreMaintenanceTask 定期刷新数据库统计信息并记录存储状态
// 通过串行队列执行，不会与笔记操作交错
type StoreMaintenanceTask struct {
	app      *app.App
	schedule cron.Schedule
}

// NewStoreMaintenanceTask 按 app.maintenance-cron 创建任务，未配置时返回 nil
func NewStoreMaintenanceTask(appContainer *app.App) (Task, error) {
	expr := appContainer.Config().App.MaintenanceCron
	if expr == "" {
		return nil, nil
	}

	schedule, err := cronParser.Parse(expr)
	if err != nil {
		return nil, errors.Wrapf(err, "parse maintenance-cron %q", expr)
	}

	return &StoreMaintenanceTask{app: appContainer, schedule: schedule}, nil
}

// Name 返回任务名称
func (t *StoreMaintenanceTask) Name() string {
	return "StoreMaintenance"
}

// Schedule 返回执行计划
func (t *StoreMaintenanceTask) Schedule() cron.Schedule {
	return t.schedule
}

// IsStartupRun 是否立即执行一次
func (t *StoreMaintenanceTask) IsStartupRun() bool {
	return false
}

// Run 执行维护任务
func (t *StoreMaintenanceTask) Run(ctx context.Context) error {
	start := time.Now()
	dbType := t.app.Config().Database.Type

	var notes int64
	err := t.app.Execute(ctx, func(ctx context.Context) error {
		if err := dao.Optimize(ctx, t.app.DB, dbType); err != nil {
			return err
		}
		var err error
		notes, err = t.app.NoteService.Count(ctx)
		return err
	})
	if err != nil {
		return errors.Wrap(err, "store maintenance")
	}

	t.app.Logger().Info("task log",
		zap.String("task", t.Name()),
		zap.String(logger.FieldStore, t.app.StoreName()),
		zap.Int64("notes", notes),
		zap.Duration(logger.FieldDuration, time.Since(start)))

	return nil
}
