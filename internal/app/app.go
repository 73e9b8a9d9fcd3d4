// Package app 提供应用容器，封装所有依赖和服务
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/haierkeys/note-rpc-service/internal/dao"
	"github.com/haierkeys/note-rpc-service/internal/domain"
	"github.com/haierkeys/note-rpc-service/internal/dto"
	"github.com/haierkeys/note-rpc-service/internal/service"
	pkgapp "github.com/haierkeys/note-rpc-service/pkg/app"
	"github.com/haierkeys/note-rpc-service/pkg/code"
	"github.com/haierkeys/note-rpc-service/pkg/serialqueue"
	"github.com/haierkeys/note-rpc-service/pkg/validator"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App 应用容器，封装所有依赖和服务
type App struct {
	// 基础设施（注入的依赖）
	config *AppConfig
	logger *zap.Logger
	DB     *gorm.DB

	// 串行队列，同一逻辑存储上的操作依次执行
	queue *serialqueue.Manager

	validator *validator.CustomValidator
	parser    *dto.Parser

	// Repository 层
	NoteRepo domain.NoteRepository

	// Service 层
	NoteService service.NoteService

	// 关闭控制
	shutdownCh chan struct{}
}

// NewApp 创建应用容器实例
// 初始化所有依赖并进行依赖注入
// cfg: 应用配置（必须）
// logger: zap 日志器（必须）
// db: 数据库连接（必须）
func NewApp(cfg *AppConfig, logger *zap.Logger, db *gorm.DB) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}

	if err := code.SetGlobalDefaultLang(cfg.App.Lang); err != nil {
		logger.Warn("unsupported app.lang", zap.String("lang", cfg.App.Lang), zap.Error(err))
	}

	a := &App{
		config:     cfg,
		logger:     logger,
		DB:         db,
		validator:  validator.NewCustomValidator(),
		shutdownCh: make(chan struct{}),
	}

	// 初始化串行队列
	qConfig := cfg.GetQueueConfig()
	a.queue = serialqueue.New(&qConfig, logger)

	a.parser = dto.NewParser(a.validator, a.validatorLocale(), cfg.App.MaxPageSize)

	// 初始化 Repository 层
	a.NoteRepo = dao.NewNoteRepository(db)

	// 初始化 Service 层（依赖注入）
	a.NoteService = service.NewNoteService(a.NoteRepo, nil)

	logger.Info("App container initialized successfully",
		zap.String("store", cfg.App.StoreName),
		zap.Int("queueCapacity", qConfig.Capacity),
		zap.Duration("queueTimeout", qConfig.Timeout))

	return a, nil
}

// validatorLocale 将 app.lang 映射为翻译器的 locale
func (a *App) validatorLocale() string {
	if code.GetGlobalDefaultLang() == code.LangZhCN {
		return "zh"
	}
	return "en"
}

// Config 获取应用配置
func (a *App) Config() *AppConfig {
	return a.config
}

// Logger 获取日志器
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Validator 获取验证器
func (a *App) Validator() *validator.CustomValidator {
	return a.validator
}

// Parser 获取输入解析器
func (a *App) Parser() *dto.Parser {
	return a.parser
}

// Version 获取版本信息
func (a *App) Version() pkgapp.VersionInfo {
	return pkgapp.VersionInfo{
		Version:   Version,
		GitTag:    GitTag,
		BuildTime: BuildTime,
	}
}

// StoreName 逻辑存储名称
func (a *App) StoreName() string {
	return a.config.App.StoreName
}

// Execute 在逻辑存储的串行队列上执行 fn
// 同一存储上的操作按提交顺序一个接一个完成
func (a *App) Execute(ctx context.Context, fn func(context.Context) error) error {
	return a.queue.Execute(ctx, a.config.App.StoreName, fn)
}

// QueueMetrics 获取串行队列指标
func (a *App) QueueMetrics() serialqueue.Metrics {
	return a.queue.GetMetrics()
}

// Close 释放应用容器持有的资源
func (a *App) Close() error {
	if a.DB != nil {
		if err := dao.Close(a.DB); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
		a.logger.Info("Database connection closed")
	}
	return nil
}

// DefaultShutdownTimeout 默认关闭超时时间
const DefaultShutdownTimeout = 30 * time.Second

// Shutdown 优雅关闭应用容器
// 按顺序关闭：Serial Queue -> Database
// ctx 用于控制关闭超时，如果为 nil 则使用默认 30 秒超时
func (a *App) Shutdown(ctx context.Context) error {
	// 标记关闭
	select {
	case <-a.shutdownCh:
		// 已经关闭
		return nil
	default:
		close(a.shutdownCh)
	}

	a.logger.Info("App container shutting down...")

	// 如果没有提供 context，使用默认超时
	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer cancel()
	}

	var errs []error

	// 1. 关闭串行队列（排空已排队的操作）
	if a.queue != nil {
		if err := a.queue.Shutdown(ctx); err != nil {
			a.logger.Warn("serial queue shutdown error", zap.Error(err))
			errs = append(errs, fmt.Errorf("serial queue shutdown: %w", err))
		}
	}

	// 2. 关闭数据库连接
	if err := a.Close(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		a.logger.Warn("App container shutdown completed with errors",
			zap.Int("errorCount", len(errs)))
		return fmt.Errorf("shutdown completed with %d errors: %v", len(errs), errs)
	}

	a.logger.Info("App container shutdown completed successfully")
	return nil
}

// IsShuttingDown 检查应用是否正在关闭
func (a *App) IsShuttingDown() bool {
	select {
	case <-a.shutdownCh:
		return true
	default:
		return false
	}
}
