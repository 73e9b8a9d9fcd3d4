package cmd

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	internalApp "github.com/haierkeys/note-rpc-service/internal/app"
	"github.com/haierkeys/note-rpc-service/internal/dao"
	"github.com/haierkeys/note-rpc-service/internal/routers"
	"github.com/haierkeys/note-rpc-service/internal/task"
	"github.com/haierkeys/note-rpc-service/pkg/logger"
	"github.com/haierkeys/note-rpc-service/pkg/safe_close"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// httpShutdownTimeout HTTP 服务器关闭超时
const httpShutdownTimeout = 5 * time.Second

type Server struct {
	logger            *zap.Logger            // 日志对象
	config            *internalApp.AppConfig // 应用配置（注入的依赖）
	registry          *prometheus.Registry   // 指标注册器，每个 Server 独立，配置重载时不会重复注册
	tracerCloser      io.Closer              // jaeger tracer，未启用时为 nil
	httpServer        *http.Server
	privateHttpServer *http.Server
	sc                *safe_close.SafeClose
	app               *internalApp.App // App Container
}

func NewServer(runEnv *runFlags) (*Server, error) {

	// 使用 LoadConfig 直接加载配置到 AppConfig
	appConfig, configRealpath, err := internalApp.LoadConfig(runEnv.config)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 命令行参数优先于配置文件
	if len(runEnv.runMode) > 0 {
		appConfig.Server.RunMode = runEnv.runMode
		appConfig.Database.Debug = appConfig.IsDebug()
	}
	if len(runEnv.port) > 0 {
		appConfig.Server.HttpPort = runEnv.port
	}

	if len(appConfig.Server.RunMode) > 0 {
		gin.SetMode(appConfig.Server.RunMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		config:   appConfig,
		registry: prometheus.NewRegistry(),
		sc:       safe_close.NewSafeClose(),
	}

	// 初始化日志器（使用注入的配置）
	lg, err := logger.NewLogger(appConfig.GetLoggerConfig())
	if err != nil {
		return nil, fmt.Errorf("initLogger: %w", err)
	}
	s.logger = lg

	// 初始化链路追踪，需在数据库之前完成，gorm 插件使用全局 tracer
	closer, err := initTracer(appConfig.Tracer, s.logger)
	if err != nil {
		return nil, fmt.Errorf("initTracer: %w", err)
	}
	s.tracerCloser = closer

	db, err := dao.NewDBEngine(appConfig.Database)
	if err != nil {
		s.closeTracer()
		return nil, fmt.Errorf("initDatabase: %w", err)
	}

	// 初始化 App Container
	app, err := internalApp.NewApp(appConfig, s.logger, db)
	if err != nil {
		_ = dao.Close(db)
		s.closeTracer()
		return nil, fmt.Errorf("failed to create app container: %w", err)
	}
	s.app = app

	// 启动调度器
	manager := task.NewManager(s.logger, s.sc, s.app)
	if err := manager.RegisterTasks(); err != nil {
		_ = s.app.Shutdown(context.Background())
		s.closeTracer()
		return nil, fmt.Errorf("registerTasks: %w", err)
	}
	manager.Start()

	s.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	s.logger.Warn(fmt.Sprintf("%s v%s\nGit: %s\nBuildTime: %s", internalApp.Name, internalApp.Version, internalApp.GitTag, internalApp.BuildTime))
	s.logger.Warn("config loaded", zap.String("path", configRealpath))

	// 启动 HTTP API 服务器
	if httpAddr := appConfig.Server.HttpPort; len(httpAddr) > 0 {
		s.logger.Warn("api_router", zap.String("config.server.HttpPort", httpAddr))
		s.httpServer = s.newHTTPServer(httpAddr, routers.NewRouter(frontendFiles, s.app, s.registry))
		s.serve("api service", s.httpServer)
	}

	if httpAddr := appConfig.Server.PrivateHttpListen; len(httpAddr) > 0 {
		s.logger.Info("api_router", zap.String("config.server.PrivateHttpListen", httpAddr))
		s.privateHttpServer = s.newHTTPServer(httpAddr, routers.NewPrivateRouterWithLogger(appConfig.Server.RunMode, s.logger, s.registry))
		s.serve("private api service", s.privateHttpServer)
	}

	// 注册 App Container 的优雅关闭
	s.sc.Attach(func(done func(), closeSignal <-chan struct{}) {
		defer done()
		<-closeSignal

		// 使用带超时的优雅关闭
		ctx, cancel := context.WithTimeout(context.Background(), internalApp.DefaultShutdownTimeout)
		defer cancel()

		if err := s.app.Shutdown(ctx); err != nil {
			s.logger.Error("failed to shutdown app container", zap.Error(err))
		} else {
			s.logger.Info("App container shutdown gracefully")
		}
		s.closeTracer()
		_ = s.logger.Sync()
	})

	return s, nil
}

// Shutdown 发送关闭信号，通过 sc.WaitClosed 等待完成
func (s *Server) Shutdown() {
	s.sc.SendCloseSignal(nil)
}

func (s *Server) newHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:           addr,
		Handler:        handler,
		ReadTimeout:    s.config.ReadTimeout(),
		WriteTimeout:   s.config.WriteTimeout(),
		MaxHeaderBytes: 1 << 20,
	}
}

// serve 启动 HTTP 服务器，收到关闭信号时优雅停止
// 监听失败会触发整个 Server 关闭
func (s *Server) serve(name string, srv *http.Server) {
	s.sc.Attach(func(done func(), closeSignal <-chan struct{}) {
		defer done()
		errChan := make(chan error, 1)
		go func() {
			errChan <- srv.ListenAndServe()
		}()
		select {
		case err := <-errChan:
			s.logger.Error(name+" err", zap.Error(err))
			s.sc.SendCloseSignal(err)
		case <-closeSignal:
			ctx, cancel := context.WithTimeout(context.Background(), httpShutdownTimeout)
			defer cancel()

			// 停止 HTTP 服务器
			if err := srv.Shutdown(ctx); err != nil {
				s.logger.Error(name+" shutdown error", zap.Error(err))
			}
		}
	})
}

func (s *Server) closeTracer() {
	if s.tracerCloser == nil {
		return
	}
	if err := s.tracerCloser.Close(); err != nil {
		s.logger.Warn("tracer close error", zap.Error(err))
	}
	s.tracerCloser = nil
}
