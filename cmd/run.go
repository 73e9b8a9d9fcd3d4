package cmd

import (
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/haierkeys/note-rpc-service/pkg/fileurl"

	"github.com/pkg/errors"
	"github.com/radovskyb/watcher"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type runFlags struct {
	dir     string // 项目根目录
	port    string // 启动端口
	runMode string // 启动模式
	config  string // 指定要使用的配置文件路径
}

// configCandidates 未指定 -c 时按顺序查找的配置文件
var configCandidates = []string{
	"config/config-dev.yaml",
	"config.yaml",
	"config/config.yaml",
}

// defaultConfigPath 找不到配置文件时写入默认配置的位置
const defaultConfigPath = "config/config.yaml"

func init() {
	runEnv := new(runFlags)

	var runCommand = &cobra.Command{
		Use:   "run [-c config_file] [-d working_dir] [-p port] [-m mode]",
		Short: "Run service",
		Run: func(cmd *cobra.Command, args []string) {
			if len(runEnv.dir) > 0 {
				if err := os.Chdir(runEnv.dir); err != nil {
					bootstrapLogger.Error("failed to change the current working directory", zap.Error(err))
					return
				}
				bootstrapLogger.Info("working directory changed", zap.String("dir", runEnv.dir))
			}

			if len(runEnv.config) <= 0 {
				path, err := resolveConfigPath()
				if err != nil {
					bootstrapLogger.Error("config file auto create error", zap.Error(err))
					return
				}
				runEnv.config = path
			}

			s, err := NewServer(runEnv)
			if err != nil {
				bootstrapLogger.Error("api service start err", zap.Error(err))
				return
			}

			holder := &serverHolder{s: s}
			w := watchConfig(runEnv, holder)
			defer w.Close()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

			<-quit
			s = holder.get()
			s.logger.Info("Received shutdown signal, initiating graceful shutdown...")
			s.Shutdown()

			// 等待所有关闭处理器完成（包括 App Container 的优雅关闭）
			if err := s.sc.WaitClosed(); err != nil {
				s.logger.Error("Shutdown completed with error", zap.Error(err))
			} else {
				s.logger.Info("Service has been shut down gracefully.")
			}
		},
	}

	rootCmd.AddCommand(runCommand)
	fs := runCommand.Flags()
	fs.StringVarP(&runEnv.dir, "dir", "d", "", "run dir")
	fs.StringVarP(&runEnv.port, "port", "p", "", "run port, e.g. :3000")
	fs.StringVarP(&runEnv.runMode, "mode", "m", "", "run mode, debug or release")
	fs.StringVarP(&runEnv.config, "config", "c", "", "config file")
}

// resolveConfigPath 返回第一个存在的配置文件，都不存在时写入默认配置
func resolveConfigPath() (string, error) {
	for _, path := range configCandidates {
		if fileurl.IsExist(path) {
			return path, nil
		}
	}

	bootstrapLogger.Warn("config file not found, creating default config")

	if err := fileurl.CreatePath(defaultConfigPath, os.ModePerm); err != nil {
		return "", errors.Wrap(err, "create config dir")
	}
	if err := os.WriteFile(defaultConfigPath, []byte(configDefault), 0644); err != nil {
		return "", errors.Wrap(err, "write default config")
	}

	bootstrapLogger.Info("config file auto create successfully", zap.String("path", defaultConfigPath))
	return defaultConfigPath, nil
}

// serverHolder 持有当前运行的 Server，配置重载时被替换
type serverHolder struct {
	mu sync.Mutex
	s  *Server
}

func (h *serverHolder) get() *Server {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.s
}

// reload 关闭当前 Server 并按新配置重新创建
// 旧 Server 完全关闭后才创建新 Server，保证端口与数据库文件已释放
func (h *serverHolder) reload(runEnv *runFlags) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.s.Shutdown()
	if err := h.s.sc.WaitClosed(); err != nil {
		h.s.logger.Warn("previous server closed with error", zap.Error(err))
	}

	s, err := NewServer(runEnv)
	if err != nil {
		bootstrapLogger.Error("service restart err", zap.Error(err))
		return
	}
	h.s = s
}

// watchConfig 监听配置文件写入并重载服务
func watchConfig(runEnv *runFlags, holder *serverHolder) *watcher.Watcher {
	w := watcher.New()

	// 每个监听周期至多接收 1 个事件
	w.SetMaxEvents(1)
	// 只通知写入事件
	w.FilterOps(watcher.Write)

	go func() {
		for {
			select {
			case event := <-w.Event:
				bootstrapLogger.Info("config watcher change", zap.String("event", event.Op.String()), zap.String("file", event.Path))
				holder.reload(runEnv)
			case err := <-w.Error:
				bootstrapLogger.Error("config watcher error", zap.Error(err))
			case <-w.Closed:
				bootstrapLogger.Info("config watcher closed")
				return
			}
		}
	}()

	if err := w.Add(runEnv.config); err != nil {
		bootstrapLogger.Error("config watcher file error", zap.Error(err))
		return w
	}

	go func() {
		if err := w.Start(time.Second * 5); err != nil {
			bootstrapLogger.Error("config watcher start error", zap.Error(err))
		}
	}()

	return w
}
