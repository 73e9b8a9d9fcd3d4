// Package app 提供应用容器，封装所有依赖和服务
package app

import (
	"os"
	"path/filepath"
	"time"

	"github.com/haierkeys/note-rpc-service/internal/dao"
	"github.com/haierkeys/note-rpc-service/pkg/logger"
	"github.com/haierkeys/note-rpc-service/pkg/serialqueue"
	"github.com/haierkeys/note-rpc-service/pkg/util"

	"github.com/creasty/defaults"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// AppConfig 应用配置
type AppConfig struct {
	File     string             `yaml:"-"` // 配置文件路径，不序列化
	Server   ServerConfig       `yaml:"server"`
	Log      LogConfig          `yaml:"log"`
	Database dao.DatabaseConfig `yaml:"database"`
	App      AppSettings        `yaml:"app"`
	Tracer   TracerConfig       `yaml:"tracer"`
}

// LogConfig 日志配置
type LogConfig struct {
	// Level 日志级别，参见 zapcore.ParseLevel
	Level string `yaml:"level" default:"info"`
	// File 日志文件路径，为空时输出到 stderr
	File string `yaml:"file"`
	// Production 是否启用 JSON 输出
	Production bool `yaml:"production"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	// RunMode 运行模式 debug / release
	RunMode string `yaml:"run-mode" default:"release"`
	// HttpPort HTTP 端口
	HttpPort string `yaml:"http-port" default:":3000"`
	// ReadTimeout 读取超时（秒）
	ReadTimeout int `yaml:"read-timeout" default:"60"`
	// WriteTimeout 写入超时（秒）
	WriteTimeout int `yaml:"write-timeout" default:"60"`
	// PrivateHttpListen 私有 HTTP 监听地址（metrics / pprof），为空时不启动
	PrivateHttpListen string `yaml:"private-http-listen"`
}

// AppSettings 应用设置
type AppSettings struct {
	// StoreName 逻辑存储名称，所有笔记操作在该存储的串行队列上执行
	StoreName string `yaml:"store-name" default:"notes"`
	// MaxPageSize 最大页面大小
	MaxPageSize int `yaml:"max-page-size" default:"100"`
	// QueueCapacity 串行队列容量
	QueueCapacity int `yaml:"queue-capacity" default:"100"`
	// QueueTimeout 操作开始执行前在队列中等待的最长时间，支持格式：30s、1m
	QueueTimeout string `yaml:"queue-timeout" default:"30s"`
	// MaintenanceCron 存储维护任务的 cron 表达式（5 段），为空时不启用
	MaintenanceCron string `yaml:"maintenance-cron"`
	// Lang 错误消息默认语言 en / zh_cn
	Lang string `yaml:"lang" default:"en"`
}

// TracerConfig 请求追踪配置
type TracerConfig struct {
	// Enabled 是否启用追踪 ID
	Enabled bool `yaml:"enabled"`
	// Header 追踪 ID 请求头名称，默认 X-Trace-ID
	Header string `yaml:"header" default:"X-Trace-ID"`
	// JaegerAgent jaeger agent 地址 host:port，为空时不上报
	JaegerAgent string `yaml:"jaeger-agent"`
}

// LoadConfig 从文件加载配置
// 返回配置实例和配置文件的绝对路径
func LoadConfig(f string) (*AppConfig, string, error) {
	realpath, err := filepath.Abs(f)
	if err != nil {
		return nil, "", err
	}
	realpath = filepath.Clean(realpath)

	file, err := os.ReadFile(realpath)
	if err != nil {
		return nil, realpath, errors.Wrap(err, "read config file failed")
	}

	c, err := ParseConfig(file)
	if err != nil {
		return nil, realpath, err
	}
	c.File = realpath

	return c, realpath, nil
}

// ParseConfig 解析 YAML 配置
func ParseConfig(data []byte) (*AppConfig, error) {
	c := new(AppConfig)

	// 设置默认值
	if err := defaults.Set(c); err != nil {
		return nil, errors.Wrap(err, "set default config failed")
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, errors.Wrap(err, "parse config file failed")
	}

	// 再次设置默认值，以填充 YAML 中存在但值为空的字段
	// defaults.Set 只有在字段为该类型的零值时才会填充
	if err := defaults.Set(c); err != nil {
		return nil, errors.Wrap(err, "re-set default config failed")
	}

	c.Database.Debug = c.IsDebug()
	return c, nil
}

// Save 保存配置到文件
func (c *AppConfig) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshal config failed")
	}

	err = os.WriteFile(c.File, data, 0644)
	if err != nil {
		return errors.Wrap(err, "write config file failed")
	}

	return nil
}

// IsDebug 是否为调试模式
func (c *AppConfig) IsDebug() bool {
	return c.Server.RunMode == "debug"
}

// GetQueueConfig 获取串行队列配置
func (c *AppConfig) GetQueueConfig() serialqueue.Config {
	cfg := serialqueue.DefaultConfig()

	if c.App.QueueCapacity > 0 {
		cfg.Capacity = c.App.QueueCapacity
	}
	if c.App.QueueTimeout != "" {
		if timeout, err := util.ParseDuration(c.App.QueueTimeout); err == nil {
			cfg.Timeout = timeout
		}
	}

	return cfg
}

// GetLoggerConfig 获取日志配置
func (c *AppConfig) GetLoggerConfig() logger.Config {
	return logger.Config{
		Level:      c.Log.Level,
		File:       c.Log.File,
		Production: c.Log.Production,
	}
}

// ReadTimeout HTTP 读取超时
func (c *AppConfig) ReadTimeout() time.Duration {
	return time.Duration(c.Server.ReadTimeout) * time.Second
}

// WriteTimeout HTTP 写入超时
func (c *AppConfig) WriteTimeout() time.Duration {
	return time.Duration(c.Server.WriteTimeout) * time.Second
}
