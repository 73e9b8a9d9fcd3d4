package cmd

import (
	"fmt"
	"io"
	"time"

	internalApp "github.com/haierkeys/note-rpc-service/internal/app"

	"github.com/opentracing/opentracing-go"
	"github.com/uber/jaeger-client-go"
	jaegercfg "github.com/uber/jaeger-client-go/config"
	"go.uber.org/zap"
)

// initTracer 配置 jaeger agent 时创建 jaeger tracer 并设置为全局 tracer
// 未配置时恢复为 NoopTracer，返回的 io.Closer 为 nil
func initTracer(cfg internalApp.TracerConfig, lg *zap.Logger) (io.Closer, error) {
	if cfg.JaegerAgent == "" {
		opentracing.SetGlobalTracer(opentracing.NoopTracer{})
		return nil, nil
	}

	jc := jaegercfg.Configuration{
		ServiceName: internalApp.Name,
		Sampler: &jaegercfg.SamplerConfig{
			Type:  jaeger.SamplerTypeConst,
			Param: 1,
		},
		Reporter: &jaegercfg.ReporterConfig{
			LocalAgentHostPort:  cfg.JaegerAgent,
			BufferFlushInterval: time.Second,
		},
	}

	tracer, closer, err := jc.NewTracer(jaegercfg.Logger(jaegerLogger{lg.Sugar()}))
	if err != nil {
		return nil, fmt.Errorf("create jaeger tracer: %w", err)
	}
	opentracing.SetGlobalTracer(tracer)
	lg.Info("jaeger tracer enabled", zap.String("agent", cfg.JaegerAgent))

	return closer, nil
}

// jaegerLogger 将 jaeger 客户端日志转发到 zap
type jaegerLogger struct {
	s *zap.SugaredLogger
}

func (l jaegerLogger) Error(msg string) {
	l.s.Error(msg)
}

func (l jaegerLogger) Infof(msg string, args ...interface{}) {
	l.s.Infof(msg, args...)
}
