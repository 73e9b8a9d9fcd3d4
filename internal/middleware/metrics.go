package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics RPC 请求指标
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics 创建并注册指标，reg 为 nil 时使用默认注册器
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "note_rpc_requests_total",
			Help: "Number of RPC requests by operation and result code.",
		}, []string{"operation", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "note_rpc_request_duration_seconds",
			Help:    "RPC request latency by operation.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	reg.MustRegister(m.requests, m.duration)
	return m
}

// Handler 记录已注册 RPC 路由的请求数与耗时
func (m *Metrics) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		// 未注册的路径不计入，避免标签无限增长
		if c.FullPath() == "" {
			return
		}
		op := OperationName(c)
		if op == "" {
			return
		}

		rpcCode := c.GetString("rpc_code")
		if rpcCode == "" {
			rpcCode = strconv.Itoa(c.Writer.Status())
		}
		m.requests.WithLabelValues(op, rpcCode).Inc()
		m.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}
}
