package api_router

import (
	"context"
	"time"

	"github.com/haierkeys/note-rpc-service/internal/app"

	"github.com/prometheus/client_golang/prometheus"
)

// RegisterNoteMetrics 注册笔记总数与串行队列指标
// 统计查询同样经过串行队列，不会与笔记操作并发
func RegisterNoteMetrics(reg prometheus.Registerer, a *app.App) {
	store := a.StoreName()

	notes := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name:        "note_rpc_notes",
		Help:        "Number of notes in the store.",
		ConstLabels: prometheus.Labels{"store": store},
	}, func() float64 {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var n int64
		err := a.Execute(ctx, func(ctx context.Context) error {
			var err error
			n, err = a.NoteService.Count(ctx)
			return err
		})
		if err != nil {
			return 0
		}
		return float64(n)
	})

	pending := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name:        "note_rpc_queue_pending",
		Help:        "Operations waiting in the store queue.",
		ConstLabels: prometheus.Labels{"store": store},
	}, func() float64 {
		return float64(a.QueueMetrics().Pending[store])
	})

	reg.MustRegister(notes, pending)
}
