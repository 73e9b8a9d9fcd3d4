// Package serialqueue runs operations against a named store one at a time
// Package serialqueue 按存储名串行执行操作
//
// Every operation submitted for the same store is executed by a single worker in FIFO order,
// so at most one store operation is in flight at any moment.
// 同一存储的所有操作由单个 worker 按 FIFO 顺序执行，任意时刻最多只有一个操作在进行。
package serialqueue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrQueueFull 存储队列已满
	ErrQueueFull = errors.New("serial queue is full")
	// ErrQueueClosed 队列管理器已关闭
	ErrQueueClosed = errors.New("serial queue is closed")
	// ErrTimeout 操作在队列中等待超时，未被执行
	ErrTimeout = errors.New("serial operation timeout")
)

// Config queue configuration
// Config 队列配置
type Config struct {
	// Capacity pending operations per store, default 100
	// Capacity 每个存储可排队的操作数，默认 100
	Capacity int
	// Timeout how long an operation may wait in the queue before it starts, default 30 seconds
	// Timeout 操作开始执行前在队列中等待的最长时间，默认 30 秒
	// 已开始执行的操作不受此限制，调用方总是得到其真实结果
	Timeout time.Duration
}

// DefaultConfig returns default configuration
// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Capacity: 100,
		Timeout:  30 * time.Second,
	}
}

type op struct {
	ctx    context.Context
	fn     func(context.Context) error
	result chan error
	// claimed 由 worker（开始执行）或调用方（放弃等待）设置，先到者决定结果
	claimed atomic.Bool
}

type storeQueue struct {
	name     string
	ch       chan *op
	executed atomic.Int64
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// Manager owns one serial queue per store name
// Manager 为每个存储名维护一个串行队列
type Manager struct {
	config Config
	logger *zap.Logger

	mu     sync.Mutex
	queues map[string]*storeQueue
	closed bool
}

// New creates a queue manager
// New 创建队列管理器
// cfg may be nil, logger may be nil
// cfg 与 logger 均可为 nil
func New(cfg *Config, logger *zap.Logger) *Manager {
	c := DefaultConfig()
	if cfg != nil {
		if cfg.Capacity > 0 {
			c.Capacity = cfg.Capacity
		}
		if cfg.Timeout > 0 {
			c.Timeout = cfg.Timeout
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	logger.Info("serial queue manager started",
		zap.Int("capacity", c.Capacity),
		zap.Duration("timeout", c.Timeout))

	return &Manager{
		config: c,
		logger: logger,
		queues: make(map[string]*storeQueue),
	}
}

// Execute runs fn on the worker of store and returns its error
// A panic inside fn is recovered and reported as an error, the worker keeps running
// Execute 在 store 的 worker 上执行 fn 并返回其错误
// fn 内的 panic 会被恢复并作为错误返回，worker 继续运行
// Cancellation and Timeout only apply while fn is still queued; once fn has started
// Execute waits for it and returns its own result
// 取消与超时只在 fn 排队期间生效，fn 开始执行后 Execute 会等待并返回其真实结果
func (m *Manager) Execute(ctx context.Context, store string, fn func(context.Context) error) error {
	o := &op{ctx: ctx, fn: fn, result: make(chan error, 1)}
	if err := m.enqueue(store, o); err != nil {
		return err
	}

	timer := time.NewTimer(m.config.Timeout)
	defer timer.Stop()

	select {
	case err := <-o.result:
		return err
	case <-ctx.Done():
		if o.claimed.CompareAndSwap(false, true) {
			return ctx.Err()
		}
	case <-timer.C:
		if o.claimed.CompareAndSwap(false, true) {
			return ErrTimeout
		}
	}

	// worker 已开始执行
	return <-o.result
}

// enqueue submits o to the queue of store, starting its worker on first use
// The lock is held across the send so no operation slips in after Shutdown
// enqueue 将 o 提交到 store 的队列，首次使用时启动 worker
// 发送期间持有锁，Shutdown 之后不会再有操作入队
func (m *Manager) enqueue(store string, o *op) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrQueueClosed
	}

	q, ok := m.queues[store]
	if !ok {
		q = &storeQueue{
			name:   store,
			ch:     make(chan *op, m.config.Capacity),
			stopCh: make(chan struct{}),
		}
		m.queues[store] = q

		q.wg.Add(1)
		go m.worker(q)

		m.logger.Debug("created serial queue", zap.String("store", store))
	}

	select {
	case q.ch <- o:
		return nil
	default:
		return ErrQueueFull
	}
}

func (m *Manager) worker(q *storeQueue) {
	defer q.wg.Done()

	for {
		select {
		case <-q.stopCh:
			m.drain(q)
			m.logger.Debug("serial queue worker stopped", zap.String("store", q.name))
			return
		case o := <-q.ch:
			m.run(q, o)
		}
	}
}

func (m *Manager) run(q *storeQueue, o *op) {
	// 调用方已放弃等待
	if !o.claimed.CompareAndSwap(false, true) {
		return
	}
	defer q.executed.Add(1)

	if err := o.ctx.Err(); err != nil {
		o.result <- err
		return
	}

	o.result <- m.call(q, o)
}

func (m *Manager) call(q *storeQueue, o *op) (err error) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("serial queue operation panic",
				zap.String("store", q.name),
				zap.Any("panic", r))
			err = fmt.Errorf("serial queue operation panic: %v", r)
		}
	}()
	return o.fn(o.ctx)
}

// drain runs the operations already queued when the worker is stopped
// drain 执行 worker 停止时已在队列中的操作
func (m *Manager) drain(q *storeQueue) {
	for {
		select {
		case o := <-q.ch:
			m.run(q, o)
		default:
			return
		}
	}
}

// Shutdown stops accepting operations and waits for queued ones to finish
// Shutdown 停止接受新操作并等待已排队的操作完成
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	queues := make([]*storeQueue, 0, len(m.queues))
	for _, q := range m.queues {
		queues = append(queues, q)
	}
	m.mu.Unlock()

	m.logger.Info("serial queue manager shutting down")

	done := make(chan struct{})
	go func() {
		for _, q := range queues {
			close(q.stopCh)
		}
		for _, q := range queues {
			q.wg.Wait()
		}
		close(done)
	}()

	select {
	case <-done:
		m.logger.Info("serial queue manager shutdown completed")
		return nil
	case <-ctx.Done():
		m.logger.Warn("serial queue manager shutdown timeout")
		return ctx.Err()
	}
}

// IsClosed 返回管理器是否已关闭
func (m *Manager) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Metrics queue manager metrics
// Metrics 队列管理器指标
type Metrics struct {
	Capacity int
	Stores   int
	Pending  map[string]int
	Executed map[string]int64
	IsClosed bool
}

// GetMetrics 获取当前指标
func (m *Manager) GetMetrics() Metrics {
	m.mu.Lock()
	defer m.mu.Unlock()

	mt := Metrics{
		Capacity: m.config.Capacity,
		Stores:   len(m.queues),
		Pending:  make(map[string]int, len(m.queues)),
		Executed: make(map[string]int64, len(m.queues)),
		IsClosed: m.closed,
	}
	for name, q := range m.queues {
		mt.Pending[name] = len(q.ch)
		mt.Executed[name] = q.executed.Load()
	}
	return mt
}
