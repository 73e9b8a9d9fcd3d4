// Package safe_close coordinates graceful shutdown of long running components
// Package safe_close 协调长时间运行组件的优雅关闭
package safe_close

import (
	"sync"
)

// SafeClose fans a single close signal out to every attached component
// SafeClose 将一次关闭信号分发给所有已挂载的组件
type SafeClose struct {
	once    sync.Once
	mu      sync.Mutex
	wg      sync.WaitGroup
	closeCh chan struct{}
	err     error
}

// NewSafeClose creates a SafeClose
// NewSafeClose 创建 SafeClose
func NewSafeClose() *SafeClose {
	return &SafeClose{closeCh: make(chan struct{})}
}

// Attach runs fn in its own goroutine; fn must call done once it has finished
// Attach 在独立协程中运行 fn，fn 结束时必须调用 done
func (s *SafeClose) Attach(fn func(done func(), closeSignal <-chan struct{})) {
	s.wg.Add(1)
	var doneOnce sync.Once
	go fn(func() { doneOnce.Do(s.wg.Done) }, s.closeCh)
}

// SendCloseSignal broadcasts the close signal, only the first call takes effect
// SendCloseSignal 广播关闭信号，仅首次调用生效
func (s *SafeClose) SendCloseSignal(err error) {
	s.once.Do(func() {
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
		close(s.closeCh)
	})
}

// Closed reports whether the close signal has been sent
// Closed 是否已发送关闭信号
func (s *SafeClose) Closed() bool {
	select {
	case <-s.closeCh:
		return true
	default:
		return false
	}
}

// WaitClosed blocks until every attached component has called done
// and returns the error passed to the first SendCloseSignal
// WaitClosed 阻塞直到所有组件调用 done，返回首次 SendCloseSignal 的错误
func (s *SafeClose) WaitClosed() error {
	s.wg.Wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
