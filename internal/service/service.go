// Package service 实现业务逻辑层
package service

import (
	"sync"
	"time"

	"github.com/haierkeys/note-rpc-service/pkg/timex"
)

// Clock 时间源
type Clock func() time.Time

// monotonicClock returns millisecond timestamps that never repeat or go backwards,
// so notes created one after another keep a strict createdAt order.
// monotonicClock 返回严格递增的毫秒时间戳，保证先后创建的笔记 createdAt 有序
type monotonicClock struct {
	mu   sync.Mutex
	now  Clock
	last time.Time
}

func newMonotonicClock(now Clock) *monotonicClock {
	if now == nil {
		now = func() time.Time { return time.Time(timex.Now()) }
	}
	return &monotonicClock{now: now}
}

func (c *monotonicClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.now().UTC().Truncate(time.Millisecond)
	if !t.After(c.last) {
		t = c.last.Add(time.Millisecond)
	}
	c.last = t
	return t
}
