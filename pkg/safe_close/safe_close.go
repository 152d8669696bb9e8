package safe_close

import (
	"sync"
)

// SafeClose 统一管理后台协程的关闭信号与退出等待
type SafeClose struct {
	once        sync.Once
	closeSignal chan struct{}
	wg          sync.WaitGroup

	mu  sync.Mutex
	err error
}

func NewSafeClose() *SafeClose {
	return &SafeClose{closeSignal: make(chan struct{})}
}

// Attach 启动一个受管协程，fn 返回前必须调用 done
func (s *SafeClose) Attach(fn func(done func(), closeSignal <-chan struct{})) {
	s.wg.Add(1)
	var once sync.Once
	done := func() { once.Do(s.wg.Done) }
	go fn(done, s.closeSignal)
}

// SendCloseSignal 广播关闭信号，仅第一次调用生效，err 记录关闭原因
func (s *SafeClose) SendCloseSignal(err error) {
	s.once.Do(func() {
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
		close(s.closeSignal)
	})
}

// CloseSignal 返回关闭信号通道
func (s *SafeClose) CloseSignal() <-chan struct{} {
	return s.closeSignal
}

// WaitClosed 阻塞直到所有受管协程退出，返回关闭原因
func (s *SafeClose) WaitClosed() error {
	s.wg.Wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// WaitClosedAndClose 发送关闭信号并等待退出
func (s *SafeClose) WaitClosedAndClose() error {
	s.SendCloseSignal(nil)
	return s.WaitClosed()
}
