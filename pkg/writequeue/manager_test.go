package writequeue

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_SameKeyIsSerialized(t *testing.T) {
	m := New(nil, nil)
	defer m.Shutdown(context.Background())

	var running, maxRunning int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := m.Execute(context.Background(), Key("ride", 1), func() error {
				n := atomic.AddInt32(&running, 1)
				for {
					cur := atomic.LoadInt32(&maxRunning)
					if n <= cur || atomic.CompareAndSwapInt32(&maxRunning, cur, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				atomic.AddInt32(&running, -1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&maxRunning))
}

func TestManager_DifferentKeysRunConcurrently(t *testing.T) {
	m := New(nil, nil)
	defer m.Shutdown(context.Background())

	release := make(chan struct{})
	started := make(chan struct{}, 2)

	var wg sync.WaitGroup
	for _, key := range []string{Key("ride", 1), Key("food", 1)} {
		wg.Add(1)
		go func(key string) {
			defer wg.Done()
			_ = m.Execute(context.Background(), key, func() error {
				started <- struct{}{}
				<-release
				return nil
			})
		}(key)
	}

	for i := 0; i < 2; i++ {
		select {
		case <-started:
		case <-time.After(time.Second):
			t.Fatal("operations on different keys did not run concurrently")
		}
	}
	close(release)
	wg.Wait()
}

func TestManager_QueueFull(t *testing.T) {
	m := New(&Config{QueueCapacity: 1}, nil)
	defer m.Shutdown(context.Background())

	release := make(chan struct{})
	go func() {
		_ = m.Execute(context.Background(), "k", func() error {
			<-release
			return nil
		})
	}()

	require.Eventually(t, func() bool { return m.QueuedCount("k") == 1 }, time.Second, time.Millisecond)

	err := m.Execute(context.Background(), "k", func() error { return nil })
	assert.ErrorIs(t, err, ErrWriteQueueFull)
	close(release)
}

func TestManager_PanicIsReturnedAsError(t *testing.T) {
	m := New(nil, nil)
	defer m.Shutdown(context.Background())

	err := m.Execute(context.Background(), "k", func() error { panic("boom") })
	assert.Error(t, err)

	assert.NoError(t, m.Execute(context.Background(), "k", func() error { return nil }))
}

func TestManager_IdleQueueRetires(t *testing.T) {
	m := New(&Config{IdleTimeout: 10 * time.Millisecond}, nil)
	defer m.Shutdown(context.Background())

	require.NoError(t, m.Execute(context.Background(), "k", func() error { return nil }))
	assert.Eventually(t, func() bool { return m.QueueCount() == 0 }, time.Second, 5*time.Millisecond)

	require.NoError(t, m.Execute(context.Background(), "k", func() error { return nil }))
}

func TestManager_ShutdownRejectsNewWork(t *testing.T) {
	m := New(nil, nil)
	require.NoError(t, m.Shutdown(context.Background()))
	assert.True(t, m.IsClosed())

	err := m.Execute(context.Background(), "k", func() error { return nil })
	assert.ErrorIs(t, err, ErrWriteQueueClosed)
}
