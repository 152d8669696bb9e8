package safe_close

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSafeClose_WaitsForAttached(t *testing.T) {
	sc := NewSafeClose()
	var stopped int32

	for i := 0; i < 3; i++ {
		sc.Attach(func(done func(), closeSignal <-chan struct{}) {
			defer done()
			<-closeSignal
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&stopped, 1)
		})
	}

	cause := errors.New("listener failed")
	sc.SendCloseSignal(cause)
	sc.SendCloseSignal(errors.New("ignored"))

	assert.Equal(t, cause, sc.WaitClosed())
	assert.Equal(t, int32(3), atomic.LoadInt32(&stopped))
}

func TestSafeClose_DoneIsIdempotent(t *testing.T) {
	sc := NewSafeClose()
	sc.Attach(func(done func(), closeSignal <-chan struct{}) {
		done()
		done()
	})
	assert.NoError(t, sc.WaitClosedAndClose())
}
