package intake

import (
	"sync/atomic"
	"time"
)

// Completion is a one-shot response sink. It resolves exactly once;
// every later Complete call is a no-op reporting false. The caller side
// waits on Done or Await, the actor side only ever calls Complete.
type Completion struct {
	ch   chan Response
	done atomic.Bool
}

func NewCompletion() *Completion {
	return &Completion{ch: make(chan Response, 1)}
}

// Complete resolves the sink. The first call wins.
func (c *Completion) Complete(r Response) bool {
	if c.done.Swap(true) {
		return false
	}
	c.ch <- r
	close(c.ch)
	return true
}

// Resolved reports whether the sink already carries its terminal response.
func (c *Completion) Resolved() bool {
	return c.done.Load()
}

// Done exposes the terminal response. The channel yields exactly one value
// and is then closed.
func (c *Completion) Done() <-chan Response {
	return c.ch
}

// Await blocks until the terminal response or the timeout. timeout <= 0
// waits indefinitely.
func (c *Completion) Await(timeout time.Duration) (Response, bool) {
	if timeout <= 0 {
		r, ok := <-c.ch
		return r, ok
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case r, ok := <-c.ch:
		return r, ok
	case <-timer.C:
		return Response{}, false
	}
}
