package executor

import (
	"sync"

	"github.com/wegjgwioj/goredis/resp"
)

// completion is the handle a caller blocks on; the reader resolves it
// with the decoded reply, or the reconnect loop fails it with an error
// when the connection it was queued against dies first.
type completion struct {
	done  chan struct{}
	value resp.Value
	err   error
}

func newCompletion() *completion {
	return &completion{done: make(chan struct{})}
}

func (c *completion) resolve(value resp.Value, err error) {
	c.value, c.err = value, err
	close(c.done)
}

// outstanding is the unbounded FIFO of completions awaiting a reply,
// shared between the sender (which pushes, in write order) and the
// reader (which pops the head for every parsed value). A mutex+cond
// guards it rather than a channel: the size has no natural bound (the
// sender may push many completions from one batched write before the
// reader drains any of them), and draining-and-failing everything on a
// connection loss needs to inspect the whole backlog atomically.
type outstanding struct {
	mu      sync.Mutex
	cond    *sync.Cond
	entries []*completion
	closed  bool
}

func newOutstanding() *outstanding {
	o := &outstanding{}
	o.cond = sync.NewCond(&o.mu)
	return o
}

// push appends completions in order. Called by the sender immediately
// after a successful write, so the reader never observes a reply for a
// completion that has not been pushed yet.
func (o *outstanding) push(cs ...*completion) {
	o.mu.Lock()
	o.entries = append(o.entries, cs...)
	o.cond.Broadcast()
	o.mu.Unlock()
}

// popBlocking removes and returns the head completion, blocking until
// one is available or the queue is torn down (in which case ok is
// false).
func (o *outstanding) popBlocking() (c *completion, ok bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for len(o.entries) == 0 && !o.closed {
		o.cond.Wait()
	}
	if len(o.entries) == 0 {
		return nil, false
	}
	c = o.entries[0]
	o.entries = o.entries[1:]
	return c, true
}

// drainAndFail resolves every currently-queued completion with err and
// marks the queue closed, waking any blocked popBlocking call.
func (o *outstanding) drainAndFail(err error) {
	o.mu.Lock()
	entries := o.entries
	o.entries = nil
	o.closed = true
	o.cond.Broadcast()
	o.mu.Unlock()

	for _, c := range entries {
		c.resolve(resp.Value{}, err)
	}
}

// reopen clears the closed flag after a reconnect, so the queue can
// serve the resumed connection.
func (o *outstanding) reopen() {
	o.mu.Lock()
	o.closed = false
	o.mu.Unlock()
}
