// Package executor implements the single-node pipelined command
// executor: one TCP connection driven by a sender task and a reader
// task that cooperate over a bounded request queue and an unbounded
// outstanding-completion FIFO, reconnecting on any I/O failure.
package executor

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/wegjgwioj/goredis/conn"
	"github.com/wegjgwioj/goredis/rediserr"
	"github.com/wegjgwioj/goredis/resp"
)

// DefaultQueueCapacity is the recommended bounded request queue size;
// any value >= 1 is correct, this only affects how large a batch the
// sender can coalesce into a single write.
const DefaultQueueCapacity = 16

// DefaultReconnectBackoff is the pause between failed dial attempts
// during the reconnect loop.
const DefaultReconnectBackoff = 200 * time.Millisecond

type request struct {
	args [][]byte
	c    *completion
}

// Executor owns one reconnecting TCP connection and implements
// command.Executor. It is safe for concurrent callers; the only
// contention is the bounded request queue.
type Executor struct {
	addr     string
	log      *zap.Logger
	queueCap int

	reqCh chan request
	out   *outstanding

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// New dials addr and starts the sender/reader tasks. log may be nil
// (defaults to a no-op logger).
func New(addr string, log *zap.Logger) (*Executor, error) {
	if log == nil {
		log = zap.NewNop()
	}
	// Fail fast if the address is not reachable at all; subsequent
	// failures are handled by the reconnect loop instead of surfacing
	// from New.
	c, err := conn.Dial(addr, log)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	e := &Executor{
		addr:     addr,
		log:      log,
		queueCap: DefaultQueueCapacity,
		reqCh:    make(chan request, DefaultQueueCapacity),
		out:      newOutstanding(),
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go e.run(c)
	return e, nil
}

// Execute encodes and sends args (verb tokens followed by arguments,
// all as bulk-string tokens) and returns the decoded reply, or an
// IOError/Timeout. It performs no classification of RESP error replies
// — that is the command descriptor's job.
func (e *Executor) Execute(ctx context.Context, args [][]byte) (resp.Value, error) {
	if e.ctx.Err() != nil {
		return resp.Value{}, rediserr.ErrClosed
	}
	c := newCompletion()
	select {
	case e.reqCh <- request{args: args, c: c}:
	case <-ctx.Done():
		return resp.Value{}, &rediserr.Timeout{Detail: ctx.Err().Error()}
	case <-e.ctx.Done():
		return resp.Value{}, rediserr.ErrClosed
	}

	select {
	case <-c.done:
		return c.value, c.err
	case <-ctx.Done():
		// The request may already be on the wire; its eventual reply is
		// discarded rather than retracted, per the caller-cancellation
		// contract.
		return resp.Value{}, &rediserr.Timeout{Detail: ctx.Err().Error()}
	}
}

// Close cancels the sender/reader tasks, closes the socket, and fails
// every outstanding completion with rediserr.ErrClosed. It blocks until
// the run loop has exited.
func (e *Executor) Close(ctx context.Context) error {
	e.cancel()
	select {
	case <-e.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

// run is the reconnect loop: it owns the lifetime of one underlying
// conn.Conn at a time, replacing it whenever the sender or reader task
// reports a failure, until the executor's scope is cancelled.
func (e *Executor) run(first *conn.Conn) {
	defer close(e.done)

	c := first
	for {
		e.out.reopen()
		connCtx, connCancel := context.WithCancel(e.ctx)
		errCh := make(chan error, 2)

		go e.sender(connCtx, c, errCh)
		go e.reader(connCtx, c, errCh)

		var failure error
		select {
		case failure = <-errCh:
		case <-e.ctx.Done():
			failure = rediserr.ErrClosed
		}
		connCancel()
		_ = c.Close()
		e.out.drainAndFail(failure)

		if e.ctx.Err() != nil {
			return
		}

		e.log.Warn("connection lost, reconnecting", zap.String("addr", e.addr), zap.Error(failure))
		next, err := e.reconnect()
		if err != nil {
			return // e.ctx was cancelled while reconnecting
		}
		c = next
	}
}

// reconnect retries conn.Dial until it succeeds or the executor's
// scope is cancelled.
func (e *Executor) reconnect() (*conn.Conn, error) {
	for {
		if e.ctx.Err() != nil {
			return nil, e.ctx.Err()
		}
		c, err := conn.Dial(e.addr, e.log)
		if err == nil {
			return c, nil
		}
		e.log.Warn("reconnect attempt failed", zap.String("addr", e.addr), zap.Error(err))
		select {
		case <-time.After(DefaultReconnectBackoff):
		case <-e.ctx.Done():
			return nil, e.ctx.Err()
		}
	}
}

// sender dequeues 1..queueCap requests in one take, batches their
// serialized commands into a single write, and pushes their
// completions onto the outstanding FIFO in dequeue order — atomically
// with respect to the write succeeding, so the reader always finds a
// completion waiting for every reply it parses.
func (e *Executor) sender(ctx context.Context, c *conn.Conn, errCh chan<- error) {
	for {
		var batch []request
		select {
		case <-ctx.Done():
			return
		case r := <-e.reqCh:
			batch = append(batch, r)
		}

	drain:
		for len(batch) < e.queueCap {
			select {
			case r := <-e.reqCh:
				batch = append(batch, r)
			default:
				break drain
			}
		}

		var wire []byte
		for _, r := range batch {
			wire = append(wire, resp.EncodeCommand(nil, r.args)...)
		}
		if err := c.Write(wire); err != nil {
			for _, r := range batch {
				r.c.resolve(resp.Value{}, err)
			}
			reportFailure(errCh, err)
			return
		}

		completions := make([]*completion, len(batch))
		for i, r := range batch {
			completions[i] = r.c
		}
		e.out.push(completions...)
	}
}

// reader drives the streaming decoder over the connection's read
// stream; for each parsed Value it resolves the head of the outstanding
// FIFO, preserving strict request/reply order.
func (e *Executor) reader(ctx context.Context, c *conn.Conn, errCh chan<- error) {
	dec := resp.NewDecoder()
	buf := make([]byte, conn.DefaultReadBufferSize)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		n, err := c.Read(buf)
		if err != nil {
			reportFailure(errCh, err)
			return
		}
		values, err := dec.Feed(buf[:n])
		if err != nil {
			reportFailure(errCh, err)
			return
		}
		for _, v := range values {
			completion, ok := e.out.popBlocking()
			if !ok {
				return
			}
			completion.resolve(v, nil)
		}
	}
}

func reportFailure(errCh chan<- error, err error) {
	select {
	case errCh <- err:
	default:
	}
}
