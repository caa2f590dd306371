// Package cluster implements the cluster-aware executor: CRC16 slot
// routing over a topology discovered via CLUSTER SLOTS, with
// transparent MOVED (permanent, triggers a topology refresh) and ASK
// (transient, retried via ASKING with no refresh) redirect handling.
//
// Grounded in the teacher's Router (key-based dispatch, multi-key
// grouping for DEL) and PeerClient (per-address connection reuse), now
// driven by Redis Cluster's own slot protocol instead of a client-side
// consistent-hash ring.
package cluster

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/wegjgwioj/goredis/executor"
	"github.com/wegjgwioj/goredis/rediserr"
	"github.com/wegjgwioj/goredis/resp"
)

// RetryPolicy bounds the cluster executor's redirect/IOError retries.
type RetryPolicy struct {
	Base        time.Duration
	Factor      float64
	MaxAttempts int
}

// DefaultRetryPolicy matches the teacher's reconnect cadence, extended
// with an attempt cap so a persistently broken cluster fails closed
// rather than retrying forever.
var DefaultRetryPolicy = RetryPolicy{Base: 50 * time.Millisecond, Factor: 2, MaxAttempts: 5}

// Cluster dispatches commands across a Redis Cluster's nodes. It
// implements command.Executor so command descriptors run against it
// exactly as they would against a single-node executor.
type Cluster struct {
	seedAddrs []string
	retry     RetryPolicy
	log       *zap.Logger

	snapshot atomic.Pointer[ClusterConnection]

	execMu    sync.Mutex
	executors map[string]*executor.Executor

	refreshGroup singleflight.Group

	ctx    context.Context
	cancel context.CancelFunc
}

// New seeds the cluster from addrs (tried in order until one answers
// CLUSTER SLOTS) and builds the initial topology snapshot.
func New(addrs []string, retry RetryPolicy, log *zap.Logger) (*Cluster, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if retry.MaxAttempts <= 0 {
		retry = DefaultRetryPolicy
	}
	ctx, cancel := context.WithCancel(context.Background())
	cl := &Cluster{
		seedAddrs: addrs,
		retry:     retry,
		log:       log,
		executors: make(map[string]*executor.Executor),
		ctx:       ctx,
		cancel:    cancel,
	}

	snap, err := cl.bootstrap(addrs)
	if err != nil {
		cancel()
		return nil, err
	}
	snap.Epoch = 1
	cl.snapshot.Store(snap)
	return cl, nil
}

// Close closes every per-node executor in parallel.
func (cl *Cluster) Close(ctx context.Context) error {
	cl.cancel()
	cl.execMu.Lock()
	execs := cl.executors
	cl.executors = make(map[string]*executor.Executor)
	cl.execMu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	for addr, e := range execs {
		addr, e := addr, e
		g.Go(func() error {
			if err := e.Close(gctx); err != nil {
				return fmt.Errorf("close %s: %w", addr, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// Execute implements command.Executor: it resolves the owning node for
// args' key, dispatches, and transparently retries MOVED/ASK redirects
// and I/O failures per the configured RetryPolicy.
func (cl *Cluster) Execute(ctx context.Context, args [][]byte) (resp.Value, error) {
	addr, err := cl.route(args)
	if err != nil {
		return resp.Value{}, err
	}

	var lastErr error
	for attempt := 0; attempt < cl.retry.MaxAttempts; attempt++ {
		exec, err := cl.getExecutor(addr)
		if err != nil {
			lastErr = err
			if !cl.backoff(ctx, attempt) {
				return resp.Value{}, lastErr
			}
			continue
		}

		reply, err := exec.Execute(ctx, args)
		if err != nil {
			lastErr = err
			if !cl.backoff(ctx, attempt) {
				return resp.Value{}, lastErr
			}
			continue
		}

		if !reply.IsError() {
			return reply, nil
		}

		switch redirect := rediserr.Classify(reply.Str).(type) {
		case *rediserr.Moved:
			cl.log.Info("MOVED redirect, refreshing topology", zap.Int("slot", redirect.Slot), zap.String("addr", redirect.Address))
			if err := cl.refresh(); err != nil {
				return resp.Value{}, err
			}
			addr = redirect.Address
			lastErr = redirect
			continue
		case *rediserr.Ask:
			return cl.retryAsk(ctx, redirect.Address, args)
		default:
			// Any other server error (WRONGTYPE, NOSCRIPT, ...) is not this
			// layer's concern; let the descriptor boundary classify it.
			return reply, nil
		}
	}
	return resp.Value{}, lastErr
}

// retryAsk issues ASKING on target, then retries the original command
// there once, per the ASK redirect contract (no topology refresh).
func (cl *Cluster) retryAsk(ctx context.Context, target string, args [][]byte) (resp.Value, error) {
	exec, err := cl.getExecutor(target)
	if err != nil {
		return resp.Value{}, err
	}
	if _, err := exec.Execute(ctx, [][]byte{[]byte("ASKING")}); err != nil {
		return resp.Value{}, err
	}
	return exec.Execute(ctx, args)
}

// route extracts the key (argument index 1, by convention) and
// resolves its slot's owning address. Commands with no key argument
// fall back to an arbitrary node.
func (cl *Cluster) route(args [][]byte) (string, error) {
	snap := cl.snapshot.Load()
	if snap == nil {
		return "", &rediserr.ClusterConnectionError{Detail: "no topology loaded"}
	}
	if len(args) < 2 {
		addr, ok := snap.AnyAddress()
		if !ok {
			return "", &rediserr.ClusterConnectionError{Detail: "no known nodes"}
		}
		return addr, nil
	}
	slot := Slot(string(args[1]))
	addr := snap.AddrForSlot(slot)
	if addr == "" {
		return "", &rediserr.ClusterKeyExecutorError{Slot: slot}
	}
	return addr, nil
}

func (cl *Cluster) getExecutor(addr string) (*executor.Executor, error) {
	cl.execMu.Lock()
	defer cl.execMu.Unlock()
	if e, ok := cl.executors[addr]; ok {
		return e, nil
	}
	e, err := executor.New(addr, cl.log)
	if err != nil {
		return nil, err
	}
	cl.executors[addr] = e
	return e, nil
}

// bootstrap tries each address in order, issuing CLUSTER SLOTS on the
// first that answers, per §4.5 initialization.
func (cl *Cluster) bootstrap(addrs []string) (*ClusterConnection, error) {
	var lastErr error
	for _, addr := range addrs {
		exec, err := cl.getExecutor(addr)
		if err != nil {
			lastErr = err
			continue
		}
		reply, err := exec.Execute(cl.ctx, [][]byte{[]byte("CLUSTER"), []byte("SLOTS")})
		if err != nil {
			lastErr = err
			continue
		}
		if reply.IsError() {
			lastErr = rediserr.Classify(reply.Str)
			continue
		}
		snap, err := parseClusterSlots(reply)
		if err != nil {
			lastErr = err
			continue
		}
		return snap, nil
	}
	return nil, &rediserr.ClusterConnectionError{Detail: fmt.Sprintf("no reachable seed address: %v", lastErr)}
}

// refresh re-bootstraps the topology from the currently known addresses
// and atomically installs the new snapshot, closing executors for
// addresses no longer present. Concurrent refreshes collapse into one
// via singleflight.
func (cl *Cluster) refresh() error {
	_, err, _ := cl.refreshGroup.Do("refresh", func() (interface{}, error) {
		old := cl.snapshot.Load()
		seeds := cl.seedAddrs
		if old != nil {
			seeds = addressList(old)
		}
		next, err := cl.bootstrap(seeds)
		if err != nil {
			return nil, err
		}
		if old != nil {
			next.Epoch = old.Epoch + 1
		} else {
			next.Epoch = 1
		}
		cl.snapshot.Store(next)
		if old != nil {
			cl.closeStale(old, next)
		}
		return nil, nil
	})
	return err
}

// closeStale closes, in parallel, every per-node executor whose
// address is no longer part of the current topology.
func (cl *Cluster) closeStale(old, next *ClusterConnection) {
	keep := next.Addresses()

	cl.execMu.Lock()
	var stale []*executor.Executor
	for addr := range old.Addresses() {
		if _, ok := keep[addr]; ok {
			continue
		}
		if e, ok := cl.executors[addr]; ok {
			stale = append(stale, e)
			delete(cl.executors, addr)
		}
	}
	cl.execMu.Unlock()

	if len(stale) == 0 {
		return
	}
	var wg sync.WaitGroup
	var mu sync.Mutex
	var errs error
	for _, e := range stale {
		e := e
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := e.Close(ctx); err != nil {
				mu.Lock()
				errs = multierr.Append(errs, err)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if errs != nil {
		cl.log.Warn("errors closing stale cluster executors", zap.Error(errs))
	}
}

func addressList(snap *ClusterConnection) []string {
	addrs := snap.Addresses()
	out := make([]string, 0, len(addrs))
	for a := range addrs {
		out = append(out, a)
	}
	return out
}

// backoff sleeps the exponential delay for attempt, returning false if
// ctx or the cluster's own scope ends first (in which case the caller
// should give up instead of retrying).
func (cl *Cluster) backoff(ctx context.Context, attempt int) bool {
	delay := cl.retry.Base
	for i := 0; i < attempt; i++ {
		delay = time.Duration(float64(delay) * cl.retry.Factor)
	}
	select {
	case <-time.After(delay):
		return true
	case <-ctx.Done():
		return false
	case <-cl.ctx.Done():
		return false
	}
}
