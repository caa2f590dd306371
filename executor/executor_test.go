package executor

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wegjgwioj/goredis/resp"
)

// echoCountServer accepts exactly one connection and replies to every
// command it receives with an incrementing RESP integer, in arrival
// order — enough to exercise FIFO reply matching (property 4 / scenario C).
func echoCountServer(t *testing.T, ln net.Listener) {
	t.Helper()
	conn, err := ln.Accept()
	if err != nil {
		return
	}
	defer conn.Close()

	dec := resp.NewDecoder()
	buf := make([]byte, 4096)
	count := int64(0)
	for {
		n, err := conn.Read(buf)
		if err != nil {
			return
		}
		values, err := dec.Feed(buf[:n])
		if err != nil {
			return
		}
		for range values {
			count++
			if _, err := conn.Write([]byte(fmt.Sprintf(":%d\r\n", count))); err != nil {
				return
			}
		}
	}
}

func listen(t *testing.T) net.Listener {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	return ln
}

func TestFIFOMatching(t *testing.T) {
	ln := listen(t)
	defer ln.Close()
	go echoCountServer(t, ln)

	e, err := New(ln.Addr().String(), nil)
	require.NoError(t, err)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = e.Close(ctx)
	}()

	const n = 20
	results := make([]int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			v, err := e.Execute(ctx, [][]byte{[]byte("INCR"), []byte("k")})
			require.NoError(t, err)
			require.Equal(t, resp.TypeInteger, v.Type)
			results[i] = v.Int
		}()
	}
	wg.Wait()

	seen := make(map[int64]bool, n)
	for _, r := range results {
		assert.False(t, seen[r], "duplicate reply %d", r)
		seen[r] = true
		assert.GreaterOrEqual(t, r, int64(1))
		assert.LessOrEqual(t, r, int64(n))
	}
	assert.Len(t, seen, n)
}

func TestSequentialOrderPreserved(t *testing.T) {
	ln := listen(t)
	defer ln.Close()
	go echoCountServer(t, ln)

	e, err := New(ln.Addr().String(), nil)
	require.NoError(t, err)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = e.Close(ctx)
	}()

	ctx := context.Background()
	for want := int64(1); want <= 5; want++ {
		v, err := e.Execute(ctx, [][]byte{[]byte("INCR"), []byte("k")})
		require.NoError(t, err)
		assert.Equal(t, want, v.Int)
	}
}

// flakyOnceServer accepts connections in a loop; the first connection
// is closed immediately after a single reply (simulating a mid-stream
// drop), the second serves normally, exercising the reconnect path.
func flakyOnceServer(t *testing.T, ln net.Listener) {
	t.Helper()
	first, err := ln.Accept()
	if err != nil {
		return
	}
	buf := make([]byte, 4096)
	n, err := first.Read(buf)
	if err == nil && n > 0 {
		_, _ = first.Write([]byte(":1\r\n"))
	}
	_ = first.Close()

	second, err := ln.Accept()
	if err != nil {
		return
	}
	defer second.Close()
	dec := resp.NewDecoder()
	count := int64(0)
	for {
		n, err := second.Read(buf)
		if err != nil {
			return
		}
		values, err := dec.Feed(buf[:n])
		if err != nil {
			return
		}
		for range values {
			count++
			if _, err := second.Write([]byte(fmt.Sprintf(":%d\r\n", count))); err != nil {
				return
			}
		}
	}
}

func TestReconnectAfterMidStreamClose(t *testing.T) {
	ln := listen(t)
	defer ln.Close()
	go flakyOnceServer(t, ln)

	e, err := New(ln.Addr().String(), nil)
	require.NoError(t, err)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = e.Close(ctx)
	}()

	ctx := context.Background()
	v, err := e.Execute(ctx, [][]byte{[]byte("INCR"), []byte("k")})
	require.NoError(t, err)
	assert.Equal(t, int64(1), v.Int)

	// The connection closes right after that first reply; give the
	// reconnect loop a moment to notice and redial before retrying.
	assert.Eventually(t, func() bool {
		v, err := e.Execute(ctx, [][]byte{[]byte("INCR"), []byte("k")})
		return err == nil && v.Type == resp.TypeInteger
	}, 2*time.Second, 10*time.Millisecond)
}

func TestExecuteFailsAfterClose(t *testing.T) {
	ln := listen(t)
	defer ln.Close()
	go echoCountServer(t, ln)

	e, err := New(ln.Addr().String(), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, e.Close(ctx))

	_, err = e.Execute(context.Background(), [][]byte{[]byte("PING")})
	assert.Error(t, err)
}

func TestExecuteEncodesVerbAndArgsAsBulkStringArray(t *testing.T) {
	ln := listen(t)
	defer ln.Close()

	received := make(chan []byte, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 4096)
		n, _ := conn.Read(buf)
		got := make([]byte, n)
		copy(got, buf[:n])
		received <- got
		_, _ = conn.Write([]byte("+OK\r\n"))
	}()

	e, err := New(ln.Addr().String(), nil)
	require.NoError(t, err)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = e.Close(ctx)
	}()

	_, err = e.Execute(context.Background(), [][]byte{[]byte("SET"), []byte("foo"), []byte("bar")})
	require.NoError(t, err)

	select {
	case wire := <-received:
		assert.Equal(t, "*3\r\n$3\r\nSET\r\n$3\r\nfoo\r\n$3\r\nbar\r\n", string(wire))
	case <-time.After(time.Second):
		t.Fatal("server never received a write")
	}
}

func TestQueueCapacityConstant(t *testing.T) {
	assert.GreaterOrEqual(t, DefaultQueueCapacity, 1)
	_ = strconv.Itoa(DefaultQueueCapacity)
}
