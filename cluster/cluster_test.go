package cluster

import (
	"context"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wegjgwioj/goredis/resp"
)

func listen(t *testing.T) net.Listener {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	return ln
}

func hostPort(t *testing.T, addr string) (string, int64) {
	t.Helper()
	host, portStr, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	port, err := strconv.ParseInt(portStr, 10, 64)
	require.NoError(t, err)
	return host, port
}

// fullRangeSlots builds a CLUSTER SLOTS reply that maps the entire slot
// space to a single master with no replicas.
func fullRangeSlots(host string, port int64) resp.Value {
	return resp.Array([]resp.Value{
		resp.Array([]resp.Value{
			resp.Integer(0), resp.Integer(SlotCount - 1),
			resp.Array([]resp.Value{resp.BulkStringFrom(host), resp.Integer(port), resp.BulkStringFrom(host + ":" + strconv.FormatInt(port, 10))}),
		}),
	})
}

// runScriptedServer accepts a single connection and answers every
// decoded command (1-indexed arrival order) via handler.
func runScriptedServer(t *testing.T, ln net.Listener, handler func(n int, verb string, args []string) resp.Value) {
	t.Helper()
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		dec := resp.NewDecoder()
		buf := make([]byte, 8192)
		n := 0
		for {
			nr, err := conn.Read(buf)
			if err != nil {
				return
			}
			values, err := dec.Feed(buf[:nr])
			if err != nil {
				return
			}
			for _, v := range values {
				n++
				args := make([]string, 0, len(v.Items))
				for _, item := range v.Items {
					args = append(args, string(item.Bulk))
				}
				verb := ""
				if len(args) > 0 {
					verb = strings.ToUpper(args[0])
				}
				reply := handler(n, verb, args)
				if _, err := conn.Write(resp.Serialize(reply)); err != nil {
					return
				}
			}
		}
	}()
}

func TestMovedRedirectRefreshesTopologyAndRetries(t *testing.T) {
	lnA := listen(t)
	defer lnA.Close()
	lnB := listen(t)
	defer lnB.Close()

	hostA, portA := hostPort(t, lnA.Addr().String())
	hostB, portB := hostPort(t, lnB.Addr().String())
	addrB := lnB.Addr().String()

	slotsCalls := 0
	runScriptedServer(t, lnA, func(n int, verb string, args []string) resp.Value {
		switch verb {
		case "CLUSTER":
			slotsCalls++
			if slotsCalls == 1 {
				return fullRangeSlots(hostA, portA)
			}
			// After refresh, the whole range belongs to B.
			return fullRangeSlots(hostB, portB)
		case "GET":
			slot := Slot(args[1])
			return resp.Err("MOVED " + strconv.Itoa(slot) + " " + addrB)
		default:
			return resp.Err("ERR unexpected command " + verb)
		}
	})

	runScriptedServer(t, lnB, func(n int, verb string, args []string) resp.Value {
		switch verb {
		case "GET":
			return resp.BulkStringFrom("bar")
		default:
			return resp.Err("ERR unexpected command " + verb)
		}
	})

	cl, err := New([]string{lnA.Addr().String()}, RetryPolicy{Base: 10 * time.Millisecond, Factor: 2, MaxAttempts: 5}, nil)
	require.NoError(t, err)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = cl.Close(ctx)
	}()

	reply, err := cl.Execute(context.Background(), [][]byte{[]byte("GET"), []byte("foo")})
	require.NoError(t, err)
	assert.Equal(t, "bar", string(reply.Bulk))
	assert.Equal(t, 2, slotsCalls, "expected exactly one refresh after the MOVED redirect")

	snap := cl.snapshot.Load()
	require.NotNil(t, snap)
	assert.Equal(t, int64(2), snap.Epoch)
}

func TestAskRedirectRetriesWithoutRefresh(t *testing.T) {
	lnA := listen(t)
	defer lnA.Close()
	lnB := listen(t)
	defer lnB.Close()

	hostA, portA := hostPort(t, lnA.Addr().String())
	addrB := lnB.Addr().String()

	slotsCalls := 0
	runScriptedServer(t, lnA, func(n int, verb string, args []string) resp.Value {
		switch verb {
		case "CLUSTER":
			slotsCalls++
			return fullRangeSlots(hostA, portA)
		case "GET":
			slot := Slot(args[1])
			return resp.Err("ASK " + strconv.Itoa(slot) + " " + addrB)
		default:
			return resp.Err("ERR unexpected command " + verb)
		}
	})

	var bCommands []string
	runScriptedServer(t, lnB, func(n int, verb string, args []string) resp.Value {
		bCommands = append(bCommands, verb)
		switch verb {
		case "ASKING":
			return resp.SimpleString("OK")
		case "GET":
			return resp.BulkStringFrom("bar")
		default:
			return resp.Err("ERR unexpected command " + verb)
		}
	})

	cl, err := New([]string{lnA.Addr().String()}, RetryPolicy{Base: 10 * time.Millisecond, Factor: 2, MaxAttempts: 5}, nil)
	require.NoError(t, err)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = cl.Close(ctx)
	}()

	reply, err := cl.Execute(context.Background(), [][]byte{[]byte("GET"), []byte("foo")})
	require.NoError(t, err)
	assert.Equal(t, "bar", string(reply.Bulk))
	assert.Equal(t, 1, slotsCalls, "ASK must not trigger a topology refresh")
	assert.Eventually(t, func() bool {
		return len(bCommands) == 2
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"ASKING", "GET"}, bCommands)

	snap := cl.snapshot.Load()
	require.NotNil(t, snap)
	assert.Equal(t, int64(1), snap.Epoch)
}

func TestRouteFallsBackToAnyAddressForKeylessCommands(t *testing.T) {
	ln := listen(t)
	defer ln.Close()
	host, port := hostPort(t, ln.Addr().String())

	runScriptedServer(t, ln, func(n int, verb string, args []string) resp.Value {
		switch verb {
		case "CLUSTER":
			return fullRangeSlots(host, port)
		case "PING":
			return resp.SimpleString("PONG")
		default:
			return resp.Err("ERR unexpected command " + verb)
		}
	})

	cl, err := New([]string{ln.Addr().String()}, DefaultRetryPolicy, nil)
	require.NoError(t, err)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = cl.Close(ctx)
	}()

	reply, err := cl.Execute(context.Background(), [][]byte{[]byte("PING")})
	require.NoError(t, err)
	assert.Equal(t, "PONG", reply.Str)
}
