package goredis

import (
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wegjgwioj/goredis/command"
	"github.com/wegjgwioj/goredis/rediserr"
	"github.com/wegjgwioj/goredis/resp"
)

func listen(t *testing.T) net.Listener {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	return ln
}

// runScriptedServer accepts one connection and answers every decoded
// command via handler, in arrival order.
func runScriptedServer(t *testing.T, ln net.Listener, handler func(verb string, args []string) resp.Value) {
	t.Helper()
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		dec := resp.NewDecoder()
		buf := make([]byte, 8192)
		for {
			n, err := conn.Read(buf)
			if err != nil {
				return
			}
			values, err := dec.Feed(buf[:n])
			if err != nil {
				return
			}
			for _, v := range values {
				args := make([]string, 0, len(v.Items))
				for _, item := range v.Items {
					args = append(args, string(item.Bulk))
				}
				verb := ""
				if len(args) > 0 {
					verb = strings.ToUpper(args[0])
				}
				reply := handler(verb, args)
				if _, err := conn.Write(resp.Serialize(reply)); err != nil {
					return
				}
			}
		}
	}()
}

func dialClient(t *testing.T, ln net.Listener) *Client {
	t.Helper()
	host, port := splitHostPort(t, ln.Addr().String())
	c, err := New(Config{Host: host, Port: port})
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = c.Close(ctx)
	})
	return c
}

func splitHostPort(t *testing.T, addr string) (string, int) {
	t.Helper()
	host, portStr, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	port := 0
	for _, r := range portStr {
		port = port*10 + int(r-'0')
	}
	return host, port
}

func TestSetThenGetRoundTrips(t *testing.T) {
	ln := listen(t)
	defer ln.Close()

	store := map[string]string{}
	runScriptedServer(t, ln, func(verb string, args []string) resp.Value {
		switch verb {
		case "SET":
			store[args[1]] = args[2]
			return resp.SimpleString("OK")
		case "GET":
			v, ok := store[args[1]]
			if !ok {
				return resp.NullBulkString()
			}
			return resp.BulkStringFrom(v)
		default:
			return resp.Err("ERR unexpected command " + verb)
		}
	})

	c := dialClient(t, ln)
	require.NoError(t, c.Set(context.Background(), "foo", "bar"))

	got, err := c.Get(context.Background(), "foo")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "bar", *got)
}

func TestGetOnMissingKeyReturnsNil(t *testing.T) {
	ln := listen(t)
	defer ln.Close()

	runScriptedServer(t, ln, func(verb string, args []string) resp.Value {
		switch verb {
		case "GET":
			return resp.NullBulkString()
		default:
			return resp.Err("ERR unexpected command " + verb)
		}
	})

	c := dialClient(t, ln)
	got, err := c.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestWrongTypeReplyClassifiesAsWrongType(t *testing.T) {
	ln := listen(t)
	defer ln.Close()

	runScriptedServer(t, ln, func(verb string, args []string) resp.Value {
		switch verb {
		case "LPUSH":
			return resp.Err("WRONGTYPE Operation against a key holding the wrong kind of value")
		default:
			return resp.Err("ERR unexpected command " + verb)
		}
	})

	c := dialClient(t, ln)
	_, err := c.LPush(context.Background(), "astring", "x")
	require.Error(t, err)
	var wt *rediserr.WrongType
	assert.ErrorAs(t, err, &wt)
}

func TestIncrAndTTL(t *testing.T) {
	ln := listen(t)
	defer ln.Close()

	counter := int64(0)
	runScriptedServer(t, ln, func(verb string, args []string) resp.Value {
		switch verb {
		case "INCR":
			counter++
			return resp.Integer(counter)
		case "TTL":
			return resp.Integer(-2)
		default:
			return resp.Err("ERR unexpected command " + verb)
		}
	})

	c := dialClient(t, ln)
	v, err := c.Incr(context.Background(), "counter")
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)

	_, err = c.TTL(context.Background(), "counter")
	require.Error(t, err)
	var protoErr *rediserr.ProtocolError
	assert.ErrorAs(t, err, &protoErr)
}

func TestPingRoundTrips(t *testing.T) {
	ln := listen(t)
	defer ln.Close()

	runScriptedServer(t, ln, func(verb string, args []string) resp.Value {
		if verb == "PING" {
			return resp.SimpleString("PONG")
		}
		return resp.Err("ERR unexpected command " + verb)
	})

	c := dialClient(t, ln)
	assert.NoError(t, c.Ping(context.Background()))
}

func TestGeoRadiusWithCoordAndDist(t *testing.T) {
	ln := listen(t)
	defer ln.Close()

	runScriptedServer(t, ln, func(verb string, args []string) resp.Value {
		if verb != "GEORADIUS" {
			return resp.Err("ERR unexpected command " + verb)
		}
		return resp.Array([]resp.Value{
			resp.Array([]resp.Value{
				resp.BulkStringFrom("Palermo"),
				resp.BulkStringFrom("190.4424"),
				resp.Array([]resp.Value{resp.BulkStringFrom("13.361389"), resp.BulkStringFrom("38.115556")}),
			}),
		})
	})

	c := dialClient(t, ln)
	out, err := c.GeoRadius(context.Background(), "Sicily", GeoRadiusQuery{
		Longitude: 15, Latitude: 37, Radius: 200, Unit: "km",
		WithCoord: true, WithDist: true,
	})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Palermo", out[0].Member)
	require.NotNil(t, out[0].Dist)
	require.NotNil(t, out[0].Coord)
}

func TestSortWithByAndGet(t *testing.T) {
	ln := listen(t)
	defer ln.Close()

	var gotArgs []string
	runScriptedServer(t, ln, func(verb string, args []string) resp.Value {
		if verb != "SORT" {
			return resp.Err("ERR unexpected command " + verb)
		}
		gotArgs = args
		return resp.Array([]resp.Value{resp.BulkStringFrom("a"), resp.BulkStringFrom("b")})
	})

	c := dialClient(t, ln)
	out, err := c.Sort(context.Background(), "mylist", SortOptions{By: "weight_*", Get: []string{"data_*"}, Alpha: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, out)
	assert.Contains(t, gotArgs, "BY")
	assert.Contains(t, gotArgs, "weight_*")
	assert.Contains(t, gotArgs, "GET")
	assert.Contains(t, gotArgs, "data_*")
	assert.Contains(t, gotArgs, "ALPHA")
}

func TestZInterStoreWithWeightsAndAggregate(t *testing.T) {
	ln := listen(t)
	defer ln.Close()

	var gotArgs []string
	runScriptedServer(t, ln, func(verb string, args []string) resp.Value {
		if verb != "ZINTERSTORE" {
			return resp.Err("ERR unexpected command " + verb)
		}
		gotArgs = args
		return resp.Integer(3)
	})

	c := dialClient(t, ln)
	n, err := c.ZInterStore(context.Background(), "dest", []string{"a", "b"}, []float64{1, 2}, command.AggregateMax)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.Contains(t, gotArgs, "WEIGHTS")
	assert.Contains(t, gotArgs, "AGGREGATE")
	assert.Contains(t, gotArgs, "MAX")
}

func TestXPendingSummaryRoundTrip(t *testing.T) {
	ln := listen(t)
	defer ln.Close()

	runScriptedServer(t, ln, func(verb string, args []string) resp.Value {
		if verb != "XPENDING" {
			return resp.Err("ERR unexpected command " + verb)
		}
		return resp.Array([]resp.Value{
			resp.Integer(1),
			resp.BulkStringFrom("1-0"),
			resp.BulkStringFrom("1-0"),
			resp.Array([]resp.Value{
				resp.Array([]resp.Value{resp.BulkStringFrom("consumer-a"), resp.BulkStringFrom("1")}),
			}),
		})
	})

	c := dialClient(t, ln)
	out, err := c.XPending(context.Background(), "stream", "group")
	require.NoError(t, err)
	assert.Equal(t, int64(1), out.Count)
	require.Len(t, out.Consumers, 1)
	assert.Equal(t, "consumer-a", out.Consumers[0].Consumer)
}

func TestMGetPreservesKeyOrderWithHoles(t *testing.T) {
	ln := listen(t)
	defer ln.Close()

	runScriptedServer(t, ln, func(verb string, args []string) resp.Value {
		if verb != "MGET" {
			return resp.Err("ERR unexpected command " + verb)
		}
		out := make([]resp.Value, 0, len(args)-1)
		for _, k := range args[1:] {
			if k == "missing" {
				out = append(out, resp.NullBulkString())
				continue
			}
			out = append(out, resp.BulkStringFrom(k+"-value"))
		}
		return resp.Array(out)
	})

	c := dialClient(t, ln)
	got, err := c.MGet(context.Background(), "a", "missing", "c")
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.NotNil(t, got[0])
	assert.Equal(t, "a-value", *got[0])
	assert.Nil(t, got[1])
	require.NotNil(t, got[2])
	assert.Equal(t, "c-value", *got[2])
}
