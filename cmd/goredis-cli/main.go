// Command goredis-cli is a minimal interactive client demonstrating the
// public API: connect to a single node (or a cluster, via -cluster),
// then run PING/GET/SET/DEL/INCR/EXPIRE/TTL/LPUSH/MGET from stdin.
//
// Grounded in the teacher's cmd/eval_client, which dialed a connection
// and ran a fixed command sequence against it for manual verification;
// this generalizes that into a small REPL over the real Client/ClusterClient API.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/wegjgwioj/goredis"
	"github.com/wegjgwioj/goredis/command"
)

func main() {
	host := flag.String("host", "127.0.0.1", "node host")
	port := flag.Int("port", 6379, "node port")
	cluster := flag.Bool("cluster", false, "treat host:port as a cluster seed")
	flag.Parse()

	log, _ := zap.NewDevelopment()
	defer log.Sync()

	if *cluster {
		runCluster(*host, *port, log)
		return
	}
	runSingle(*host, *port, log)
}

func runSingle(host string, port int, log *zap.Logger) {
	client, err := goredis.New(goredis.Config{Host: host, Port: port, Logger: log})
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect:", err)
		os.Exit(1)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = client.Close(ctx)
	}()

	repl(func(ctx context.Context, verb string, args []string) (string, error) {
		return dispatchSingle(ctx, client, verb, args)
	})
}

func runCluster(host string, port int, log *zap.Logger) {
	client, err := goredis.NewCluster(goredis.ClusterConfig{
		SeedAddresses: []string{fmt.Sprintf("%s:%d", host, port)},
		Logger:        log,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect:", err)
		os.Exit(1)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = client.Close(ctx)
	}()

	repl(func(ctx context.Context, verb string, args []string) (string, error) {
		return dispatchCluster(ctx, client, verb, args)
	})
}

func repl(run func(ctx context.Context, verb string, args []string) (string, error)) {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Fprint(os.Stderr, "goredis> ")
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			fmt.Fprint(os.Stderr, "goredis> ")
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		out, err := run(ctx, strings.ToUpper(fields[0]), fields[1:])
		cancel()
		if err != nil {
			fmt.Println("(error)", err)
		} else {
			fmt.Println(out)
		}
		fmt.Fprint(os.Stderr, "goredis> ")
	}
}

func dispatchSingle(ctx context.Context, c *goredis.Client, verb string, args []string) (string, error) {
	switch verb {
	case "PING":
		return "PONG", c.Ping(ctx)
	case "GET":
		v, err := c.Get(ctx, args[0])
		if err != nil || v == nil {
			return "(nil)", err
		}
		return *v, nil
	case "SET":
		return "OK", c.Set(ctx, args[0], args[1])
	case "DEL":
		n, err := c.Del(ctx, args...)
		return strconv.FormatInt(n, 10), err
	case "INCR":
		n, err := c.Incr(ctx, args[0])
		return strconv.FormatInt(n, 10), err
	case "EXPIRE":
		seconds, _ := strconv.ParseInt(args[1], 10, 64)
		ok, err := c.Expire(ctx, args[0], seconds)
		return strconv.FormatBool(ok), err
	case "TTL":
		d, err := c.TTL(ctx, args[0])
		return formatDuration(d), err
	case "LPUSH":
		n, err := c.LPush(ctx, args[0], args[1:]...)
		return strconv.FormatInt(n, 10), err
	case "MGET":
		vs, err := c.MGet(ctx, args...)
		return formatMGet(vs), err
	default:
		return "", fmt.Errorf("unknown command %q", verb)
	}
}

func dispatchCluster(ctx context.Context, c *goredis.ClusterClient, verb string, args []string) (string, error) {
	switch verb {
	case "GET":
		v, err := c.Get(ctx, args[0])
		if err != nil || v == nil {
			return "(nil)", err
		}
		return *v, nil
	case "SET":
		return "OK", c.Set(ctx, args[0], args[1])
	case "DEL":
		n, err := c.Del(ctx, args...)
		return strconv.FormatInt(n, 10), err
	case "INCR":
		n, err := c.Incr(ctx, args[0])
		return strconv.FormatInt(n, 10), err
	case "MGET":
		vs, err := c.MGet(ctx, args...)
		return formatMGet(vs), err
	default:
		return "", fmt.Errorf("unknown or single-node-only command %q", verb)
	}
}

func formatDuration(d command.DurationReply) string {
	if d.Outcome == command.DurationNoExpire {
		return "-1"
	}
	return strconv.FormatInt(d.Duration, 10)
}

func formatMGet(vs []*string) string {
	out := make([]string, len(vs))
	for i, v := range vs {
		if v == nil {
			out[i] = "(nil)"
		} else {
			out[i] = *v
		}
	}
	return strings.Join(out, ", ")
}
