// Package goredis is the public facade: a single-node Client and a
// cluster-aware ClusterClient, both built from the lower-level
// conn/executor/cluster/command packages, plus the minimal command set
// demonstrating the Input/Output/descriptor machinery end to end.
package goredis

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/wegjgwioj/goredis/executor"
)

// Config configures a single-node Client.
type Config struct {
	Host string
	Port int
	// Logger receives connect/disconnect/reconnect and protocol-level
	// events. A nil Logger defaults to zap.NewNop().
	Logger *zap.Logger
}

func (c Config) addr() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }

// Client is a single Redis-compatible node accessed through a pipelined
// executor. It implements command.Executor via its embedded *executor.Executor,
// so the command set in this package runs directly against it.
type Client struct {
	*executor.Executor
}

// New dials cfg.Host:cfg.Port and returns a ready Client.
func New(cfg Config) (*Client, error) {
	e, err := executor.New(cfg.addr(), cfg.Logger)
	if err != nil {
		return nil, err
	}
	return &Client{Executor: e}, nil
}

// Close releases the underlying connection at once and fails any
// in-flight calls with rediserr.ErrClosed; ctx only bounds how long
// Close waits for the executor's run loop to exit.
func (c *Client) Close(ctx context.Context) error {
	return c.Executor.Close(ctx)
}
