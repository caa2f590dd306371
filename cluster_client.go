package goredis

import (
	"context"

	"go.uber.org/zap"

	"github.com/wegjgwioj/goredis/cluster"
)

// ClusterConfig configures a ClusterClient.
type ClusterConfig struct {
	SeedAddresses []string
	Retry         cluster.RetryPolicy // zero value uses cluster.DefaultRetryPolicy
	Logger        *zap.Logger
}

// ClusterClient is a CRC16-slot-routed Redis Cluster accessed through a
// per-node pipelined executor. It implements command.Executor via its
// embedded *cluster.Cluster.
type ClusterClient struct {
	*cluster.Cluster
}

// NewCluster seeds the cluster topology from cfg.SeedAddresses (tried
// in order) and returns a ready ClusterClient.
func NewCluster(cfg ClusterConfig) (*ClusterClient, error) {
	c, err := cluster.New(cfg.SeedAddresses, cfg.Retry, cfg.Logger)
	if err != nil {
		return nil, err
	}
	return &ClusterClient{Cluster: c}, nil
}

// Close closes every per-node executor in parallel.
func (c *ClusterClient) Close(ctx context.Context) error {
	return c.Cluster.Close(ctx)
}
