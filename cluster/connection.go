package cluster

import (
	"github.com/wegjgwioj/goredis/command"
	"github.com/wegjgwioj/goredis/rediserr"
	"github.com/wegjgwioj/goredis/resp"
)

// Partition is one master/replica-set entry from a CLUSTER SLOTS reply.
type Partition struct {
	StartSlot    int
	EndSlot      int
	MasterAddr   string
	MasterID     string
	ReplicaAddrs []string
}

// ClusterConnection is an immutable snapshot of the cluster's topology:
// the partition list as returned by CLUSTER SLOTS, and the derived
// {slot -> master address} lookup table. A Cluster atomically swaps its
// pointer to one of these on every topology refresh; readers never see
// a partially-updated snapshot.
type ClusterConnection struct {
	Partitions []Partition
	// Epoch counts successful refreshes (1 for the initial bootstrap);
	// diagnostic only, never consulted for routing correctness.
	Epoch      int64
	slotToAddr [SlotCount]string
}

// AddrForSlot returns the master address owning slot, or "" if the
// snapshot has a hole (no partition claims that slot).
func (c *ClusterConnection) AddrForSlot(slot int) string {
	if c == nil {
		return ""
	}
	return c.slotToAddr[slot]
}

// Addresses returns the set of distinct master addresses in the
// snapshot, used to decide which per-node executors to keep open after
// a refresh.
func (c *ClusterConnection) Addresses() map[string]struct{} {
	out := make(map[string]struct{}, len(c.Partitions))
	for _, p := range c.Partitions {
		out[p.MasterAddr] = struct{}{}
	}
	return out
}

// AnyAddress returns an arbitrary master address, used to dispatch
// commands that carry no key (PING, CLUSTER SLOTS itself).
func (c *ClusterConnection) AnyAddress() (string, bool) {
	if len(c.Partitions) == 0 {
		return "", false
	}
	return c.Partitions[0].MasterAddr, true
}

// parseClusterSlots decodes a CLUSTER SLOTS reply into a
// ClusterConnection, reusing command.ClusterSlots for the wire-shape
// parsing and deriving the {slot -> address} table from it.
func parseClusterSlots(v resp.Value) (*ClusterConnection, error) {
	partitions, err := command.ClusterSlots(v)
	if err != nil {
		return nil, err
	}

	snap := &ClusterConnection{}
	for _, p := range partitions {
		if p.StartSlot < 0 || p.EndSlot >= SlotCount || p.StartSlot > p.EndSlot {
			return nil, rediserr.NewProtocolError("CLUSTER SLOTS: slot range [%d,%d] out of bounds", p.StartSlot, p.EndSlot)
		}
		for s := p.StartSlot; s <= p.EndSlot; s++ {
			snap.slotToAddr[s] = p.Master.Addr
		}
		replicas := make([]string, 0, len(p.Replicas))
		for _, r := range p.Replicas {
			replicas = append(replicas, r.Addr)
		}
		snap.Partitions = append(snap.Partitions, Partition{
			StartSlot: int(p.StartSlot), EndSlot: int(p.EndSlot),
			MasterAddr: p.Master.Addr, MasterID: p.Master.NodeID,
			ReplicaAddrs: replicas,
		})
	}
	return snap, nil
}
