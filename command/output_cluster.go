package command

import (
	"strconv"

	"github.com/wegjgwioj/goredis/resp"
)

// ClusterNode is one master or replica entry inside a CLUSTER SLOTS
// partition: address plus the node ID, when the server includes one.
type ClusterNode struct {
	Addr   string
	NodeID string
}

// ClusterPartition is one partition entry of a CLUSTER SLOTS reply.
type ClusterPartition struct {
	StartSlot int64
	EndSlot   int64
	Master    ClusterNode
	Replicas  []ClusterNode
}

// ClusterSlots decodes a CLUSTER SLOTS reply into its partition list.
// The cluster package's topology snapshot is built on top of this same
// shape; this decoder exists so a plain single-node Client can also
// issue CLUSTER SLOTS and get a typed reply without depending on the
// cluster package.
func ClusterSlots(v resp.Value) ([]ClusterPartition, error) {
	if v.Type != resp.TypeArray || v.IsNull {
		return nil, protocolErrorf("CLUSTER SLOTS: expected array reply")
	}
	out := make([]ClusterPartition, 0, len(v.Items))
	for _, entry := range v.Items {
		if entry.Type != resp.TypeArray || len(entry.Items) < 3 {
			return nil, protocolErrorf("CLUSTER SLOTS: malformed partition entry")
		}
		start, err := IntegerReply(entry.Items[0])
		if err != nil {
			return nil, err
		}
		end, err := IntegerReply(entry.Items[1])
		if err != nil {
			return nil, err
		}
		master, err := clusterNode(entry.Items[2])
		if err != nil {
			return nil, err
		}
		var replicas []ClusterNode
		for _, r := range entry.Items[3:] {
			node, nErr := clusterNode(r)
			if nErr != nil {
				continue
			}
			replicas = append(replicas, node)
		}
		out = append(out, ClusterPartition{StartSlot: start, EndSlot: end, Master: master, Replicas: replicas})
	}
	return out, nil
}

func clusterNode(v resp.Value) (ClusterNode, error) {
	if v.Type != resp.TypeArray || len(v.Items) < 2 {
		return ClusterNode{}, protocolErrorf("CLUSTER SLOTS: malformed node entry")
	}
	ip, err := MultiString(v.Items[0])
	if err != nil {
		return ClusterNode{}, err
	}
	port, err := IntegerReply(v.Items[1])
	if err != nil {
		return ClusterNode{}, err
	}
	node := ClusterNode{Addr: formatAddr(ip, port)}
	if len(v.Items) >= 3 {
		node.NodeID, _ = MultiString(v.Items[2])
	}
	if node.NodeID == "" {
		// Older servers reply with only host/port; synthesize a stable id.
		node.NodeID = node.Addr
	}
	return node, nil
}

func formatAddr(ip string, port int64) string {
	return ip + ":" + strconv.FormatInt(port, 10)
}
