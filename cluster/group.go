package cluster

// GroupKeysByNode partitions keys by the master address currently
// owning each key's slot, preserving each group's relative order.
// Grounded in the teacher's Router.execDel, which grouped DEL's key
// arguments by ring node before fanning requests out in parallel; here
// the grouping key is the CRC16 slot owner instead of a consistent-hash
// ring position.
//
// Keys whose slot has no known owner are grouped under the empty
// string; callers should treat that group as a routing failure rather
// than dispatching it.
func (cl *Cluster) GroupKeysByNode(keys []string) map[string][]string {
	snap := cl.snapshot.Load()
	groups := make(map[string][]string)
	for _, key := range keys {
		addr := snap.AddrForSlot(Slot(key))
		groups[addr] = append(groups[addr], key)
	}
	return groups
}
