package command

import (
	"github.com/wegjgwioj/goredis/resp"
)

// StreamInfo is XINFO STREAM's basic reply, decoded field by field
// rather than by positional index: the server is free to return
// "length", "groups", "last-generated-id" (and the rest) in any order,
// and a map keyed by field name tolerates that without caring which
// position each field landed in.
type StreamInfo struct {
	Length          int64
	RadixTreeKeys   int64
	RadixTreeNodes  int64
	Groups          int64
	LastGeneratedID string
	MaxDeletedID    string
	EntriesAdded    int64
	FirstEntry      *StreamEntry
	LastEntry       *StreamEntry
}

// StreamEntry is one (id, field/value map) stream record.
type StreamEntry struct {
	ID     string
	Fields map[string]string
}

// streamEntryOutput decodes a 2-element [id, flat-field-array] reply
// into a StreamEntry.
func streamEntryOutput(v resp.Value) (StreamEntry, error) {
	if v.Type != resp.TypeArray || len(v.Items) != 2 {
		return StreamEntry{}, protocolErrorf("expected 2-element stream entry")
	}
	id, err := MultiString(v.Items[0])
	if err != nil {
		return StreamEntry{}, err
	}
	fields, err := flatStringMap(v.Items[1])
	if err != nil {
		return StreamEntry{}, err
	}
	return StreamEntry{ID: id, Fields: fields}, nil
}

// XInfoStream decodes XINFO STREAM's reply: a flat array alternating
// field-name bulk strings and arbitrarily-typed values, field order
// unspecified.
func XInfoStream(v resp.Value) (StreamInfo, error) {
	if v.Type != resp.TypeArray || len(v.Items)%2 != 0 {
		return StreamInfo{}, protocolErrorf("XINFO STREAM: expected flat field/value array")
	}

	var info StreamInfo
	for i := 0; i < len(v.Items); i += 2 {
		name, err := MultiString(v.Items[i])
		if err != nil {
			return StreamInfo{}, err
		}
		val := v.Items[i+1]
		switch name {
		case "length":
			info.Length, err = IntegerReply(val)
		case "radix-tree-keys":
			info.RadixTreeKeys, err = IntegerReply(val)
		case "radix-tree-nodes":
			info.RadixTreeNodes, err = IntegerReply(val)
		case "groups":
			info.Groups, err = IntegerReply(val)
		case "last-generated-id":
			info.LastGeneratedID, err = MultiString(val)
		case "max-deleted-entry-id":
			info.MaxDeletedID, err = MultiString(val)
		case "entries-added":
			info.EntriesAdded, err = IntegerReply(val)
		case "first-entry":
			if val.Type == resp.TypeArray && !val.IsNull {
				e, eErr := streamEntryOutput(val)
				err = eErr
				if eErr == nil {
					info.FirstEntry = &e
				}
			}
		case "last-entry":
			if val.Type == resp.TypeArray && !val.IsNull {
				e, eErr := streamEntryOutput(val)
				err = eErr
				if eErr == nil {
					info.LastEntry = &e
				}
			}
		default:
			// Unknown/newer server fields are ignored rather than rejected,
			// matching the "server may add fields" tolerance XINFO implies.
		}
		if err != nil {
			return StreamInfo{}, err
		}
	}
	return info, nil
}

// StreamGroupFull is one consumer group entry inside XINFO STREAM FULL's
// reply: its pending-entry count and delivery cursor, plus its own
// pending entries and consumers, each nested in full.
type StreamGroupFull struct {
	Name            string
	PelCount        int64
	LastDeliveredID string
	EntriesRead     int64
	Lag             int64
	PelEntries      []PendingMessage
	Consumers       []StreamConsumerFull
}

// StreamConsumerFull is one consumer entry inside a StreamGroupFull.
type StreamConsumerFull struct {
	Name       string
	SeenTime   int64
	ActiveTime int64
	PelCount   int64
	Pending    []PendingMessage
}

// StreamInfoFull is XINFO STREAM's FULL-form reply: the same summary
// fields as StreamInfo, plus the stream's raw entries and each consumer
// group's full pending-entry and consumer detail (rather than the
// first/last-entry-only summary the basic form gives).
type StreamInfoFull struct {
	Length               int64
	RadixTreeKeys        int64
	RadixTreeNodes       int64
	LastGeneratedID      string
	MaxDeletedID         string
	EntriesAdded         int64
	RecordedFirstEntryID string
	Entries              []StreamEntry
	Groups               []StreamGroupFull
}

// XInfoStreamFull decodes XINFO STREAM's FULL-form reply, field order
// unspecified, matching XInfoStream's tolerance.
func XInfoStreamFull(v resp.Value) (StreamInfoFull, error) {
	if v.Type != resp.TypeArray || len(v.Items)%2 != 0 {
		return StreamInfoFull{}, protocolErrorf("XINFO STREAM FULL: expected flat field/value array")
	}
	var info StreamInfoFull
	for i := 0; i < len(v.Items); i += 2 {
		name, err := MultiString(v.Items[i])
		if err != nil {
			return StreamInfoFull{}, err
		}
		val := v.Items[i+1]
		switch name {
		case "length":
			info.Length, err = IntegerReply(val)
		case "radix-tree-keys":
			info.RadixTreeKeys, err = IntegerReply(val)
		case "radix-tree-nodes":
			info.RadixTreeNodes, err = IntegerReply(val)
		case "last-generated-id":
			info.LastGeneratedID, err = MultiString(val)
		case "max-deleted-entry-id":
			info.MaxDeletedID, err = MultiString(val)
		case "entries-added":
			info.EntriesAdded, err = IntegerReply(val)
		case "recorded-first-entry-id":
			info.RecordedFirstEntryID, err = MultiString(val)
		case "entries":
			info.Entries, err = Chunk(streamEntryOutput)(val)
		case "groups":
			info.Groups, err = streamGroupsFullOutput(val)
		default:
		}
		if err != nil {
			return StreamInfoFull{}, err
		}
	}
	return info, nil
}

func streamGroupsFullOutput(v resp.Value) ([]StreamGroupFull, error) {
	if v.Type != resp.TypeArray {
		return nil, protocolErrorf("XINFO STREAM FULL: expected groups array")
	}
	if v.IsNull {
		return []StreamGroupFull{}, nil
	}
	out := make([]StreamGroupFull, 0, len(v.Items))
	for _, g := range v.Items {
		if g.Type != resp.TypeArray || len(g.Items)%2 != 0 {
			return nil, protocolErrorf("XINFO STREAM FULL: malformed group entry")
		}
		var group StreamGroupFull
		var err error
		for i := 0; i < len(g.Items); i += 2 {
			name, nerr := MultiString(g.Items[i])
			if nerr != nil {
				return nil, nerr
			}
			val := g.Items[i+1]
			switch name {
			case "name":
				group.Name, err = MultiString(val)
			case "pel-count":
				group.PelCount, err = IntegerReply(val)
			case "last-delivered-id":
				group.LastDeliveredID, err = MultiString(val)
			case "entries-read":
				group.EntriesRead, err = IntegerReply(val)
			case "lag":
				group.Lag, err = IntegerReply(val)
			case "pending":
				group.PelEntries, err = fullPelEntries(val)
			case "consumers":
				group.Consumers, err = streamConsumersFullOutput(val)
			default:
			}
			if err != nil {
				return nil, err
			}
		}
		out = append(out, group)
	}
	return out, nil
}

func fullPelEntries(v resp.Value) ([]PendingMessage, error) {
	if v.Type != resp.TypeArray {
		return nil, protocolErrorf("XINFO STREAM FULL: expected pending array")
	}
	if v.IsNull {
		return []PendingMessage{}, nil
	}
	out := make([]PendingMessage, 0, len(v.Items))
	for _, e := range v.Items {
		if e.Type != resp.TypeArray || len(e.Items) < 3 {
			return nil, protocolErrorf("XINFO STREAM FULL: malformed pending entry")
		}
		id, err := MultiString(e.Items[0])
		if err != nil {
			return nil, err
		}
		delivered, err := IntegerReply(e.Items[1])
		if err != nil {
			return nil, err
		}
		idle, err := IntegerReply(e.Items[2])
		if err != nil {
			return nil, err
		}
		out = append(out, PendingMessage{ID: id, DeliveryCount: delivered, Idle: idle})
	}
	return out, nil
}

func streamConsumersFullOutput(v resp.Value) ([]StreamConsumerFull, error) {
	if v.Type != resp.TypeArray {
		return nil, protocolErrorf("XINFO STREAM FULL: expected consumers array")
	}
	if v.IsNull {
		return []StreamConsumerFull{}, nil
	}
	out := make([]StreamConsumerFull, 0, len(v.Items))
	for _, c := range v.Items {
		if c.Type != resp.TypeArray || len(c.Items)%2 != 0 {
			return nil, protocolErrorf("XINFO STREAM FULL: malformed consumer entry")
		}
		var consumer StreamConsumerFull
		var err error
		for i := 0; i < len(c.Items); i += 2 {
			name, nerr := MultiString(c.Items[i])
			if nerr != nil {
				return nil, nerr
			}
			val := c.Items[i+1]
			switch name {
			case "name":
				consumer.Name, err = MultiString(val)
			case "seen-time":
				consumer.SeenTime, err = IntegerReply(val)
			case "active-time":
				consumer.ActiveTime, err = IntegerReply(val)
			case "pel-count":
				consumer.PelCount, err = IntegerReply(val)
			case "pending":
				consumer.Pending, err = fullPelEntries(val)
			default:
			}
			if err != nil {
				return nil, err
			}
		}
		out = append(out, consumer)
	}
	return out, nil
}

// StreamGroup is one XINFO GROUPS reply entry.
type StreamGroup struct {
	Name            string
	Consumers       int64
	Pending         int64
	LastDeliveredID string
	EntriesRead     int64
	Lag             int64
}

// StreamGroupsInfo decodes XINFO GROUPS: an array of flat field/value
// group records, field order unspecified. "consumers", "pending",
// "entries-read", and "lag" are RESP integers on the wire, not bulk
// strings, so each record is walked field by field rather than routed
// through the all-string flatStringMap, matching XInfoStream's tolerance.
func StreamGroupsInfo(v resp.Value) ([]StreamGroup, error) {
	if v.Type != resp.TypeArray {
		return nil, protocolErrorf("XINFO GROUPS: expected array, got %s", v.Type)
	}
	if v.IsNull {
		return []StreamGroup{}, nil
	}
	out := make([]StreamGroup, 0, len(v.Items))
	for _, g := range v.Items {
		if g.Type != resp.TypeArray || len(g.Items)%2 != 0 {
			return nil, protocolErrorf("XINFO GROUPS: malformed group entry")
		}
		var group StreamGroup
		var err error
		for i := 0; i < len(g.Items); i += 2 {
			name, nerr := MultiString(g.Items[i])
			if nerr != nil {
				return nil, nerr
			}
			val := g.Items[i+1]
			switch name {
			case "name":
				group.Name, err = MultiString(val)
			case "consumers":
				group.Consumers, err = IntegerReply(val)
			case "pending":
				group.Pending, err = IntegerReply(val)
			case "last-delivered-id":
				group.LastDeliveredID, err = MultiString(val)
			case "entries-read":
				group.EntriesRead, err = IntegerReply(val)
			case "lag":
				group.Lag, err = IntegerReply(val)
			default:
			}
			if err != nil {
				return nil, err
			}
		}
		out = append(out, group)
	}
	return out, nil
}

// StreamConsumer is one XINFO CONSUMERS reply entry.
type StreamConsumer struct {
	Name       string
	Pending    int64
	Idle       int64
	SeenTime   int64
	ActiveTime int64
}

// StreamConsumersInfo decodes XINFO CONSUMERS: an array of flat
// field/value consumer records, field order unspecified. "pending",
// "idle", "seen-time", and "active-time" are RESP integers on the
// wire, so each record is walked field by field rather than routed
// through the all-string flatStringMap.
func StreamConsumersInfo(v resp.Value) ([]StreamConsumer, error) {
	if v.Type != resp.TypeArray {
		return nil, protocolErrorf("XINFO CONSUMERS: expected array, got %s", v.Type)
	}
	if v.IsNull {
		return []StreamConsumer{}, nil
	}
	out := make([]StreamConsumer, 0, len(v.Items))
	for _, c := range v.Items {
		if c.Type != resp.TypeArray || len(c.Items)%2 != 0 {
			return nil, protocolErrorf("XINFO CONSUMERS: malformed consumer entry")
		}
		var consumer StreamConsumer
		var err error
		for i := 0; i < len(c.Items); i += 2 {
			name, nerr := MultiString(c.Items[i])
			if nerr != nil {
				return nil, nerr
			}
			val := c.Items[i+1]
			switch name {
			case "name":
				consumer.Name, err = MultiString(val)
			case "pending":
				consumer.Pending, err = IntegerReply(val)
			case "idle":
				consumer.Idle, err = IntegerReply(val)
			case "seen-time":
				consumer.SeenTime, err = IntegerReply(val)
			case "active-time":
				consumer.ActiveTime, err = IntegerReply(val)
			default:
			}
			if err != nil {
				return nil, err
			}
		}
		out = append(out, consumer)
	}
	return out, nil
}

// StreamClaimResult is XCLAIM/XAUTOCLAIM's reply: the claimed entries,
// plus (for XAUTOCLAIM) the cursor to resume from and the IDs of
// entries that were claimed but have since been deleted from the
// stream.
type StreamClaimResult struct {
	Cursor     string
	Entries    []StreamEntry
	DeletedIDs []string
}

// StreamClaimed decodes both XCLAIM's reply (a bare entries array) and
// XAUTOCLAIM's reply ([cursor, entries-array] or, on servers new enough
// to report them, [cursor, entries-array, deleted-ids-array]).
func StreamClaimed(v resp.Value) (StreamClaimResult, error) {
	if v.Type != resp.TypeArray || v.IsNull {
		return StreamClaimResult{}, protocolErrorf("XCLAIM/XAUTOCLAIM: expected array reply")
	}
	// XCLAIM: a bare array of entries, each a 2-element [id, fields] pair.
	if len(v.Items) == 0 || (v.Items[0].Type == resp.TypeArray && len(v.Items[0].Items) == 2) {
		entries, err := Chunk(streamEntryOutput)(v)
		if err != nil {
			return StreamClaimResult{}, err
		}
		return StreamClaimResult{Entries: entries}, nil
	}
	if len(v.Items) < 2 {
		return StreamClaimResult{}, protocolErrorf("XAUTOCLAIM: expected at least [cursor, entries]")
	}
	cursor, err := MultiString(v.Items[0])
	if err != nil {
		return StreamClaimResult{}, err
	}
	entries, err := Chunk(streamEntryOutput)(v.Items[1])
	if err != nil {
		return StreamClaimResult{}, err
	}
	result := StreamClaimResult{Cursor: cursor, Entries: entries}
	if len(v.Items) >= 3 {
		result.DeletedIDs, err = Chunk(MultiString)(v.Items[2])
		if err != nil {
			return StreamClaimResult{}, err
		}
	}
	return result, nil
}

// flatStringMap decodes a flat RESP array of even length, alternating
// bulk-string keys and values, into a map.
func flatStringMap(v resp.Value) (map[string]string, error) {
	if v.Type != resp.TypeArray || v.IsNull {
		return nil, protocolErrorf("expected flat field array")
	}
	if len(v.Items)%2 != 0 {
		return nil, protocolErrorf("odd-length flat field array")
	}
	out := make(map[string]string, len(v.Items)/2)
	for i := 0; i < len(v.Items); i += 2 {
		k, err := MultiString(v.Items[i])
		if err != nil {
			return nil, err
		}
		val, err := MultiString(v.Items[i+1])
		if err != nil {
			return nil, err
		}
		out[k] = val
	}
	return out, nil
}
