package command

import (
	"strconv"

	"github.com/wegjgwioj/goredis/resp"
)

// PendingConsumerCount is one [consumer, count] entry inside an XPENDING
// summary reply.
type PendingConsumerCount struct {
	Consumer string
	Count    int64
}

// PendingSummary is XPENDING's summary-form reply (no start/end/count
// given): overall count, the lowest and highest pending IDs, and a
// per-consumer breakdown.
type PendingSummary struct {
	Count     int64
	MinID     string
	MaxID     string
	Consumers []PendingConsumerCount
}

// XPending decodes XPENDING's summary reply: [count, minID, maxID,
// [[consumer, count], ...]]. The per-consumer array is a null array
// when the stream has no consumer groups' pending entries yet.
func XPending(v resp.Value) (PendingSummary, error) {
	if v.Type != resp.TypeArray || len(v.Items) != 4 {
		return PendingSummary{}, protocolErrorf("XPENDING: expected 4-element summary array")
	}
	count, err := IntegerReply(v.Items[0])
	if err != nil {
		return PendingSummary{}, err
	}
	summary := PendingSummary{Count: count}
	if !(v.Items[1].Type == resp.TypeBulkString && v.Items[1].IsNull) {
		summary.MinID, err = MultiString(v.Items[1])
		if err != nil {
			return PendingSummary{}, err
		}
	}
	if !(v.Items[2].Type == resp.TypeBulkString && v.Items[2].IsNull) {
		summary.MaxID, err = MultiString(v.Items[2])
		if err != nil {
			return PendingSummary{}, err
		}
	}
	consumersVal := v.Items[3]
	if consumersVal.Type != resp.TypeArray {
		return PendingSummary{}, protocolErrorf("XPENDING: expected consumers array")
	}
	if consumersVal.IsNull {
		return summary, nil
	}
	summary.Consumers = make([]PendingConsumerCount, 0, len(consumersVal.Items))
	for _, entry := range consumersVal.Items {
		if entry.Type != resp.TypeArray || len(entry.Items) != 2 {
			return PendingSummary{}, protocolErrorf("XPENDING: malformed consumer entry")
		}
		name, err := MultiString(entry.Items[0])
		if err != nil {
			return PendingSummary{}, err
		}
		countStr, err := MultiString(entry.Items[1])
		if err != nil {
			return PendingSummary{}, err
		}
		n, perr := strconv.ParseInt(countStr, 10, 64)
		if perr != nil {
			return PendingSummary{}, protocolErrorf("XPENDING: non-numeric consumer count %q", countStr)
		}
		summary.Consumers = append(summary.Consumers, PendingConsumerCount{Consumer: name, Count: n})
	}
	return summary, nil
}

// PendingMessage is one entry of XPENDING's extended (start/end/count)
// reply form: a specific message's id, owning consumer, idle time in
// milliseconds, and delivery count.
type PendingMessage struct {
	ID            string
	Consumer      string
	Idle          int64
	DeliveryCount int64
}

// PendingMessages decodes XPENDING's extended reply: an array of
// [id, consumer, idle, deliveryCount] entries.
func PendingMessages(v resp.Value) ([]PendingMessage, error) {
	if v.Type != resp.TypeArray {
		return nil, protocolErrorf("XPENDING: expected array, got %s", v.Type)
	}
	if v.IsNull {
		return []PendingMessage{}, nil
	}
	out := make([]PendingMessage, 0, len(v.Items))
	for _, entry := range v.Items {
		if entry.Type != resp.TypeArray || len(entry.Items) != 4 {
			return nil, protocolErrorf("XPENDING: malformed pending-message entry")
		}
		id, err := MultiString(entry.Items[0])
		if err != nil {
			return nil, err
		}
		consumer, err := MultiString(entry.Items[1])
		if err != nil {
			return nil, err
		}
		idle, err := IntegerReply(entry.Items[2])
		if err != nil {
			return nil, err
		}
		delivered, err := IntegerReply(entry.Items[3])
		if err != nil {
			return nil, err
		}
		out = append(out, PendingMessage{ID: id, Consumer: consumer, Idle: idle, DeliveryCount: delivered})
	}
	return out, nil
}
