package command

import "github.com/wegjgwioj/goredis/resp"

// NumSub is one PUBSUB NUMSUB reply entry: a channel and its current
// subscriber count.
type NumSub struct {
	Channel string
	Count   int64
}

// NumSubResponse decodes PUBSUB NUMSUB's reply: a flat array
// alternating channel-name bulk strings and subscriber-count integers,
// preserving the server's order (unlike KeyValue, which would collapse
// it into an unordered map).
func NumSubResponse(v resp.Value) ([]NumSub, error) {
	if v.Type != resp.TypeArray || len(v.Items)%2 != 0 {
		return nil, protocolErrorf("PUBSUB NUMSUB: expected flat channel/count array")
	}
	out := make([]NumSub, 0, len(v.Items)/2)
	for i := 0; i < len(v.Items); i += 2 {
		channel, err := MultiString(v.Items[i])
		if err != nil {
			return nil, err
		}
		count, err := IntegerReply(v.Items[i+1])
		if err != nil {
			return nil, err
		}
		out = append(out, NumSub{Channel: channel, Count: count})
	}
	return out, nil
}

// SubscriptionKind distinguishes a channel subscription from a pattern
// subscription inside a PushMessage's Key.
type SubscriptionKind int

const (
	SubscriptionChannel SubscriptionKind = iota
	SubscriptionPattern
)

// SubscriptionKey names the channel or pattern a subscribe/unsubscribe
// push notification concerns.
type SubscriptionKey struct {
	Kind  SubscriptionKind
	Value string
}

// Channel builds a channel-kind SubscriptionKey.
func Channel(name string) SubscriptionKey { return SubscriptionKey{Kind: SubscriptionChannel, Value: name} }

// PatternKey builds a pattern-kind SubscriptionKey.
func PatternKey(pattern string) SubscriptionKey {
	return SubscriptionKey{Kind: SubscriptionPattern, Value: pattern}
}

// PushMessageType enumerates the six message kinds a subscriber
// connection's push stream can carry.
type PushMessageType int

const (
	PushSubscribe PushMessageType = iota
	PushPsubscribe
	PushUnsubscribe
	PushPunsubscribe
	PushMessageKind
	PushPMessage
)

// PushMessage is a single decoded reply off a subscriber connection's
// push stream. Key carries the subscribed channel or pattern for the
// subscribe/unsubscribe kinds; for PushMessageKind, Key is the
// publishing channel; for PushPMessage, Key is the matched pattern and
// Channel is the channel the message actually published on. Count is
// meaningful only for the four subscribe/unsubscribe kinds; Payload
// only for PushMessageKind/PushPMessage.
type PushMessage struct {
	Type    PushMessageType
	Key     SubscriptionKey
	Channel string
	Count   int64
	Payload []byte
}

// Push decodes one push-stream reply, discriminating on its first
// element: "subscribe"/"psubscribe"/"unsubscribe"/"punsubscribe" carry
// (key, count); "message" carries (channel, payload); "pmessage"
// carries (pattern, channel, payload).
func Push(v resp.Value) (PushMessage, error) {
	if v.Type != resp.TypeArray || v.IsNull || len(v.Items) < 3 {
		return PushMessage{}, protocolErrorf("push message: expected array of at least 3 elements")
	}
	kind, err := MultiString(v.Items[0])
	if err != nil {
		return PushMessage{}, err
	}
	switch kind {
	case "subscribe", "psubscribe", "unsubscribe", "punsubscribe":
		name, err := MultiString(v.Items[1])
		if err != nil {
			return PushMessage{}, err
		}
		count, err := IntegerReply(v.Items[2])
		if err != nil {
			return PushMessage{}, err
		}
		msg := PushMessage{Count: count}
		switch kind {
		case "subscribe":
			msg.Type = PushSubscribe
			msg.Key = Channel(name)
		case "psubscribe":
			msg.Type = PushPsubscribe
			msg.Key = PatternKey(name)
		case "unsubscribe":
			msg.Type = PushUnsubscribe
			msg.Key = Channel(name)
		case "punsubscribe":
			msg.Type = PushPunsubscribe
			msg.Key = PatternKey(name)
		}
		return msg, nil
	case "message":
		channel, err := MultiString(v.Items[1])
		if err != nil {
			return PushMessage{}, err
		}
		payload, err := BulkBytes(v.Items[2])
		if err != nil {
			return PushMessage{}, err
		}
		return PushMessage{Type: PushMessageKind, Key: Channel(channel), Payload: payload}, nil
	case "pmessage":
		if len(v.Items) != 4 {
			return PushMessage{}, protocolErrorf("pmessage: expected 4 elements")
		}
		pattern, err := MultiString(v.Items[1])
		if err != nil {
			return PushMessage{}, err
		}
		channel, err := MultiString(v.Items[2])
		if err != nil {
			return PushMessage{}, err
		}
		payload, err := BulkBytes(v.Items[3])
		if err != nil {
			return PushMessage{}, err
		}
		return PushMessage{Type: PushPMessage, Key: PatternKey(pattern), Channel: channel, Payload: payload}, nil
	default:
		return PushMessage{}, protocolErrorf("unrecognized push message kind %q", kind)
	}
}
