package command

import (
	"math"
	"strconv"
	"strings"

	"github.com/wegjgwioj/goredis/codec"
	"github.com/wegjgwioj/goredis/rediserr"
	"github.com/wegjgwioj/goredis/resp"
)

// Output decodes a successful (non-error) resp.Value into a typed
// reply, or returns a classified error when the value's shape does not
// match what the decoder expects. Command.Run handles resp.Value error
// replies itself (via rediserr.Classify) before ever calling Output, so
// an Output implementation never needs to special-case Type ==
// resp.TypeError.
type Output[T any] func(v resp.Value) (T, error)

// Unit decodes the "+OK" reply most write commands return.
func Unit(v resp.Value) (struct{}, error) {
	if v.Type == resp.TypeSimpleString && v.Str == "OK" {
		return struct{}{}, nil
	}
	return struct{}{}, rediserr.NewProtocolError("expected +OK, got %s", v.Type)
}

// Reset decodes the "+RESET" reply of the RESET command.
func Reset(v resp.Value) (struct{}, error) {
	if v.Type == resp.TypeSimpleString && v.Str == "RESET" {
		return struct{}{}, nil
	}
	return struct{}{}, rediserr.NewProtocolError("expected +RESET, got %s", v.Type)
}

// Bool decodes a RESP integer 0/1 into a Go bool.
func Bool(v resp.Value) (bool, error) {
	if v.Type != resp.TypeInteger {
		return false, rediserr.NewProtocolError("expected integer for bool, got %s", v.Type)
	}
	switch v.Int {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, rediserr.NewProtocolError("integer %d is not a valid bool", v.Int)
	}
}

// IntegerReply decodes a RESP integer into an int64. Named distinctly
// from the Input encoder Long, which runs the opposite direction.
func IntegerReply(v resp.Value) (int64, error) {
	if v.Type != resp.TypeInteger {
		return 0, rediserr.NewProtocolError("expected integer, got %s", v.Type)
	}
	return v.Int, nil
}

// DoubleReply decodes a RESP bulk string holding a finite decimal float.
func DoubleReply(v resp.Value) (float64, error) {
	s, err := bulkText(v)
	if err != nil {
		return 0, err
	}
	f, perr := strconv.ParseFloat(s, 64)
	if perr != nil {
		return 0, rediserr.NewProtocolError("non-numeric double %q", s)
	}
	return f, nil
}

// DoubleOrInfinity decodes a RESP bulk string as a float, additionally
// accepting the literal tokens "inf"/"+inf"/"-inf".
func DoubleOrInfinity(v resp.Value) (float64, error) {
	s, err := bulkText(v)
	if err != nil {
		return 0, err
	}
	switch strings.ToLower(s) {
	case "inf", "+inf":
		return posInf, nil
	case "-inf":
		return negInf, nil
	}
	f, perr := strconv.ParseFloat(s, 64)
	if perr != nil {
		return 0, rediserr.NewProtocolError("non-numeric double %q", s)
	}
	return f, nil
}

var (
	posInf = math.Inf(1)
	negInf = math.Inf(-1)
)

// BulkBytes decodes a RESP bulk string as raw bytes.
func BulkBytes(v resp.Value) ([]byte, error) {
	if v.Type != resp.TypeBulkString || v.IsNull {
		return nil, rediserr.NewProtocolError("expected bulk string, got %s", v.Type)
	}
	return v.Bulk, nil
}

// MultiString decodes a RESP bulk string as UTF-8 text.
func MultiString(v resp.Value) (string, error) {
	b, err := BulkBytes(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Arbitrary decodes a RESP bulk string through a caller-supplied codec,
// surfacing decode failures as rediserr.CodecError.
func Arbitrary[T any](c codec.Codec[T]) Output[T] {
	return func(v resp.Value) (T, error) {
		var zero T
		b, err := BulkBytes(v)
		if err != nil {
			return zero, err
		}
		out, derr := c.Decode(b)
		if derr != nil {
			return zero, &rediserr.CodecError{Detail: "decode failed", Cause: derr}
		}
		return out, nil
	}
}

// OptionalReply decodes a null bulk string or null array as a nil
// pointer, and otherwise delegates to inner, returning a non-nil
// pointer. Named distinctly from the Input encoder Optional, which runs
// the opposite direction.
func OptionalReply[T any](inner Output[T]) Output[*T] {
	return func(v resp.Value) (*T, error) {
		if (v.Type == resp.TypeBulkString || v.Type == resp.TypeArray) && v.IsNull {
			return nil, nil
		}
		out, err := inner(v)
		if err != nil {
			return nil, err
		}
		return &out, nil
	}
}

// Chunk decodes a RESP array by mapping inner over each element; a null
// array decodes to an empty (non-nil) slice, not a nil one.
func Chunk[T any](inner Output[T]) Output[[]T] {
	return func(v resp.Value) ([]T, error) {
		if v.Type != resp.TypeArray {
			return nil, rediserr.NewProtocolError("expected array, got %s", v.Type)
		}
		if v.IsNull {
			return []T{}, nil
		}
		out := make([]T, 0, len(v.Items))
		for _, item := range v.Items {
			decoded, err := inner(item)
			if err != nil {
				return nil, err
			}
			out = append(out, decoded)
		}
		return out, nil
	}
}

// Pair is a simple 2-tuple used by ChunkTuple2 and KeyValue.
type Pair[A, B any] struct {
	First  A
	Second B
}

// ChunkTuple2 decodes a flat RESP array of even length into adjacent
// pairs, e.g. the score/member runs ZRANGE WITHSCORES returns.
func ChunkTuple2[A, B any](first Output[A], second Output[B]) Output[[]Pair[A, B]] {
	return func(v resp.Value) ([]Pair[A, B], error) {
		if v.Type != resp.TypeArray {
			return nil, rediserr.NewProtocolError("expected array, got %s", v.Type)
		}
		if v.IsNull {
			return []Pair[A, B]{}, nil
		}
		if len(v.Items)%2 != 0 {
			return nil, rediserr.NewProtocolError("odd-length array for tuple2 decode")
		}
		out := make([]Pair[A, B], 0, len(v.Items)/2)
		for i := 0; i < len(v.Items); i += 2 {
			a, err := first(v.Items[i])
			if err != nil {
				return nil, err
			}
			b, err := second(v.Items[i+1])
			if err != nil {
				return nil, err
			}
			out = append(out, Pair[A, B]{First: a, Second: b})
		}
		return out, nil
	}
}

// KeyValue decodes a flat RESP array of even length into a map, e.g.
// HGETALL's field/value runs.
func KeyValue[K comparable, V any](key Output[K], value Output[V]) Output[map[K]V] {
	return func(v resp.Value) (map[K]V, error) {
		if v.Type != resp.TypeArray {
			return nil, rediserr.NewProtocolError("expected array, got %s", v.Type)
		}
		if v.IsNull {
			return map[K]V{}, nil
		}
		if len(v.Items)%2 != 0 {
			return nil, rediserr.NewProtocolError("odd-length array for key/value decode")
		}
		out := make(map[K]V, len(v.Items)/2)
		for i := 0; i < len(v.Items); i += 2 {
			k, err := key(v.Items[i])
			if err != nil {
				return nil, err
			}
			val, err := value(v.Items[i+1])
			if err != nil {
				return nil, err
			}
			out[k] = val
		}
		return out, nil
	}
}

// DurationUnit selects seconds or milliseconds for the Duration output
// decoder (TTL vs PTTL, EXPIRETIME vs PEXPIRETIME).
type DurationUnit int

const (
	DurationSecondsUnit DurationUnit = iota
	DurationMillisUnit
)

// DurationOutcome distinguishes a resolved TTL from the sentinel
// integer Redis uses for "no expiry". "Key not found" (-2) has no
// outcome value of its own: per the wire table it is surfaced as a
// ProtocolError rather than modeled as success, so a caller cannot
// mistake "not found" for a resolved duration without checking err.
type DurationOutcome int

const (
	DurationResolved DurationOutcome = iota
	DurationNoExpire
)

// DurationReply is the result of the Duration output decoder.
type DurationReply struct {
	Outcome  DurationOutcome
	Duration int64 // valid only when Outcome == DurationResolved; in the requested unit
}

// Duration decodes TTL/PTTL/EXPIRETIME-style integer replies: -1 means
// no expiry, -2 means the key does not exist (reported as a
// ProtocolError rather than a typed outcome, per the wire table),
// anything else is the remaining duration in the given unit.
func Duration(unit DurationUnit) Output[DurationReply] {
	return func(v resp.Value) (DurationReply, error) {
		n, err := IntegerReply(v)
		if err != nil {
			return DurationReply{}, err
		}
		switch {
		case n == -1:
			return DurationReply{Outcome: DurationNoExpire}, nil
		case n == -2:
			return DurationReply{}, protocolErrorf("key does not exist")
		default:
			_ = unit // unit only changes the caller's interpretation of n, not its decoding
			return DurationReply{Outcome: DurationResolved, Duration: n}, nil
		}
	}
}

// ScanReply is the (cursor, items) pair SCAN/HSCAN/SSCAN/ZSCAN return.
type ScanReply[T any] struct {
	Cursor string
	Items  []T
}

// Scan decodes the 2-element [cursor-bulk, items-array] shape every
// *SCAN command shares.
func Scan[T any](item Output[T]) Output[ScanReply[T]] {
	return func(v resp.Value) (ScanReply[T], error) {
		if v.Type != resp.TypeArray || v.IsNull || len(v.Items) != 2 {
			return ScanReply[T]{}, rediserr.NewProtocolError("expected 2-element scan array")
		}
		cursor, err := MultiString(v.Items[0])
		if err != nil {
			return ScanReply[T]{}, err
		}
		items, err := Chunk(item)(v.Items[1])
		if err != nil {
			return ScanReply[T]{}, err
		}
		return ScanReply[T]{Cursor: cursor, Items: items}, nil
	}
}

// Set decodes the SET command's reply under its conditional-set forms
// (NX/XX): a null bulk string means the condition was not met (false),
// any other reply (a simple string "+OK" in practice) means it
// succeeded (true).
func Set(v resp.Value) (bool, error) {
	if v.Type == resp.TypeBulkString && v.IsNull {
		return false, nil
	}
	return true, nil
}

// KeyType enumerates the TYPE command's simple-string replies.
type KeyType string

const (
	TypeNone   KeyType = "none"
	TypeString KeyType = "string"
	TypeList   KeyType = "list"
	TypeSet    KeyType = "set"
	TypeZSet   KeyType = "zset"
	TypeHash   KeyType = "hash"
	TypeStream KeyType = "stream"
)

// Type decodes the TYPE command's simple-string reply.
func Type(v resp.Value) (KeyType, error) {
	if v.Type != resp.TypeSimpleString {
		return "", rediserr.NewProtocolError("expected simple string for TYPE, got %s", v.Type)
	}
	switch KeyType(v.Str) {
	case TypeNone, TypeString, TypeList, TypeSet, TypeZSet, TypeHash, TypeStream:
		return KeyType(v.Str), nil
	default:
		return "", rediserr.NewProtocolError("unknown key type %q", v.Str)
	}
}

// bulkText extracts a non-null bulk string's bytes as a string;
// shared by the decoders that parse numeric text out of a bulk string.
func bulkText(v resp.Value) (string, error) {
	b, err := BulkBytes(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// protocolErrorf is a small formatting convenience shared by the
// decoders in this package.
func protocolErrorf(format string, args ...interface{}) error {
	return rediserr.NewProtocolError(format, args...)
}
