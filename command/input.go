// Package command binds a command verb to an Input encoder and an
// Output decoder (resp.Value -> typed reply) and runs it against an
// Executor. It also hosts the typed Input encoder and Output decoder
// inventories described by the protocol (§4.1-§4.2).
package command

import (
	"sort"
	"strconv"
	"time"
)

// Input encodes a value of type T into zero or more RESP bulk-string
// argument tokens, appended after the command's own verb tokens.
type Input[T any] func(v T) [][]byte

// String encodes a string as a single bulk-string token.
func String(v string) [][]byte { return [][]byte{[]byte(v)} }

// Bytes encodes a raw byte chunk as a single bulk-string token.
func Bytes(v []byte) [][]byte { return [][]byte{v} }

// Pattern encodes a glob/regex pattern as a single bulk-string token;
// it is a distinct name from String purely for call-site readability
// (e.g. KEYS/PSUBSCRIBE patterns), the wire encoding is identical.
func Pattern(v string) [][]byte { return String(v) }

// Long encodes an int64 as its decimal bulk-string representation.
func Long(v int64) [][]byte { return [][]byte{[]byte(strconv.FormatInt(v, 10))} }

// Double encodes a float64 as its shortest round-trippable decimal
// bulk-string representation.
func Double(v float64) [][]byte {
	return [][]byte{[]byte(strconv.FormatFloat(v, 'g', -1, 64))}
}

// InstantSeconds encodes a time.Time as Unix seconds.
func InstantSeconds(v time.Time) [][]byte { return Long(v.Unix()) }

// InstantMillis encodes a time.Time as Unix milliseconds.
func InstantMillis(v time.Time) [][]byte { return Long(v.UnixMilli()) }

// DurationSeconds encodes a time.Duration as whole seconds.
func DurationSeconds(v time.Duration) [][]byte { return Long(int64(v / time.Second)) }

// DurationMillis encodes a time.Duration as whole milliseconds.
func DurationMillis(v time.Duration) [][]byte { return Long(int64(v / time.Millisecond)) }

// Flag returns an Input[bool] that emits a single fixed token (e.g.
// "WITHSCORES", "CH", "XX") when present is true, and nothing when
// false.
func Flag(token string) Input[bool] {
	return func(present bool) [][]byte {
		if !present {
			return nil
		}
		return [][]byte{[]byte(token)}
	}
}

// Literal encoders for the fixed tokens enumerated in §4.1. Each is an
// Input[bool]; a command definition wires the ones it needs.
var (
	WithScores = Flag("WITHSCORES")
	CH         = Flag("CH")
	XX         = Flag("XX")
	NX         = Flag("NX")
	Incr       = Flag("INCR")
	Copy       = Flag("COPY")
	Replace    = Flag("REPLACE")
	AbsTTL     = Flag("ABSTTL")
	WithCoord  = Flag("WITHCOORD")
	WithDist   = Flag("WITHDIST")
	WithHash   = Flag("WITHHASH")
	MkStream   = Flag("MKSTREAM")
	Force      = Flag("FORCE")
	JustID     = Flag("JUSTID")
	NoAck      = Flag("NOACK")
	Asc        = Flag("ASC")
	Desc       = Flag("DESC")
	Alpha      = Flag("ALPHA")
)

// IdleTime encodes the RESTORE IDLETIME option (token + value).
func IdleTime(seconds int64) [][]byte {
	return append([][]byte{[]byte("IDLETIME")}, Long(seconds)...)
}

// Freq encodes the RESTORE FREQ option (token + value).
func Freq(freq int64) [][]byte {
	return append([][]byte{[]byte("FREQ")}, Long(freq)...)
}

// Count encodes the COUNT option (token + value).
func Count(n int64) [][]byte {
	return append([][]byte{[]byte("COUNT")}, Long(n)...)
}

// Match encodes the MATCH option (token + pattern).
func Match(pattern string) [][]byte {
	return append([][]byte{[]byte("MATCH")}, Pattern(pattern)...)
}

// By encodes the BY option (token + pattern), used by SORT.
func By(pattern string) [][]byte {
	return append([][]byte{[]byte("BY")}, Pattern(pattern)...)
}

// Get encodes the GET option (token + pattern), used by SORT.
func Get(pattern string) [][]byte {
	return append([][]byte{[]byte("GET")}, Pattern(pattern)...)
}

// Aggregate encodes the ZINTERSTORE/ZUNIONSTORE AGGREGATE option.
type Aggregate string

const (
	AggregateSum Aggregate = "SUM"
	AggregateMin Aggregate = "MIN"
	AggregateMax Aggregate = "MAX"
)

// Encode emits the AGGREGATE token followed by the SUM/MIN/MAX keyword.
func (a Aggregate) Encode() [][]byte {
	return [][]byte{[]byte("AGGREGATE"), []byte(a)}
}

// Weights encodes the ZINTERSTORE/ZUNIONSTORE WEIGHTS option.
func Weights(weights []float64) [][]byte {
	if len(weights) == 0 {
		return nil
	}
	out := make([][]byte, 0, len(weights)+1)
	out = append(out, []byte("WEIGHTS"))
	for _, w := range weights {
		out = append(out, Double(w)...)
	}
	return out
}

// Limit encodes the LIMIT offset count option.
func Limit(offset, count int64) [][]byte {
	out := [][]byte{[]byte("LIMIT")}
	out = append(out, Long(offset)...)
	out = append(out, Long(count)...)
	return out
}

// Store encodes the STORE key option (GEORADIUS, SORT).
func Store(key string) [][]byte {
	return append([][]byte{[]byte("STORE")}, String(key)...)
}

// StoreDist encodes the STOREDIST key option (GEORADIUS).
func StoreDist(key string) [][]byte {
	return append([][]byte{[]byte("STOREDIST")}, String(key)...)
}

// RangeBound encodes a ZRANGEBYSCORE-style numeric range endpoint:
// "-inf", "+inf", "(x" (exclusive), or "x" (inclusive).
type RangeBound struct {
	NegInf, PosInf bool
	Exclusive      bool
	Value          float64
}

func (b RangeBound) Encode() []byte {
	switch {
	case b.NegInf:
		return []byte("-inf")
	case b.PosInf:
		return []byte("+inf")
	case b.Exclusive:
		return append([]byte("("), []byte(strconv.FormatFloat(b.Value, 'g', -1, 64))...)
	default:
		return []byte(strconv.FormatFloat(b.Value, 'g', -1, 64))
	}
}

// LexBound encodes a ZRANGEBYLEX-style lexicographic range endpoint:
// "-", "+", "[x" (inclusive), or "(x" (exclusive).
type LexBound struct {
	Min, Max  bool
	Exclusive bool
	Value     string
}

func (b LexBound) Encode() []byte {
	switch {
	case b.Min:
		return []byte("-")
	case b.Max:
		return []byte("+")
	case b.Exclusive:
		return append([]byte("("), b.Value...)
	default:
		return append([]byte("["), b.Value...)
	}
}

// Optional wraps an Input so that a nil *T emits nothing and a non-nil
// *T emits inner's encoding of the pointed-to value.
func Optional[T any](inner Input[T]) Input[*T] {
	return func(v *T) [][]byte {
		if v == nil {
			return nil
		}
		return inner(*v)
	}
}

// NonEmptyList wraps an Input so that every element of a non-empty
// slice is encoded and concatenated; callers are responsible for the
// "at least one" invariant (the command descriptor does not enforce
// it, matching a library whose job is encoding, not validation).
func NonEmptyList[T any](inner Input[T]) Input[[]T] {
	return Varargs(inner)
}

// Varargs wraps an Input so that every element of a slice (0 or more)
// is encoded and concatenated in order.
func Varargs[T any](inner Input[T]) Input[[]T] {
	return func(vs []T) [][]byte {
		out := make([][]byte, 0, len(vs))
		for _, v := range vs {
			out = append(out, inner(v)...)
		}
		return out
	}
}

// ScoreMember encodes a (score, member) pair in the order ZADD expects:
// score first, then member.
type ScoreMember struct {
	Score  float64
	Member string
}

func (sm ScoreMember) Encode() [][]byte {
	return append(Double(sm.Score), String(sm.Member)...)
}

// ScoreMembers encodes a slice of ScoreMember pairs, concatenated in
// order (ZADD's variadic score/member list).
func ScoreMembers(pairs []ScoreMember) [][]byte {
	out := make([][]byte, 0, len(pairs)*2)
	for _, p := range pairs {
		out = append(out, p.Encode()...)
	}
	return out
}

// LongLat encodes a (longitude, latitude) pair in the order GEOADD
// expects.
type LongLat struct {
	Longitude, Latitude float64
}

func (ll LongLat) Encode() [][]byte {
	return append(Double(ll.Longitude), Double(ll.Latitude)...)
}

// StreamEntryInput encodes a stream entry's (id, field, value...) tuple
// in the order XADD expects, after the id.
type StreamEntryInput struct {
	ID     string // "*" for auto-generated ID
	Fields map[string]string
}

func (e StreamEntryInput) Encode() [][]byte {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := [][]byte{[]byte(e.ID)}
	for _, k := range keys {
		out = append(out, []byte(k), []byte(e.Fields[k]))
	}
	return out
}
