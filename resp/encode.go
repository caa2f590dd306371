package resp

import (
	"strconv"

	"github.com/valyala/bytebufferpool"
)

// CRLF terminates every RESP line.
const CRLF = "\r\n"

// Append serializes v onto dst and returns the grown slice. Encoding is
// a pure function of v: the same Value always produces the same bytes,
// and decoding those bytes yields a Value equal to v (see the Equal
// method and the round-trip tests in value_test.go).
func Append(dst []byte, v Value) []byte {
	switch v.Type {
	case TypeSimpleString:
		dst = append(dst, '+')
		dst = append(dst, v.Str...)
		return append(dst, '\r', '\n')
	case TypeError:
		dst = append(dst, '-')
		dst = append(dst, v.Str...)
		return append(dst, '\r', '\n')
	case TypeInteger:
		dst = append(dst, ':')
		dst = strconv.AppendInt(dst, v.Int, 10)
		return append(dst, '\r', '\n')
	case TypeBulkString:
		if v.IsNull {
			return append(dst, '$', '-', '1', '\r', '\n')
		}
		dst = append(dst, '$')
		dst = strconv.AppendInt(dst, int64(len(v.Bulk)), 10)
		dst = append(dst, '\r', '\n')
		dst = append(dst, v.Bulk...)
		return append(dst, '\r', '\n')
	case TypeArray:
		if v.IsNull {
			return append(dst, '*', '-', '1', '\r', '\n')
		}
		dst = append(dst, '*')
		dst = strconv.AppendInt(dst, int64(len(v.Items)), 10)
		dst = append(dst, '\r', '\n')
		for _, item := range v.Items {
			dst = Append(dst, item)
		}
		return dst
	default:
		// A zero-value Value (Type == 0) should never reach the wire;
		// callers build values exclusively through the constructors above.
		panic("resp: Append called on a Value with no Type set")
	}
}

// Serialize returns the canonical byte encoding of v.
func Serialize(v Value) []byte {
	return Append(nil, v)
}

// EncodeCommand serializes a command as a RESP array of bulk strings:
// the verb tokens (a command name may be more than one wire token, e.g.
// "CLUSTER", "SLOTS") followed by args, in order. It pulls its scratch
// buffer from a shared pool so that encoding a batch of pipelined
// commands does not allocate one bytes.Buffer per command.
func EncodeCommand(verb []string, args [][]byte) []byte {
	buf := bufferPool.Get()
	defer bufferPool.Put(buf)
	buf.Reset()

	n := len(verb) + len(args)
	buf.B = append(buf.B, '*')
	buf.B = strconv.AppendInt(buf.B, int64(n), 10)
	buf.B = append(buf.B, '\r', '\n')
	for _, tok := range verb {
		buf.B = appendBulkBytes(buf.B, []byte(tok))
	}
	for _, a := range args {
		buf.B = appendBulkBytes(buf.B, a)
	}

	out := make([]byte, len(buf.B))
	copy(out, buf.B)
	return out
}

var bufferPool bytebufferpool.Pool

func appendBulkBytes(dst []byte, b []byte) []byte {
	dst = append(dst, '$')
	dst = strconv.AppendInt(dst, int64(len(b)), 10)
	dst = append(dst, '\r', '\n')
	dst = append(dst, b...)
	return append(dst, '\r', '\n')
}
