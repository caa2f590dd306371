// Package resp implements a byte-exact codec for the Redis Serialization
// Protocol (RESP): a tagged-union wire value, a pure serializer, and a
// resumable streaming decoder.
//
// The typed Input encoders and Output decoders that describe a
// command's argument and reply shape live in the sibling command
// package, which is built on top of Value.
package resp

import "fmt"

// Type identifies which of the five RESP wire types a Value holds.
type Type byte

// Wire type markers. These match the leading byte of every RESP line.
const (
	TypeSimpleString Type = '+'
	TypeError        Type = '-'
	TypeInteger      Type = ':'
	TypeBulkString   Type = '$'
	TypeArray        Type = '*'
)

func (t Type) String() string {
	switch t {
	case TypeSimpleString:
		return "SimpleString"
	case TypeError:
		return "Error"
	case TypeInteger:
		return "Integer"
	case TypeBulkString:
		return "BulkString"
	case TypeArray:
		return "Array"
	default:
		return fmt.Sprintf("Type(%#x)", byte(t))
	}
}

// Value is a parsed or to-be-serialized RESP wire value. Exactly one of
// its payload fields is meaningful, selected by Type; which one is
// documented per constructor below.
//
// Null forms are distinct variants, never confused with an empty
// payload: IsNull discriminates "$-1\r\n"/"*-1\r\n" from an empty bulk
// string or empty array. Bulk and Items are nil precisely when IsNull
// is true (or, for a never-initialized zero Value, Type == 0).
type Value struct {
	Type  Type
	Str   string  // SimpleString / Error text
	Int   int64   // Integer
	Bulk  []byte  // BulkString payload (never nil unless IsNull)
	Items []Value // Array elements (never nil unless IsNull)

	IsNull bool
}

// SimpleString builds a RESP simple string value. text must not contain
// '\r' or '\n'; the encoder does not validate this, matching the
// protocol's "inline text" contract.
func SimpleString(text string) Value {
	return Value{Type: TypeSimpleString, Str: text}
}

// Err builds a RESP error value. By convention text begins with an
// upper-case classifier token (MOVED, ASK, WRONGTYPE, ERR, ...).
func Err(text string) Value {
	return Value{Type: TypeError, Str: text}
}

// Integer builds a RESP integer value.
func Integer(n int64) Value {
	return Value{Type: TypeInteger, Int: n}
}

// BulkString builds a RESP bulk string value carrying b. A nil or empty
// b both produce a present-but-empty bulk string ("$0\r\n\r\n"), which
// is distinct from NullBulkString.
func BulkString(b []byte) Value {
	if b == nil {
		b = []byte{}
	}
	return Value{Type: TypeBulkString, Bulk: b}
}

// BulkStringFrom is a convenience wrapper for string payloads.
func BulkStringFrom(s string) Value {
	return BulkString([]byte(s))
}

// NullBulkString builds the RESP nil bulk string value ("$-1\r\n").
func NullBulkString() Value {
	return Value{Type: TypeBulkString, IsNull: true}
}

// Array builds a RESP array value carrying items. A nil items produces
// a present-but-empty array ("*0\r\n"), distinct from NullArray.
func Array(items []Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{Type: TypeArray, Items: items}
}

// NullArray builds the RESP nil array value ("*-1\r\n").
func NullArray() Value {
	return Value{Type: TypeArray, IsNull: true}
}

// IsError reports whether v is a RESP error value.
func (v Value) IsError() bool { return v.Type == TypeError }

// Equal reports whether v and other encode to the same byte sequence,
// i.e. whether they represent the same RESP value. Used by the
// round-trip tests.
func (v Value) Equal(other Value) bool {
	if v.Type != other.Type || v.IsNull != other.IsNull {
		return false
	}
	switch v.Type {
	case TypeSimpleString, TypeError:
		return v.Str == other.Str
	case TypeInteger:
		return v.Int == other.Int
	case TypeBulkString:
		if v.IsNull {
			return true
		}
		return string(v.Bulk) == string(other.Bulk)
	case TypeArray:
		if v.IsNull {
			return true
		}
		if len(v.Items) != len(other.Items) {
			return false
		}
		for i := range v.Items {
			if !v.Items[i].Equal(other.Items[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
