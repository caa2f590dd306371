// Package codec defines the pluggable capability a caller supplies to
// store and retrieve typed values through string/bulk-string commands
// (SET/GET, stream field values, Lua script arguments, ...) without the
// command package needing to know about JSON, protobuf, or any other
// wire format.
package codec

// Codec converts a value of type T to and from the bytes carried inside
// a single RESP bulk string. Decode errors surface to the caller as
// rediserr.CodecError.
type Codec[T any] interface {
	Encode(v T) ([]byte, error)
	Decode(b []byte) (T, error)
}

// Bytes is the identity codec: it copies the raw bytes through
// unchanged. Useful as the default when a command's payload is already
// []byte and no further (de)serialization is needed.
type Bytes struct{}

func (Bytes) Encode(v []byte) ([]byte, error) { return v, nil }
func (Bytes) Decode(b []byte) ([]byte, error) { return b, nil }

// String is the identity codec for string payloads.
type String struct{}

func (String) Encode(v string) ([]byte, error) { return []byte(v), nil }
func (String) Decode(b []byte) (string, error) { return string(b), nil }
