package resp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		v    Value
	}{
		{"simple string", SimpleString("OK")},
		{"error", Err("WRONGTYPE Operation against a key holding the wrong kind of value")},
		{"integer", Integer(42)},
		{"negative integer", Integer(-7)},
		{"bulk string", BulkStringFrom("bar")},
		{"empty bulk string", BulkString(nil)},
		{"null bulk string", NullBulkString()},
		{"array", Array([]Value{Integer(1), Integer(2), Integer(3)})},
		{"empty array", Array(nil)},
		{"null array", NullArray()},
		{"nested array", Array([]Value{BulkStringFrom("a"), NullBulkString(), Array([]Value{Integer(1)})})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wire := Serialize(tt.v)
			dec := NewDecoder()
			out, err := dec.Feed(wire)
			assert := assert.New(t)
			assert.NoError(err)
			if assert.Len(out, 1) {
				assert.True(tt.v.Equal(out[0]), "round-trip mismatch: %+v != %+v", tt.v, out[0])
			}
		})
	}
}

func TestNullVariantsDistinctFromEmpty(t *testing.T) {
	assert.False(t, NullBulkString().Equal(BulkString(nil)))
	assert.False(t, NullArray().Equal(Array(nil)))
}
