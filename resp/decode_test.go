package resp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wegjgwioj/goredis/rediserr"
)

func TestStreamingArbitrarySplit(t *testing.T) {
	v := Array([]Value{BulkStringFrom("SET"), BulkStringFrom("foo"), BulkStringFrom("bar")})
	wire := Serialize(v)

	for chunkSize := 1; chunkSize <= len(wire); chunkSize++ {
		dec := NewDecoder()
		var got []Value
		for i := 0; i < len(wire); i += chunkSize {
			end := i + chunkSize
			if end > len(wire) {
				end = len(wire)
			}
			out, err := dec.Feed(wire[i:end])
			require.NoError(t, err, "chunkSize=%d", chunkSize)
			got = append(got, out...)
		}
		if assert.Len(t, got, 1, "chunkSize=%d", chunkSize) {
			assert.True(t, v.Equal(got[0]), "chunkSize=%d", chunkSize)
		}
	}
}

func TestPipelineOrderSingleSegment(t *testing.T) {
	// Scenario C: three INCR replies arriving concatenated in one segment.
	wire := []byte(":1\r\n:2\r\n:3\r\n")
	dec := NewDecoder()
	out, err := dec.Feed(wire)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, int64(1), out[0].Int)
	assert.Equal(t, int64(2), out[1].Int)
	assert.Equal(t, int64(3), out[2].Int)
}

func TestMalformedBareLineFeedIsProtocolError(t *testing.T) {
	dec := NewDecoder()
	_, err := dec.Feed([]byte("+OK\n")) // missing \r before \n
	require.Error(t, err)
	var protoErr *rediserr.ProtocolError
	assert.ErrorAs(t, err, &protoErr)
}

func TestNegativeBulkLengthIsProtocolError(t *testing.T) {
	dec := NewDecoder()
	_, err := dec.Feed([]byte("$-2\r\n"))
	require.Error(t, err)
	var protoErr *rediserr.ProtocolError
	assert.ErrorAs(t, err, &protoErr)
}

func TestBulkStringMissingTrailingCRLF(t *testing.T) {
	dec := NewDecoder()
	_, err := dec.Feed([]byte("$3\r\nbarXX"))
	require.Error(t, err)
}

func TestUnknownTypeMarkerIsProtocolError(t *testing.T) {
	dec := NewDecoder()
	_, err := dec.Feed([]byte("!notreal\r\n"))
	require.Error(t, err)
}

func TestFeedNeverPanicsOnTruncatedInput(t *testing.T) {
	v := Array([]Value{BulkStringFrom("XINFO"), BulkStringFrom("STREAM"), BulkStringFrom("mystream")})
	wire := Serialize(v)

	for cut := 0; cut < len(wire); cut++ {
		dec := NewDecoder()
		assert.NotPanics(t, func() {
			_, _ = dec.Feed(wire[:cut])
		}, "cut=%d", cut)
	}
}
