package resp

import (
	"strconv"

	"github.com/wegjgwioj/goredis/rediserr"
)

// Decoder is a resumable, restartable streaming parser for RESP wire
// values. Feed arbitrary byte chunks to it as they arrive off the wire
// (a short read, a partial frame split across TCP segments, whatever);
// it buffers incomplete state internally and emits zero or more whole
// Values per call.
//
// A Decoder is not safe for concurrent use; a single goroutine (the
// executor's reader task) owns it.
type Decoder struct {
	buf []byte
}

// NewDecoder returns an empty Decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Feed appends chunk to the internal buffer and parses as many complete
// Values as are available. It returns the Values parsed (possibly
// none, if chunk did not complete a frame) and a *rediserr.ProtocolError
// if the buffered bytes are malformed. Once an error is returned the
// Decoder must be discarded; its internal state is no longer
// trustworthy.
func (d *Decoder) Feed(chunk []byte) ([]Value, error) {
	if len(chunk) > 0 {
		d.buf = append(d.buf, chunk...)
	}

	var out []Value
	for {
		n, v, err := parseValue(d.buf)
		if err != nil {
			return out, err
		}
		if n == 0 {
			return out, nil // incomplete; wait for more bytes
		}
		out = append(out, v)
		d.buf = d.buf[n:]
	}
}

// Buffered reports how many unconsumed bytes the Decoder is holding.
func (d *Decoder) Buffered() int { return len(d.buf) }

// parseValue attempts to parse one RESP value from the head of b. It
// returns n == 0 (and no error) when b does not yet contain a complete
// value; n > 0 and the parsed Value on success; or a *rediserr.ProtocolError
// when b contains malformed framing that no amount of additional data
// could repair.
func parseValue(b []byte) (n int, v Value, err error) {
	if len(b) == 0 {
		return 0, Value{}, nil
	}

	line, lineLen, status := readLine(b)
	switch status {
	case lineIncomplete:
		return 0, Value{}, nil
	case lineMalformed:
		return 0, Value{}, rediserr.NewProtocolError("line feed without preceding carriage return")
	}

	switch Type(b[0]) {
	case TypeSimpleString:
		return lineLen, SimpleString(string(line)), nil
	case TypeError:
		return lineLen, Err(string(line)), nil
	case TypeInteger:
		iv, pErr := strconv.ParseInt(string(line), 10, 64)
		if pErr != nil {
			return 0, Value{}, rediserr.NewProtocolError("malformed integer %q", line)
		}
		return lineLen, Integer(iv), nil
	case TypeBulkString:
		return parseBulkString(b, line, lineLen)
	case TypeArray:
		return parseArray(b, line, lineLen)
	default:
		return 0, Value{}, rediserr.NewProtocolError("unknown type marker %q", b[0])
	}
}

type lineStatus int

const (
	lineComplete lineStatus = iota
	lineIncomplete
	lineMalformed
)

// readLine finds the first line-feed in b (excluding the leading type
// marker byte at b[0]). It returns the line body (without marker or
// CRLF), the number of bytes it occupies including the marker and
// CRLF, and a status: lineComplete when a CRLF-terminated line was
// found, lineIncomplete when no '\n' has arrived yet, or lineMalformed
// when a '\n' arrived without a preceding '\r' (never valid RESP
// framing, and no amount of additional data repairs it).
func readLine(b []byte) (line []byte, n int, status lineStatus) {
	for i := 1; i < len(b); i++ {
		if b[i] == '\n' {
			if b[i-1] != '\r' {
				return nil, 0, lineMalformed
			}
			return b[1 : i-1], i + 1, lineComplete
		}
	}
	return nil, 0, lineIncomplete
}

func parseBulkString(b []byte, line []byte, headerLen int) (int, Value, error) {
	length, err := strconv.Atoi(string(line))
	if err != nil {
		return 0, Value{}, rediserr.NewProtocolError("malformed bulk string length %q", line)
	}
	if length == -1 {
		return headerLen, NullBulkString(), nil
	}
	if length < -1 {
		return 0, Value{}, rediserr.NewProtocolError("negative bulk string length %d", length)
	}

	total := headerLen + length + 2
	if len(b) < total {
		return 0, Value{}, nil // incomplete
	}
	if b[headerLen+length] != '\r' || b[headerLen+length+1] != '\n' {
		return 0, Value{}, rediserr.NewProtocolError("bulk string missing trailing CRLF")
	}
	payload := make([]byte, length)
	copy(payload, b[headerLen:headerLen+length])
	return total, BulkString(payload), nil
}

func parseArray(b []byte, line []byte, headerLen int) (int, Value, error) {
	count, err := strconv.Atoi(string(line))
	if err != nil {
		return 0, Value{}, rediserr.NewProtocolError("malformed array length %q", line)
	}
	if count == -1 {
		return headerLen, NullArray(), nil
	}
	if count < -1 {
		return 0, Value{}, rediserr.NewProtocolError("negative array length %d", count)
	}

	items := make([]Value, 0, count)
	offset := headerLen
	for i := 0; i < count; i++ {
		n, item, err := parseValue(b[offset:])
		if err != nil {
			return 0, Value{}, err
		}
		if n == 0 {
			return 0, Value{}, nil // incomplete; caller retries once more bytes arrive
		}
		items = append(items, item)
		offset += n
	}
	return offset, Array(items), nil
}
