// Package conn owns a single TCP connection to a Redis-compatible node:
// dialing with keepalive/nodelay set, unbuffered writes that retry
// partial writes until drained, and a lazy read method suited to a
// streaming decoder.
package conn

import (
	"net"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/wegjgwioj/goredis/rediserr"
)

// DefaultKeepAlivePeriod matches the common Redis client default.
const DefaultKeepAlivePeriod = 5 * time.Minute

// DefaultDialTimeout bounds how long Dial waits for the TCP handshake.
const DefaultDialTimeout = 5 * time.Second

// DefaultReadBufferSize is the chunk size passed to the underlying
// net.Conn.Read by Read.
const DefaultReadBufferSize = 64 * 1024

// Conn wraps one net.Conn, applying the socket options the spec
// requires (SO_KEEPALIVE, TCP_NODELAY) and classifying I/O failures as
// rediserr.IOError.
type Conn struct {
	addr   string
	nc     net.Conn
	log    *zap.Logger
	closed bool
}

// Dial opens a TCP connection to addr (host:port) and configures it per
// §4.3: keepalive and TCP_NODELAY enabled.
func Dial(addr string, log *zap.Logger) (*Conn, error) {
	if log == nil {
		log = zap.NewNop()
	}
	nc, err := net.DialTimeout("tcp", addr, DefaultDialTimeout)
	if err != nil {
		return nil, rediserr.NewIOError(errors.Wrapf(err, "dial %s", addr))
	}
	if tc, ok := nc.(*net.TCPConn); ok {
		_ = tc.SetKeepAlive(true)
		_ = tc.SetKeepAlivePeriod(DefaultKeepAlivePeriod)
		_ = tc.SetNoDelay(true)
	}
	log.Info("connection established", zap.String("addr", addr))
	return &Conn{addr: addr, nc: nc, log: log}, nil
}

// Addr returns the dialed address.
func (c *Conn) Addr() string { return c.addr }

// Write writes b to the socket in full, retrying partial writes until
// the buffer drains. It fails with rediserr.IOError on any write error.
func (c *Conn) Write(b []byte) error {
	for len(b) > 0 {
		n, err := c.nc.Write(b)
		if err != nil {
			c.log.Warn("write failed", zap.String("addr", c.addr), zap.Error(err))
			return rediserr.NewIOError(errors.Wrap(err, "conn write"))
		}
		b = b[n:]
	}
	return nil
}

// Read performs a single read into buf, returning the number of bytes
// read. It fails with rediserr.IOError (wrapping io.EOF) when the peer
// closes the connection. Read is a thin, lazy wrapper — callers loop on
// it to drive a streaming decoder rather than expecting Read to return
// a full message.
func (c *Conn) Read(buf []byte) (int, error) {
	n, err := c.nc.Read(buf)
	if err != nil {
		return n, rediserr.NewIOError(errors.Wrap(err, "conn read"))
	}
	return n, nil
}

// Close closes the underlying socket. Safe to call more than once.
func (c *Conn) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.log.Info("connection closed", zap.String("addr", c.addr))
	return c.nc.Close()
}
