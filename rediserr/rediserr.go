// Package rediserr defines the classified error taxonomy that crosses
// the command.Run boundary. Every command invocation resolves to either
// a typed result or exactly one of the error types below.
package rediserr

import "fmt"

// ProtocolError reports malformed RESP framing or a reply shape the
// decoder did not expect. It is never retried.
type ProtocolError struct {
	Detail string
}

func (e *ProtocolError) Error() string { return "protocol error: " + e.Detail }

// NewProtocolError builds a ProtocolError from a formatted detail.
func NewProtocolError(format string, args ...interface{}) *ProtocolError {
	return &ProtocolError{Detail: fmt.Sprintf(format, args...)}
}

// WrongType reports a server -WRONGTYPE reply. Not retried.
type WrongType struct {
	Detail string
}

func (e *WrongType) Error() string { return "WRONGTYPE " + e.Detail }

// CodecError reports a typed payload that failed to decode via the
// caller-supplied codec.Codec.
type CodecError struct {
	Detail string
	Cause  error
}

func (e *CodecError) Error() string {
	if e.Cause != nil {
		return "codec error: " + e.Detail + ": " + e.Cause.Error()
	}
	return "codec error: " + e.Detail
}

func (e *CodecError) Unwrap() error { return e.Cause }

// Moved is the cluster MOVED redirect. The cluster executor intercepts
// this and retries transparently; it is only surfaced to a caller once
// retries are exhausted.
type Moved struct {
	Slot    int
	Address string
	Detail  string
}

func (e *Moved) Error() string {
	return fmt.Sprintf("MOVED %d %s: %s", e.Slot, e.Address, e.Detail)
}

// Ask is the cluster ASK redirect. Like Moved, intercepted transparently
// by the cluster executor.
type Ask struct {
	Slot    int
	Address string
	Detail  string
}

func (e *Ask) Error() string {
	return fmt.Sprintf("ASK %d %s: %s", e.Slot, e.Address, e.Detail)
}

// BusyGroup reports a -BUSYGROUP reply (consumer group already exists).
type BusyGroup struct{ Detail string }

func (e *BusyGroup) Error() string { return "BUSYGROUP " + e.Detail }

// NoGroup reports a -NOGROUP reply (consumer group or stream missing).
type NoGroup struct{ Detail string }

func (e *NoGroup) Error() string { return "NOGROUP " + e.Detail }

// NoScript reports a -NOSCRIPT reply (script not found by SHA).
type NoScript struct{ Detail string }

func (e *NoScript) Error() string { return "NOSCRIPT " + e.Detail }

// Busy reports a -BUSY reply (server busy running a script).
type Busy struct{ Detail string }

func (e *Busy) Error() string { return "BUSY " + e.Detail }

// NotBusy reports a -NOTBUSY reply (no script to kill).
type NotBusy struct{ Detail string }

func (e *NotBusy) Error() string { return "NOTBUSY " + e.Detail }

// ServerError is the fallback classification for any -ERR (or otherwise
// unrecognized token) reply the server returns.
type ServerError struct{ Detail string }

func (e *ServerError) Error() string { return "ERR " + e.Detail }

// IOError reports a socket failure. The connection executor retries it
// internally via reconnect; the cluster executor retries it per its
// backoff policy.
type IOError struct {
	Cause error
}

func (e *IOError) Error() string {
	if e.Cause == nil {
		return "i/o error"
	}
	return "i/o error: " + e.Cause.Error()
}

func (e *IOError) Unwrap() error { return e.Cause }

// NewIOError wraps a low-level error as a classified IOError.
func NewIOError(cause error) *IOError { return &IOError{Cause: cause} }

// ClusterKeyError reports a command whose key argument could not be
// extracted (no key, or a command shape the router does not recognize).
type ClusterKeyError struct{ Detail string }

func (e *ClusterKeyError) Error() string { return "cluster key error: " + e.Detail }

// ClusterConnectionError reports a failure to reach any node in the
// cluster topology (initialization or slot lookup failure).
type ClusterConnectionError struct{ Detail string }

func (e *ClusterConnectionError) Error() string { return "cluster connection error: " + e.Detail }

// ClusterKeyExecutorError reports that a slot resolved to no known
// executor (a hole in the topology map).
type ClusterKeyExecutorError struct {
	Slot int
}

func (e *ClusterKeyExecutorError) Error() string {
	return fmt.Sprintf("cluster: no executor owns slot %d", e.Slot)
}

// Timeout is a caller-imposed timeout, surfaced when a context passed to
// Run/Execute expires before the reply is resolved.
type Timeout struct{ Detail string }

func (e *Timeout) Error() string { return "timeout: " + e.Detail }

// ErrClosed is returned by a connection or cluster executor once its
// scope has been closed; all further calls fail immediately with it.
var ErrClosed = &IOError{Cause: fmt.Errorf("executor closed")}
