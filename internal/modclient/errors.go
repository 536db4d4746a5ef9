package modclient

import "errors"

// ConnError reports a socket-level failure: connect timeout, read/write error,
// peer close, or an invalid length prefix on the stream. The connection is
// torn down when one occurs, and CallWithRetry treats it as retryable.
type ConnError struct {
	Op  string
	Err error
}

func (e *ConnError) Error() string { return "mod connection: " + e.Op + ": " + e.Err.Error() }

func (e *ConnError) Unwrap() error { return e.Err }

// IsConnError reports whether err is (or wraps) a ConnError.
func IsConnError(err error) bool {
	var ce *ConnError
	return errors.As(err, &ce)
}
