package modclient

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/ifbars/s1bridge/internal/protocol"
)

// writeChunkSize bounds a single Write call. Frames are usually tiny, but the
// mod can accept multi-megabyte payloads (e.g. inspect_object dumps) and some
// platforms cap per-call send sizes.
const writeChunkSize = 64 * 1024

// writeMessage sends a complete framed message, chunking as needed.
func writeMessage(conn net.Conn, data []byte) error {
	for len(data) > 0 {
		n := len(data)
		if n > writeChunkSize {
			n = writeChunkSize
		}
		wrote, err := conn.Write(data[:n])
		if err != nil {
			return &ConnError{Op: "write", Err: err}
		}
		data = data[wrote:]
	}
	return nil
}

// readMessage blocks until one complete framed message is available and
// returns it prefix included, ready for protocol.DecodeResponse. The length
// prefix is validated before the payload is read so a corrupted stream cannot
// make us allocate or wait for garbage.
func readMessage(conn net.Conn, timeout time.Duration) ([]byte, error) {
	if timeout > 0 {
		if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
			return nil, &ConnError{Op: "set read deadline", Err: err}
		}
	}

	buf := make([]byte, protocol.PrefixSize)
	if _, err := io.ReadFull(conn, buf); err != nil {
		return nil, &ConnError{Op: "read length prefix", Err: readErr(err)}
	}

	length := binary.LittleEndian.Uint32(buf)
	if length == 0 || length > protocol.MaxMessageSize {
		return nil, &ConnError{Op: "read", Err: fmt.Errorf("invalid message length %d", length)}
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(conn, payload); err != nil {
		return nil, &ConnError{Op: "read payload", Err: readErr(err)}
	}
	return append(buf, payload...), nil
}

// readErr distinguishes an orderly peer close from other I/O failures.
// A zero-byte read on a supposedly open connection means the game went away.
func readErr(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return fmt.Errorf("peer closed connection: %w", err)
	}
	return err
}
