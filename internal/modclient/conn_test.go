package modclient

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/ifbars/s1bridge/internal/protocol"
)

// fakeConn is an in-memory scripted net.Conn. Complete frames written by the
// client are parsed and recorded; request frames are answered through the
// respond hook, whose frames become readable immediately. An empty read
// buffer reads as a peer close.
type fakeConn struct {
	mu         sync.Mutex
	readBuf    bytes.Buffer
	pending    bytes.Buffer
	events     []string
	requests   []protocol.Request
	acks       []protocol.Acknowledgment
	respond    func(req protocol.Request) [][]byte
	failWrites bool
	failAcks   bool
	writeCalls int
	writeSizes []int
	closed     bool
}

type fakeAddr struct{}

func (fakeAddr) Network() string { return "tcp" }
func (fakeAddr) String() string  { return "fake" }

func (fc *fakeConn) Read(p []byte) (int, error) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	if fc.readBuf.Len() == 0 {
		return 0, io.EOF
	}
	return fc.readBuf.Read(p)
}

func (fc *fakeConn) Write(p []byte) (int, error) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.writeCalls++
	fc.writeSizes = append(fc.writeSizes, len(p))
	if fc.failWrites {
		return 0, errors.New("write refused")
	}
	if fc.failAcks && isAckFrame(p) {
		return 0, errors.New("ack write refused")
	}
	fc.pending.Write(p)
	fc.drainFramesLocked()
	return len(p), nil
}

func (fc *fakeConn) drainFramesLocked() {
	for {
		buf := fc.pending.Bytes()
		if len(buf) < protocol.PrefixSize {
			return
		}
		length := int(binary.LittleEndian.Uint32(buf))
		if len(buf) < protocol.PrefixSize+length {
			return
		}
		payload := make([]byte, length)
		copy(payload, buf[protocol.PrefixSize:protocol.PrefixSize+length])
		fc.pending.Next(protocol.PrefixSize + length)

		var probe map[string]json.RawMessage
		if err := json.Unmarshal(payload, &probe); err != nil {
			continue
		}
		if _, ok := probe["method"]; ok {
			var req protocol.Request
			if err := json.Unmarshal(payload, &req); err != nil {
				continue
			}
			fc.requests = append(fc.requests, req)
			fc.events = append(fc.events, fmt.Sprintf("req:%d", req.ID))
			if fc.respond != nil {
				for _, frame := range fc.respond(req) {
					fc.readBuf.Write(frame)
				}
			}
			continue
		}
		if _, ok := probe["status"]; ok {
			var ack protocol.Acknowledgment
			if err := json.Unmarshal(payload, &ack); err != nil {
				continue
			}
			fc.acks = append(fc.acks, ack)
			fc.events = append(fc.events, fmt.Sprintf("ack:%d", ack.ID))
		}
	}
}

func isAckFrame(p []byte) bool {
	if len(p) < protocol.PrefixSize {
		return false
	}
	length := int(binary.LittleEndian.Uint32(p))
	if len(p) != protocol.PrefixSize+length {
		return false
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(p[protocol.PrefixSize:], &probe); err != nil {
		return false
	}
	_, ok := probe["status"]
	return ok
}

func (fc *fakeConn) Close() error {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.closed = true
	return nil
}

func (fc *fakeConn) LocalAddr() net.Addr              { return fakeAddr{} }
func (fc *fakeConn) RemoteAddr() net.Addr             { return fakeAddr{} }
func (fc *fakeConn) SetDeadline(time.Time) error      { return nil }
func (fc *fakeConn) SetReadDeadline(time.Time) error  { return nil }
func (fc *fakeConn) SetWriteDeadline(time.Time) error { return nil }

func (fc *fakeConn) snapshotRequests() []protocol.Request {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return append([]protocol.Request(nil), fc.requests...)
}

func (fc *fakeConn) snapshotAcks() []protocol.Acknowledgment {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return append([]protocol.Acknowledgment(nil), fc.acks...)
}

func (fc *fakeConn) snapshotEvents() []string {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return append([]string(nil), fc.events...)
}

// frameBytes wraps a JSON payload in the wire framing.
func frameBytes(payload string) []byte {
	buf := make([]byte, protocol.PrefixSize+len(payload))
	binary.LittleEndian.PutUint32(buf, uint32(len(payload)))
	copy(buf[protocol.PrefixSize:], payload)
	return buf
}

// echoResponder answers every request with a matching-id success response.
func echoResponder(req protocol.Request) [][]byte {
	return [][]byte{frameBytes(fmt.Sprintf(`{"id":%d,"result":{"ok":true},"error":null}`, req.ID))}
}
