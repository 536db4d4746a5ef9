// Package protocol implements the length-prefixed JSON wire format spoken by
// the Schedule I mod server: a 4-byte little-endian payload length followed by
// that many bytes of UTF-8 JSON.
package protocol

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
)

const (
	// PrefixSize is the size of the length prefix in bytes.
	PrefixSize = 4

	// MaxMessageSize caps a single payload. Anything larger (or zero) is
	// treated as stream corruption rather than a real message.
	MaxMessageSize = 10 * 1024 * 1024
)

// AckStatus is the fixed status string carried by every acknowledgment.
const AckStatus = "received"

// ServerHeartbeatType tags a server-initiated heartbeat result payload.
const ServerHeartbeatType = "server_heartbeat"

// Request is an outbound method invocation.
type Request struct {
	ID     uint64         `json:"id"`
	Method string         `json:"method"`
	Params map[string]any `json:"params"`
}

// Response is an inbound reply. Exactly one of Result/Error is meaningful;
// both may be structurally present as null.
type Response struct {
	ID     uint64          `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *ErrorInfo      `json:"error"`
}

// ErrorInfo is the error half of a response.
type ErrorInfo struct {
	Code    int32          `json:"code"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// Acknowledgment is sent back after a response has been consumed.
// It is purely informational; the server never replies to it.
type Acknowledgment struct {
	ID     uint64 `json:"id"`
	Status string `json:"status"`
}

// Error reports a malformed payload on an otherwise healthy transport:
// truncated framing, invalid JSON, impossible lengths. It is distinct from a
// connection failure and is not retryable.
type Error struct {
	msg string
}

func (e *Error) Error() string { return "protocol: " + e.msg }

func errorf(format string, args ...any) *Error {
	return &Error{msg: fmt.Sprintf(format, args...)}
}

// IsServerHeartbeat reports whether the response result is tagged as a
// server-initiated heartbeat. Such a message answers no pending request.
func (r *Response) IsServerHeartbeat() bool {
	if len(r.Result) == 0 {
		return false
	}
	var tag struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(r.Result, &tag); err != nil {
		return false
	}
	return tag.Type == ServerHeartbeatType
}

// EncodeRequest serializes a request to a complete framed message.
func EncodeRequest(id uint64, method string, params map[string]any) ([]byte, error) {
	if params == nil {
		params = map[string]any{}
	}
	return frame(Request{ID: id, Method: method, Params: params})
}

// EncodeAcknowledgment serializes an acknowledgment to a complete framed message.
func EncodeAcknowledgment(id uint64) ([]byte, error) {
	return frame(Acknowledgment{ID: id, Status: AckStatus})
}

func frame(v any) ([]byte, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, errorf("marshal message: %v", err)
	}
	buf := make([]byte, PrefixSize+len(payload))
	binary.LittleEndian.PutUint32(buf, uint32(len(payload)))
	copy(buf[PrefixSize:], payload)
	return buf, nil
}

// DecodeResponse parses a complete framed message into a Response.
// The buffer must contain the length prefix and at least that many payload
// bytes. Malformed input is a *Error; it is never coerced to a default
// response.
func DecodeResponse(data []byte) (*Response, error) {
	if len(data) < PrefixSize {
		return nil, errorf("message too short: %d bytes, missing length prefix", len(data))
	}
	length := binary.LittleEndian.Uint32(data)
	if length == 0 || length > MaxMessageSize {
		return nil, errorf("invalid message length %d", length)
	}
	if uint32(len(data)-PrefixSize) < length {
		return nil, errorf("message incomplete: expected %d payload bytes, have %d", length, len(data)-PrefixSize)
	}

	var resp Response
	if err := json.Unmarshal(data[PrefixSize:PrefixSize+int(length)], &resp); err != nil {
		return nil, errorf("invalid JSON payload: %v", err)
	}
	return &resp, nil
}

// JSON-RPC error codes used by the mod server.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// MapErrorCode normalizes a mod error code for boundaries that require strict
// JSON-RPC codes. Standard codes and the reserved application band
// (-32099..-32000) pass through; anything else becomes internal error.
// Callers that tolerate arbitrary codes should not use this.
func MapErrorCode(code int32) int32 {
	switch code {
	case CodeParseError, CodeInvalidRequest, CodeMethodNotFound, CodeInvalidParams, CodeInternalError:
		return code
	}
	if code >= -32099 && code <= -32000 {
		return code
	}
	return CodeInternalError
}
