// Package modclient maintains the persistent TCP connection to the Schedule I
// mod server and drives request/response exchanges over it.
//
// One exchange (request, response, acknowledgment) is in flight per connection
// at a time; concurrent callers and the background heartbeat queue on the
// exchange lock. Request ids are allocated from a separately locked monotonic
// counter so allocation never serializes with a network round trip.
package modclient

import (
	"errors"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ifbars/s1bridge/internal/config"
	"github.com/ifbars/s1bridge/internal/logx"
	"github.com/ifbars/s1bridge/internal/protocol"
)

// ackWriteTimeout bounds the fire-and-forget acknowledgment write so a stalled
// socket cannot hold the exchange lock after the caller already has its
// response.
const ackWriteTimeout = 5 * time.Second

var dialTimeout = net.DialTimeout

// Client is the connection engine. Construct with New, then Connect (or let
// the first Call connect lazily), and Disconnect when done.
type Client struct {
	host              string
	port              int
	connectTimeout    time.Duration
	readTimeout       time.Duration
	reconnectDelay    time.Duration
	heartbeatInterval time.Duration

	log zerolog.Logger

	// mu is the exchange lock. It guards conn/connected and serializes one
	// request/response/ack cycle per connection.
	mu        sync.Mutex
	conn      net.Conn
	connected bool

	// idMu guards the monotonic request id counter, separately from mu so id
	// allocation stays cheap while an exchange is in flight.
	idMu   sync.Mutex
	nextID uint64

	hbMu   sync.Mutex
	hbStop chan struct{}
	hbDone chan struct{}
}

// New creates a client for the configured mod endpoint. No connection is made
// until Connect or the first Call.
func New(cfg config.ModConfig) *Client {
	return &Client{
		host:              cfg.Host,
		port:              cfg.Port,
		connectTimeout:    cfg.ConnectTimeoutDuration(),
		readTimeout:       cfg.ReadTimeoutDuration(),
		reconnectDelay:    cfg.ReconnectDelayDuration(),
		heartbeatInterval: cfg.HeartbeatIntervalDuration(),
		log:               logx.Log.With().Str("component", "modclient").Logger(),
	}
}

// Connect opens the TCP connection and starts the heartbeat daemon.
// It is a no-op when already connected.
func (c *Client) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connectLocked()
}

func (c *Client) connectLocked() error {
	if c.connected {
		return nil
	}

	addr := net.JoinHostPort(c.host, strconv.Itoa(c.port))
	conn, err := dialTimeout("tcp", addr, c.connectTimeout)
	if err != nil {
		c.conn = nil
		c.connected = false
		return &ConnError{Op: "connect " + addr, Err: err}
	}

	if tc, ok := conn.(*net.TCPConn); ok {
		// small frames, latency matters more than throughput
		_ = tc.SetNoDelay(true)
	}

	c.conn = conn
	c.connected = true
	c.log.Info().Str("addr", addr).Msg("connected to mod server")

	c.startHeartbeat()
	return nil
}

// Disconnect stops the heartbeat daemon and closes the connection.
// Close errors are logged, never raised; Disconnect is idempotent.
func (c *Client) Disconnect() {
	c.stopHeartbeat()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			c.log.Warn().Err(err).Msg("closing mod connection")
		}
		c.conn = nil
		c.log.Info().Msg("disconnected from mod server")
	}
	c.connected = false
}

// IsConnected reports whether the client currently holds a live connection.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected && c.conn != nil
}

// markDisconnectedLocked tears down a failed connection without touching the
// heartbeat daemon; the daemon skips ticks while disconnected and the next
// application call reconnects.
func (c *Client) markDisconnectedLocked() {
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	c.connected = false
}

func (c *Client) nextRequestID() uint64 {
	c.idMu.Lock()
	defer c.idMu.Unlock()
	c.nextID++
	return c.nextID
}

// Call performs one request/response exchange and returns the response.
// A response carrying a non-nil Error field is a successful exchange; only
// transport and protocol failures return a non-nil error, and both leave the
// connection marked disconnected.
func (c *Client) Call(method string, params map[string]any) (*protocol.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.connectLocked(); err != nil {
		return nil, err
	}

	resp, err := c.callLocked(method, params)
	if err != nil {
		c.log.Error().Err(err).Str("method", method).Msg("call failed")
		c.markDisconnectedLocked()
		return nil, err
	}
	return resp, nil
}

// callLocked runs the exchange while the caller holds the exchange lock. It is
// split from Call so no internal path ever re-acquires the non-reentrant lock.
func (c *Client) callLocked(method string, params map[string]any) (*protocol.Response, error) {
	id := c.nextRequestID()

	data, err := protocol.EncodeRequest(id, method, params)
	if err != nil {
		return nil, err
	}
	c.log.Debug().Uint64("id", id).Str("method", method).Msg("sending request")
	if err := writeMessage(c.conn, data); err != nil {
		return nil, err
	}

	resp, err := c.readResponse()
	if err != nil {
		return nil, err
	}

	if resp.ID != id {
		if resp.IsServerHeartbeat() {
			// A server-initiated heartbeat answers no pending request.
			// Discard it and read the real response.
			c.log.Debug().Uint64("heartbeat_id", resp.ID).Uint64("id", id).
				Msg("server heartbeat interleaved, reading next message")
			resp, err = c.readResponse()
			if err != nil {
				return nil, err
			}
			if resp.ID != id {
				c.log.Warn().Uint64("want", id).Uint64("got", resp.ID).
					Msg("response id mismatch after server heartbeat")
			}
		} else {
			c.log.Warn().Uint64("want", id).Uint64("got", resp.ID).
				Msg("response id mismatch")
		}
	}

	c.sendAck(resp.ID)
	return resp, nil
}

func (c *Client) readResponse() (*protocol.Response, error) {
	data, err := readMessage(c.conn, c.readTimeout)
	if err != nil {
		return nil, err
	}
	return protocol.DecodeResponse(data)
}

// sendAck sends the acknowledgment for a consumed response. It never fails
// the call: the caller already holds a valid response.
func (c *Client) sendAck(id uint64) {
	data, err := protocol.EncodeAcknowledgment(id)
	if err != nil {
		c.log.Warn().Err(err).Uint64("id", id).Msg("encoding acknowledgment")
		return
	}

	_ = c.conn.SetWriteDeadline(time.Now().Add(ackWriteTimeout))
	defer func() { _ = c.conn.SetWriteDeadline(time.Time{}) }()

	if err := writeMessage(c.conn, data); err != nil {
		c.log.Warn().Err(err).Uint64("id", id).Msg("sending acknowledgment")
	}
}

// CallWithRetry performs Call up to maxRetries times. Connection failures
// trigger a delay, a disconnect, and a reconnect attempt before the next try;
// protocol failures surface immediately since they indicate a broken exchange
// rather than transience.
func (c *Client) CallWithRetry(method string, params map[string]any, maxRetries int) (*protocol.Response, error) {
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		resp, err := c.Call(method, params)
		if err == nil {
			return resp, nil
		}
		if !IsConnError(err) {
			return nil, err
		}

		lastErr = err
		c.log.Warn().Err(err).Str("method", method).
			Int("attempt", attempt+1).Int("max", maxRetries).Msg("call attempt failed")

		if attempt < maxRetries-1 {
			time.Sleep(c.reconnectDelay)
			c.Disconnect()
			if cerr := c.Connect(); cerr != nil {
				c.log.Debug().Err(cerr).Msg("reconnect failed, will retry")
			}
		}
	}

	if lastErr == nil {
		lastErr = &ConnError{Op: "call " + method, Err: errors.New("no attempts made")}
	}
	return nil, lastErr
}
