package gameproc

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ifbars/s1bridge/internal/protocol"
)

// modConn is the slice of the connection engine the poller needs.
type modConn interface {
	Connect() error
	Disconnect()
	IsConnected() bool
	Call(method string, params map[string]any) (*protocol.Response, error)
}

// PollResult reports the outcome of waiting for the mod server to come up.
type PollResult struct {
	Connected  bool            `json:"connected"`
	Attempts   int             `json:"attempts"`
	ElapsedSec float64         `json:"elapsed_time"`
	ServerInfo json.RawMessage `json:"server_info,omitempty"`
	Error      string          `json:"error,omitempty"`
}

// gameLoadDelay gives the game time to reach the menu scene. The mod's TCP
// server accepts connections immediately after launch but cannot process
// commands until the scene is loaded.
var gameLoadDelay = 20 * time.Second

// PollConnection repeatedly connects and handshakes until the mod server
// responds or the timeout elapses. Each attempt starts from a clean
// disconnected state.
func (m *Manager) PollConnection(conn modConn, timeout, interval time.Duration) *PollResult {
	start := time.Now()
	attempts := 0

	conn.Disconnect()
	m.log.Info().Dur("delay", gameLoadDelay).Msg("waiting for game to load before connecting")
	sleepFn(gameLoadDelay)

	for time.Since(start) < timeout {
		attempts++

		if conn.IsConnected() {
			conn.Disconnect()
		}

		if err := conn.Connect(); err != nil {
			m.log.Debug().Err(err).Int("attempt", attempts).Msg("connection attempt failed")
		} else {
			resp, err := conn.Call("handshake", nil)
			switch {
			case err != nil:
				m.log.Debug().Err(err).Int("attempt", attempts).Msg("handshake failed")
				conn.Disconnect()
			case resp.Error != nil:
				m.log.Debug().Str("message", resp.Error.Message).Int("attempt", attempts).
					Msg("handshake returned error")
				conn.Disconnect()
			default:
				m.log.Info().Int("attempt", attempts).Msg("connected to game")
				return &PollResult{
					Connected:  true,
					Attempts:   attempts,
					ElapsedSec: roundSec(time.Since(start)),
					ServerInfo: resp.Result,
				}
			}
		}

		if time.Since(start) < timeout {
			sleepFn(interval)
		}
	}

	return &PollResult{
		Connected:  false,
		Attempts:   attempts,
		ElapsedSec: roundSec(time.Since(start)),
		Error:      fmt.Sprintf("connection timeout after %s (%d attempts)", timeout, attempts),
	}
}

func roundSec(d time.Duration) float64 {
	return float64(int(d.Seconds()*100+0.5)) / 100
}
