package modclient

import "time"

// heartbeatJoinTimeout bounds how long stopHeartbeat waits for the loop to
// observe the stop signal before giving up on the join.
const heartbeatJoinTimeout = 2 * time.Second

// startHeartbeat launches the background heartbeat loop. No-op if the loop is
// already running.
func (c *Client) startHeartbeat() {
	c.hbMu.Lock()
	defer c.hbMu.Unlock()
	if c.hbStop != nil {
		return
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	c.hbStop, c.hbDone = stop, done
	go c.heartbeatLoop(stop, done)
	c.log.Debug().Dur("interval", c.heartbeatInterval).Msg("heartbeat daemon started")
}

// stopHeartbeat signals the loop to stop and waits briefly for it to exit.
func (c *Client) stopHeartbeat() {
	c.hbMu.Lock()
	stop, done := c.hbStop, c.hbDone
	c.hbStop, c.hbDone = nil, nil
	c.hbMu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	select {
	case <-done:
	case <-time.After(heartbeatJoinTimeout):
		// The loop may be mid-exchange; it will see the signal at its next
		// wait boundary.
	}
	c.log.Debug().Msg("heartbeat daemon stopped")
}

// heartbeatLoop periodically issues a heartbeat call to keep the connection
// alive and detect a dead peer. Every failure is swallowed; only the stop
// signal ends the loop. While disconnected it skips the tick; reconnecting
// is the next application call's job.
func (c *Client) heartbeatLoop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(c.heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		if !c.IsConnected() {
			continue
		}

		// A single attempt: a heartbeat contending with a long application
		// call should fail fast, not pile up behind it.
		resp, err := c.CallWithRetry("heartbeat", nil, 1)
		switch {
		case err != nil:
			c.log.Debug().Err(err).Msg("heartbeat failed")
		case resp.Error != nil:
			c.log.Debug().Int32("code", resp.Error.Code).Str("message", resp.Error.Message).
				Msg("heartbeat returned error")
		default:
			c.log.Debug().Msg("heartbeat ok")
		}
	}
}
