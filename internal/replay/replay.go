// Package replay streams a battle's step log to a WebSocket client one step at
// a time. Each step waits for the client's {"ack": seq}; when no ack arrives
// within the timeout the stream advances anyway.
package replay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lawnchairsociety/gridclash/internal/engine"
	"github.com/lawnchairsociety/gridclash/internal/logger"
)

// DefaultAckTimeout is used when a Streamer has no timeout configured.
const DefaultAckTimeout = 2 * time.Second

const writeTimeout = 5 * time.Second

// ErrClientGone is returned when the client disconnects mid-stream.
var ErrClientGone = errors.New("replay client disconnected")

// Frame types sent to the client.
const (
	FrameStart = "start"
	FrameStep  = "step"
	FrameEnd   = "end"
)

// Frame is one server message.
type Frame struct {
	Type     string       `json:"type"`
	BattleID string       `json:"battleId,omitempty"`
	Total    int          `json:"total,omitempty"`
	Step     *engine.Step `json:"step,omitempty"`
}

// Ack is the client's acknowledgement of a step.
type Ack struct {
	Ack int `json:"ack"`
}

// Stats summarizes a finished stream.
type Stats struct {
	Sent     int
	Acked    int
	TimedOut int
}

// Streamer sends step logs over WebSocket connections.
type Streamer struct {
	AckTimeout time.Duration
}

// NewStreamer creates a streamer with the given ack timeout.
func NewStreamer(ackTimeout time.Duration) *Streamer {
	if ackTimeout <= 0 {
		ackTimeout = DefaultAckTimeout
	}
	return &Streamer{AckTimeout: ackTimeout}
}

// Stream writes a start frame, every step, and an end frame to conn. It owns
// reads on conn until it returns; the caller closes conn afterwards.
func (s *Streamer) Stream(ctx context.Context, conn *websocket.Conn, battleID string, steps []engine.Step) (Stats, error) {
	var stats Stats

	acks := make(chan int, 8)
	readErr := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)
	go readAcks(conn, acks, readErr, done)

	if err := writeFrame(conn, Frame{Type: FrameStart, BattleID: battleID, Total: len(steps)}); err != nil {
		return stats, err
	}

	timer := time.NewTimer(s.AckTimeout)
	defer timer.Stop()

	for i := range steps {
		step := steps[i]
		if err := writeFrame(conn, Frame{Type: FrameStep, Step: &step}); err != nil {
			return stats, err
		}
		stats.Sent++

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(s.AckTimeout)

	wait:
		for {
			select {
			case <-ctx.Done():
				return stats, ctx.Err()
			case err := <-readErr:
				return stats, fmt.Errorf("%w: %w", ErrClientGone, err)
			case seq := <-acks:
				if seq < step.Seq {
					continue // stale ack for an earlier step
				}
				stats.Acked++
				break wait
			case <-timer.C:
				stats.TimedOut++
				logger.Debug("Replay ack timed out", "battle", battleID, "seq", step.Seq)
				break wait
			}
		}
	}

	if err := writeFrame(conn, Frame{Type: FrameEnd, BattleID: battleID, Total: len(steps)}); err != nil {
		return stats, err
	}
	closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "replay complete")
	_ = conn.WriteControl(websocket.CloseMessage, closeMsg, time.Now().Add(writeTimeout))
	return stats, nil
}

func writeFrame(conn *websocket.Conn, f Frame) error {
	data, err := json.Marshal(f)
	if err != nil {
		return err
	}
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteMessage(websocket.TextMessage, data)
}

// readAcks forwards acks until the connection fails or done is closed.
// Malformed messages are ignored.
func readAcks(conn *websocket.Conn, acks chan<- int, readErr chan<- error, done <-chan struct{}) {
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			readErr <- err
			return
		}
		var ack Ack
		if err := json.Unmarshal(message, &ack); err != nil {
			continue
		}
		select {
		case acks <- ack.Ack:
		case <-done:
			return
		}
	}
}
