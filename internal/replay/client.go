package replay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gorilla/websocket"

	"github.com/lawnchairsociety/gridclash/internal/engine"
)

// Watch dials a replay endpoint and calls handle for every step, acking each
// one after handle returns. It returns nil once the end frame arrives.
func Watch(ctx context.Context, url string, handle func(engine.Step)) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", url, err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		var f Frame
		if err := json.Unmarshal(message, &f); err != nil {
			return fmt.Errorf("bad replay frame: %w", err)
		}
		switch f.Type {
		case FrameStart:
		case FrameStep:
			if f.Step == nil {
				return errors.New("step frame without a step")
			}
			if handle != nil {
				handle(*f.Step)
			}
			data, _ := json.Marshal(Ack{Ack: f.Step.Seq})
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return err
			}
		case FrameEnd:
			return nil
		}
	}
}
