package chat

import (
	"context"
	"log"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/nvukovic/memberhub/internal/transport/ws"
)

const realtimePingInterval = 30 * time.Second

// Realtime consumes the server's push stream of row-level change events
// and feeds validated domain events into a session. One Realtime serves
// one authenticated session; an identity change means tearing this one
// down and dialing a new one.
type Realtime struct {
	conn    *websocket.Conn
	session *Session
}

// DialRealtime opens the event subscription for the session's identity.
// The returned Realtime must be driven with Run.
func DialRealtime(ctx context.Context, baseURL, token string, session *Session) (*Realtime, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()

	conn, _, err := websocket.Dial(ctx, u.String(), nil)
	if err != nil {
		return nil, err
	}

	return &Realtime{conn: conn, session: session}, nil
}

// Run pumps events until the connection drops or ctx is cancelled.
// Malformed or foreign payloads are logged and dropped; nothing that
// arrives on the wire can take the subscription down from the inside.
func (r *Realtime) Run(ctx context.Context) error {
	defer r.conn.Close(websocket.StatusNormalClosure, "")

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		for {
			var raw ws.Event
			if err := wsjson.Read(ctx, r.conn, &raw); err != nil {
				if websocket.CloseStatus(err) != -1 || ctx.Err() != nil {
					return ctx.Err()
				}
				return err
			}

			ev, err := DecodeEvent(r.session.self.ID, &raw)
			if err != nil {
				log.Printf("chat realtime: dropping payload: %v", err)
				continue
			}
			r.session.Deliver(ev)
		}
	})

	g.Go(func() error {
		ticker := time.NewTicker(realtimePingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
				err := r.conn.Ping(pingCtx)
				cancel()
				if err != nil {
					if ctx.Err() != nil {
						return nil
					}
					return err
				}
			case <-ctx.Done():
				// Cancellation here is the read loop winding down
				// (clean server close or caller cancel); the read
				// loop's result decides what Run reports.
				return nil
			}
		}
	})

	return g.Wait()
}
