package chat

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/nvukovic/memberhub/internal/domain"
	"github.com/nvukovic/memberhub/internal/transport/ws"
)

func TestRealtimeCleanServerCloseReturnsNil(t *testing.T) {
	var gotToken string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.URL.Query().Get("token")
		conn, err := websocket.Accept(w, r, nil)
		require.NoError(t, err)
		conn.Close(websocket.StatusNormalClosure, "shutting down")
	}))
	defer srv.Close()

	self := domain.Member{ID: uuid.New()}
	session := startSession(t, self, newFakeStore())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rt, err := DialRealtime(ctx, srv.URL, "the-token", session)
	require.NoError(t, err)

	assert.NoError(t, rt.Run(ctx))
	assert.Equal(t, "the-token", gotToken)
}

func TestRealtimeDeliversDecodedEvents(t *testing.T) {
	self := domain.Member{ID: uuid.New()}
	other := uuid.New()
	msgID := uuid.New()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		require.NoError(t, err)

		evt, err := ws.NewEvent(ws.EventTypeMessageNew, ws.MessagePayload{Message: domain.Message{
			ID:          msgID,
			SenderID:    other,
			RecipientID: self.ID,
			SenderName:  "Other",
			Body:        "over the wire",
			CreatedAt:   time.Now(),
		}})
		require.NoError(t, err)
		require.NoError(t, wsjson.Write(r.Context(), conn, evt))

		conn.Close(websocket.StatusNormalClosure, "")
	}))
	defer srv.Close()

	session := startSession(t, self, newFakeStore())
	session.Open(other)
	require.Eventually(t, func() bool {
		return session.Snapshot().Active == other
	}, time.Second, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rt, err := DialRealtime(ctx, srv.URL, "the-token", session)
	require.NoError(t, err)
	require.NoError(t, rt.Run(ctx))

	require.Eventually(t, func() bool {
		msgs := session.Snapshot().Messages
		return len(msgs) == 1 && msgs[0].ID == msgID
	}, time.Second, 10*time.Millisecond)
}
