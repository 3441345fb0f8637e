package wsrouter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoInput struct {
	Text string `json:"text"`
}

func serve(t *testing.T, router *WSRouter) *Conn {
	t.Helper()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}

		router.ServeConn(r.Context(), NewConn(ws))
	}))
	t.Cleanup(srv.Close)

	ws, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)

	conn := NewConn(ws)
	t.Cleanup(func() { conn.Close() })

	return conn
}

func readWithTimeout(t *testing.T, conn *Conn) Message {
	t.Helper()

	require.NoError(t, conn.ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	msg, err := conn.ReadMessage()
	require.NoError(t, err)

	return msg
}

func TestRouterDecodesPayloadAndRunsMiddlewares(t *testing.T) {
	router := New()
	var (
		mu    sync.Mutex
		order []string
	)
	record := func(s string) {
		mu.Lock()
		order = append(order, s)
		mu.Unlock()
	}
	router.Use(func(next HandlerFunc[any]) HandlerFunc[any] {
		return func(ctx context.Context, conn *Conn, payload any) error {
			record("outer:" + GetMessageTypeFromCtx(ctx))
			return next(ctx, conn, payload)
		}
	}, func(next HandlerFunc[any]) HandlerFunc[any] {
		return func(ctx context.Context, conn *Conn, payload any) error {
			record("inner")
			return next(ctx, conn, payload)
		}
	})
	Handle(router, "ECHO", func(_ context.Context, conn *Conn, in echoInput) error {
		return conn.WriteMessage("ECHOED", in)
	})

	client := serve(t, router)
	require.NoError(t, client.WriteMessage("ECHO", echoInput{Text: "hi"}))

	msg := readWithTimeout(t, client)
	assert.Equal(t, "ECHOED", msg.Type)
	assert.JSONEq(t, `{"text":"hi"}`, string(msg.Payload))
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"outer:ECHO", "inner"}, order)
}

func TestRouterReportsErrors(t *testing.T) {
	router := New()
	router.OnError(func(_ context.Context, conn *Conn, err error) {
		conn.WriteMessage("ERROR", err.Error())
	})
	Handle(router, "ECHO", func(context.Context, *Conn, echoInput) error {
		return nil
	})

	client := serve(t, router)

	require.NoError(t, client.WriteMessage("NOPE", nil))
	msg := readWithTimeout(t, client)
	assert.Equal(t, "ERROR", msg.Type)
	assert.Contains(t, string(msg.Payload), ErrUnknownMessageType.Error())

	require.NoError(t, client.WriteJSON(map[string]any{"type": "ECHO", "payload": "not an object"}))
	msg = readWithTimeout(t, client)
	assert.Contains(t, string(msg.Payload), ErrInvalidPayload.Error())
}
