package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/avvvet/tambola-services/internal/comm"
	"github.com/avvvet/tambola-services/internal/socketsvc/broker"
	"github.com/avvvet/tambola-services/internal/socketsvc/ws"
	"github.com/go-chi/chi"
	"github.com/gorilla/websocket"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gameStub answers every request with an ok ack and records disconnects.
type gameStub struct {
	mu          sync.Mutex
	disconnects []string
}

func (g *gameStub) Publish(_ string, data []byte) error {
	var msg comm.WSMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if msg.Type == comm.Disconnect {
		g.disconnects = append(g.disconnects, msg.SocketId)
	}
	return nil
}

func (g *gameStub) Request(_ string, data []byte, _ time.Duration) (*nats.Msg, error) {
	var req comm.WSMessage
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}
	ack, _ := json.Marshal(comm.OK())
	out, _ := json.Marshal(comm.WSMessage{Type: comm.ResponseType(req.Type), Data: ack, Ref: req.Ref, SocketId: req.SocketId})
	return &nats.Msg{Data: out}, nil
}

func (g *gameStub) Subscribe(string, nats.MsgHandler) (*nats.Subscription, error) {
	return &nats.Subscription{}, nil
}

func (g *gameStub) disconnected() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.disconnects...)
}

func newServer(t *testing.T) (*httptest.Server, *ws.Ws, *gameStub) {
	t.Helper()
	stub := &gameStub{}
	s := ws.NewWs(ws.Config{RequestTimeout: time.Second, MsgRate: 100, MsgBurst: 100})
	s.Broker = broker.NewBroker(stub, s.Deliver)

	r := chi.NewRouter()
	h := NewHandler(s)
	r.Get("/v1/ws", h.HandleWebSocket)
	r.Get("/v1/health", h.HealthHandler)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, s, stub
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func read(t *testing.T, conn *websocket.Conn) comm.WSMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg comm.WSMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestWebSocket_RoundTrip(t *testing.T) {
	srv, s, stub := newServer(t)
	conn := dial(t, srv)

	hello := read(t, conn)
	require.Equal(t, comm.EventConnected, hello.Type)
	var connected comm.Connected
	require.NoError(t, json.Unmarshal(hello.Data, &connected))
	require.NotEmpty(t, connected.SocketId)

	require.NoError(t, conn.WriteJSON(comm.WSMessage{Type: comm.GetGameDetails, Ref: "42", Data: json.RawMessage(`{"gameId":"ABC"}`)}))
	ack := read(t, conn)
	assert.Equal(t, "get_game_details-response", ack.Type)
	assert.Equal(t, "42", ack.Ref)

	event, err := json.Marshal(comm.WSMessage{Type: comm.EventNumberDrawn, Data: json.RawMessage(`{"number":7}`), Targets: []string{connected.SocketId}})
	require.NoError(t, err)
	s.Broker.Relay(event)
	drawn := read(t, conn)
	assert.Equal(t, comm.EventNumberDrawn, drawn.Type)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("garbage")))
	assert.Equal(t, comm.EventError, read(t, conn).Type)

	conn.Close()
	require.Eventually(t, func() bool {
		return len(stub.disconnected()) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, connected.SocketId, stub.disconnected()[0])
	assert.Zero(t, s.Count())
}

func TestHealthHandler(t *testing.T) {
	srv, _, _ := newServer(t)

	res, err := http.Get(srv.URL + "/v1/health")
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusOK, res.StatusCode)
	var body Response
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	assert.Contains(t, body.Message, "socket service")
}
