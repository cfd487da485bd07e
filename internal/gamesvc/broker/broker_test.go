package broker

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/avvvet/tambola-services/internal/comm"
	"github.com/avvvet/tambola-services/internal/gamesvc/game"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	subject string
	data    []byte
}

type fakeConn struct {
	mu  sync.Mutex
	out []published
}

func (c *fakeConn) Publish(subject string, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.out = append(c.out, published{subject, data})
	return nil
}

func (c *fakeConn) Subscribe(string, nats.MsgHandler) (*nats.Subscription, error) {
	return &nats.Subscription{}, nil
}

func (c *fakeConn) on(subject string) []comm.WSMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	var list []comm.WSMessage
	for _, p := range c.out {
		if p.subject != subject {
			continue
		}
		var msg comm.WSMessage
		if err := json.Unmarshal(p.data, &msg); err == nil {
			list = append(list, msg)
		}
	}
	return list
}

func newTestBroker(t *testing.T) (*Broker, *fakeConn) {
	t.Helper()
	conn := &fakeConn{}
	b := NewBroker(conn)
	s := game.DefaultSettings()
	s.StartDelay = time.Hour
	b.Manager = game.NewManager(b, s, game.WithAnnouncer(b))
	t.Cleanup(b.Manager.Close)
	return b, conn
}

func request(t *testing.T, kind, socket, ref string, data any) []byte {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	msg, err := json.Marshal(comm.WSMessage{Type: kind, Data: raw, SocketId: socket, Ref: ref})
	require.NoError(t, err)
	return msg
}

func lastAck(t *testing.T, conn *fakeConn, subject string, v any) comm.WSMessage {
	t.Helper()
	acks := conn.on(subject)
	require.NotEmpty(t, acks)
	msg := acks[len(acks)-1]
	require.NoError(t, json.Unmarshal(msg.Data, v))
	return msg
}

func TestDispatch_CreateGameRepliesWithRef(t *testing.T) {
	b, conn := newTestBroker(t)

	b.Dispatch(request(t, comm.CreateGame, "sock-1", "r1", comm.CreateGameRequest{HostName: "Meera", NumTickets: 2}), "_INBOX.1")

	var res comm.CreateGameResponse
	msg := lastAck(t, conn, "_INBOX.1", &res)
	assert.Equal(t, "create_game-response", msg.Type)
	assert.Equal(t, "r1", msg.Ref)
	assert.Equal(t, "sock-1", msg.SocketId)
	assert.Equal(t, comm.StatusOK, res.Status)
	assert.Len(t, res.GameId, 3)
	assert.Len(t, res.Tickets, 2)

	events := conn.on(comm.SubjectEvents)
	require.NotEmpty(t, events)
	assert.Equal(t, comm.EventPrizesUpdated, events[0].Type)
	assert.Equal(t, []string{"sock-1"}, events[0].Targets)
}

func TestDispatch_ErrorsGoToTheCallerOnly(t *testing.T) {
	b, conn := newTestBroker(t)

	b.Dispatch(request(t, comm.JoinGame, "sock-2", "r2", comm.JoinGameRequest{GameId: "QQQ", PlayerName: "Ravi"}), "_INBOX.2")

	var ack comm.Ack
	lastAck(t, conn, "_INBOX.2", &ack)
	assert.Equal(t, comm.StatusError, ack.Status)
	assert.Equal(t, "invalid game ID", ack.Message)
	assert.Empty(t, conn.on(comm.SubjectEvents))
}

func TestDispatch_StartRequiresHost(t *testing.T) {
	b, conn := newTestBroker(t)
	b.Dispatch(request(t, comm.CreateGame, "host", "", comm.CreateGameRequest{HostName: "Meera"}), "_INBOX.h")
	var created comm.CreateGameResponse
	lastAck(t, conn, "_INBOX.h", &created)

	b.Dispatch(request(t, comm.JoinGame, "guest", "", comm.JoinGameRequest{GameId: created.GameId, PlayerName: "Ravi"}), "_INBOX.g")
	b.Dispatch(request(t, comm.StartGame, "guest", "", comm.GameRef{GameId: created.GameId}), "_INBOX.g")

	var ack comm.Ack
	lastAck(t, conn, "_INBOX.g", &ack)
	assert.Equal(t, game.ErrNotHost.Error(), ack.Message)

	b.Dispatch(request(t, comm.StartGame, "host", "", comm.GameRef{GameId: created.GameId}), "_INBOX.h")
	lastAck(t, conn, "_INBOX.h", &ack)
	assert.Equal(t, comm.StatusOK, ack.Status)

	conn.mu.Lock()
	var found bool
	for _, p := range conn.out {
		if p.subject == comm.SubjectAnnounce {
			var a comm.Announcement
			require.NoError(t, json.Unmarshal(p.data, &a))
			assert.Equal(t, created.GameId, a.GameId)
			found = true
		}
	}
	conn.mu.Unlock()
	assert.True(t, found)
}

func TestDispatch_WithoutReplyAcksAsEvent(t *testing.T) {
	b, conn := newTestBroker(t)

	b.Dispatch(request(t, comm.GetGameDetails, "sock-3", "r3", comm.GameRef{GameId: "abc"}), "")

	events := conn.on(comm.SubjectEvents)
	require.Len(t, events, 1)
	assert.Equal(t, comm.ResponseType(comm.GetGameDetails), events[0].Type)
	assert.Equal(t, []string{"sock-3"}, events[0].Targets)
	assert.Equal(t, "r3", events[0].Ref)
}

func TestDispatch_UnknownAndMalformed(t *testing.T) {
	b, conn := newTestBroker(t)

	b.Dispatch(request(t, "draw_number", "sock-4", "", nil), "_INBOX.4")
	var ack comm.Ack
	lastAck(t, conn, "_INBOX.4", &ack)
	assert.Equal(t, "invalid request", ack.Message)

	bad, err := json.Marshal(comm.WSMessage{Type: comm.JoinGame, Data: json.RawMessage(`"nope"`), SocketId: "sock-4"})
	require.NoError(t, err)
	b.Dispatch(bad, "_INBOX.5")
	lastAck(t, conn, "_INBOX.5", &ack)
	assert.Equal(t, comm.StatusError, ack.Status)

	b.Dispatch([]byte("{not json"), "_INBOX.6")
	assert.Empty(t, conn.on("_INBOX.6"))
}

func TestDispatch_DisconnectHasNoAck(t *testing.T) {
	b, conn := newTestBroker(t)
	b.Dispatch(request(t, comm.CreateGame, "host", "", comm.CreateGameRequest{HostName: "Meera"}), "_INBOX.h")

	b.Dispatch(request(t, comm.Disconnect, "host", "", nil), "_INBOX.d")

	assert.Empty(t, conn.on("_INBOX.d"))
}
