package broker

import (
	"encoding/json"
	"errors"

	"github.com/avvvet/tambola-services/internal/comm"
	"github.com/avvvet/tambola-services/internal/gamesvc/game"
	"github.com/avvvet/tambola-services/internal/monitoring"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

var errBadRequest = errors.New("invalid request")

// Conn is the part of *nats.Conn the broker uses.
type Conn interface {
	Publish(subject string, data []byte) error
	Subscribe(subject string, cb nats.MsgHandler) (*nats.Subscription, error)
}

type Broker struct {
	Conn    Conn
	Manager *game.Manager
}

// NewBroker returns a broker without a manager; set Manager before
// subscribing. The manager needs the broker as its notifier.
func NewBroker(conn Conn) *Broker {
	return &Broker{Conn: conn}
}

// handles message coming from socket service
func (b *Broker) handleMessage(msgNat *nats.Msg) {
	b.Dispatch(msgNat.Data, msgNat.Reply)
}

// Dispatch runs one client request and sends the acknowledgement to reply,
// or to the caller's socket as an event when there is no reply subject.
func (b *Broker) Dispatch(data []byte, reply string) {
	msg := &comm.WSMessage{}
	if err := json.Unmarshal(data, msg); err != nil {
		log.Errorf("Error nats message %s", err)
		return
	}

	res := b.handle(msg)
	if res == nil {
		return
	}

	status := comm.StatusOK
	if ack, ok := res.(comm.Ack); ok {
		status = ack.Status
	}
	monitoring.TrackRequest(msg.Type, status)

	payload, err := json.Marshal(res)
	if err != nil {
		log.Errorf("unable to marshal %s ack for %s: %s", msg.Type, msg.SocketId, err)
		return
	}
	ack := &comm.WSMessage{
		Type:     comm.ResponseType(msg.Type),
		Data:     payload,
		SocketId: msg.SocketId,
		Ref:      msg.Ref,
	}

	if reply == "" {
		ack.Targets = []string{msg.SocketId}
		b.publishMessage(comm.SubjectEvents, ack)
		return
	}
	b.publishMessage(reply, ack)
}

func decode(msg *comm.WSMessage, v any) error {
	if len(msg.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(msg.Data, v); err != nil {
		log.Warnf("bad %s payload from %s: %s", msg.Type, msg.SocketId, err)
		return errBadRequest
	}
	return nil
}

// fail hides internal error detail from clients.
func fail(err error) comm.Ack {
	if errors.Is(err, game.ErrInternal) {
		return comm.Fail(game.ErrInternal)
	}
	return comm.Fail(err)
}

func ack(err error) comm.Ack {
	if err != nil {
		return fail(err)
	}
	return comm.OK()
}

func (b *Broker) handle(msg *comm.WSMessage) any {
	m := b.Manager

	switch msg.Type {
	case comm.CreateGame:
		var req comm.CreateGameRequest
		if err := decode(msg, &req); err != nil {
			return fail(err)
		}
		res, err := m.CreateGame(msg.SocketId, req)
		if err != nil {
			return fail(err)
		}
		return res

	case comm.GetGameDetails:
		var req comm.GameRef
		if err := decode(msg, &req); err != nil {
			return fail(err)
		}
		res, err := m.GameDetails(req.GameId)
		if err != nil {
			return fail(err)
		}
		return res

	case comm.JoinGame:
		var req comm.JoinGameRequest
		if err := decode(msg, &req); err != nil {
			return fail(err)
		}
		res, err := m.JoinGame(msg.SocketId, req)
		if err != nil {
			return fail(err)
		}
		return res

	case comm.Claim:
		var req comm.ClaimRequest
		if err := decode(msg, &req); err != nil {
			return fail(err)
		}
		res, err := m.Claim(msg.SocketId, req)
		if err != nil {
			return fail(err)
		}
		return res

	case comm.PauseGame:
		var req comm.PauseRequest
		if err := decode(msg, &req); err != nil {
			return fail(err)
		}
		return ack(m.PauseGame(msg.SocketId, req))

	case comm.GetGameInfo, comm.StartGame, comm.CancelGame, comm.RequestPause, comm.ResumeGame:
		var req comm.GameRef
		if err := decode(msg, &req); err != nil {
			return fail(err)
		}
		return ack(b.byRef(msg.Type, msg.SocketId, req.GameId))

	case comm.Disconnect:
		m.Disconnect(msg.SocketId)
		return nil
	}

	log.Warnf("unknown request type %q from %s", msg.Type, msg.SocketId)
	return comm.Fail(errBadRequest)
}

func (b *Broker) byRef(kind, socketID, gameID string) error {
	m := b.Manager
	switch kind {
	case comm.GetGameInfo:
		return m.GameInfo(socketID, gameID)
	case comm.StartGame:
		return m.StartGame(socketID, gameID)
	case comm.CancelGame:
		return m.CancelGame(socketID, gameID)
	case comm.RequestPause:
		return m.RequestPause(socketID, gameID)
	}
	return m.ResumeGame(socketID, gameID)
}

// Notify publishes a room event for the socket service to fan out.
func (b *Broker) Notify(targets []string, event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Errorf("unable to marshal %s event: %s", event, err)
		return
	}
	b.publishMessage(comm.SubjectEvents, &comm.WSMessage{
		Type:    event,
		Data:    data,
		Targets: targets,
	})
}

// Announce hands a line of speech to the caller service.
func (b *Broker) Announce(gameID, text string) {
	payload, err := json.Marshal(comm.Announcement{GameId: gameID, Text: text})
	if err != nil {
		log.Errorf("Error %s", err)
		return
	}
	b.Publish(comm.SubjectAnnounce, payload)
}

func (b *Broker) publishMessage(subject string, msg *comm.WSMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		log.Errorf("Error %s", err)
		return
	}
	b.Publish(subject, payload)
}

// consume message from socket service
func (b *Broker) SubscribSocketService(topic string) (*nats.Subscription, error) {
	sub, err := b.Conn.Subscribe(topic, b.handleMessage)
	if err != nil {
		return nil, err
	}

	return sub, nil
}

func (b *Broker) Publish(topic string, payload []byte) error {
	err := b.Conn.Publish(topic, payload)
	if err != nil {
		log.Errorf("Error publishing to topic %s: %s", topic, err)
		return err
	}

	return nil
}
