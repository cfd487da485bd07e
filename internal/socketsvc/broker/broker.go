package broker

import (
	"encoding/json"
	"time"

	"github.com/avvvet/tambola-services/internal/comm"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

// Conn is the part of *nats.Conn the socket service uses.
type Conn interface {
	Publish(subject string, data []byte) error
	Request(subject string, data []byte, timeout time.Duration) (*nats.Msg, error)
	Subscribe(subject string, cb nats.MsgHandler) (*nats.Subscription, error)
}

type Broker struct {
	Conn    Conn
	Deliver func(socketId string, payload []byte) bool
}

func NewBroker(conn Conn, fncDeliver func(string, []byte) bool) *Broker {
	return &Broker{
		Conn:    conn,
		Deliver: fncDeliver,
	}
}

// consume message from game service
func (b *Broker) Subscribe(topic string) (*nats.Subscription, error) {
	sub, err := b.Conn.Subscribe(topic, b.handleMessages)
	if err != nil {
		return nil, err
	}

	return sub, nil
}

// publish message to game service
func (b *Broker) Publish(topic string, payload []byte) error {
	err := b.Conn.Publish(topic, payload)
	if err != nil {
		log.Errorf("Error publishing to topic %s: %s", topic, err)
		return err
	}

	return nil
}

// Request publishes payload and waits for the game service's reply.
func (b *Broker) Request(topic string, payload []byte, timeout time.Duration) ([]byte, error) {
	msg, err := b.Conn.Request(topic, payload, timeout)
	if err != nil {
		return nil, err
	}
	return msg.Data, nil
}

// handleMessages receive message from game service
func (b *Broker) handleMessages(msgNats *nats.Msg) {
	b.Relay(msgNats.Data)
}

// Relay sends an event to each socket it targets. Targets are stripped
// before the envelope reaches the browser.
func (b *Broker) Relay(data []byte) {
	message := &comm.WSMessage{}
	if err := json.Unmarshal(data, message); err != nil {
		log.Errorf("Error %s", err)
		return
	}

	targets := message.Targets
	if len(targets) == 0 {
		log.Warnf("event %s has no targets", message.Type)
		return
	}
	message.Targets = nil
	message.SocketId = ""

	payload, err := json.Marshal(message)
	if err != nil {
		log.Errorf("Error %s", err)
		return
	}

	for _, socketId := range targets {
		if !b.Deliver(socketId, payload) {
			log.Debugf("event %s dropped for socket %s", message.Type, socketId)
		}
	}
}
