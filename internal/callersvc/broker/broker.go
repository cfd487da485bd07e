package broker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/avvvet/tambola-services/internal/comm"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

const (
	maxInFlight   = 4
	speechTimeout = 20 * time.Second
)

type Conn interface {
	Subscribe(subject string, cb nats.MsgHandler) (*nats.Subscription, error)
}

// Speaker turns announcement text into audio.
type Speaker interface {
	Enabled() bool
	Speech(ctx context.Context, text string) ([]byte, error)
}

// Broker consumes game announcements and pre-renders them so clients
// asking for the same line are served from the cache.
type Broker struct {
	Conn    Conn
	speaker Speaker
	slots   chan struct{}
	done    func(comm.Announcement, error) // test hook
}

func NewBroker(conn Conn, speaker Speaker) *Broker {
	return &Broker{
		Conn:    conn,
		speaker: speaker,
		slots:   make(chan struct{}, maxInFlight),
	}
}

func (b *Broker) Subscribe(topic string) (*nats.Subscription, error) {
	sub, err := b.Conn.Subscribe(topic, func(msg *nats.Msg) {
		b.Handle(msg.Data)
	})
	if err != nil {
		return nil, err
	}
	log.Infof("Subscribed to topic: %s", topic)
	return sub, nil
}

// Handle never blocks the subscription: when every slot is busy the
// announcement is dropped.
func (b *Broker) Handle(data []byte) {
	var a comm.Announcement
	if err := json.Unmarshal(data, &a); err != nil {
		log.Errorf("caller: invalid announcement: %v", err)
		return
	}
	if a.Text == "" || !b.speaker.Enabled() {
		return
	}

	select {
	case b.slots <- struct{}{}:
	default:
		log.Debugf("caller: busy, dropped %q for game %s", a.Text, a.GameId)
		return
	}

	go func() {
		defer func() { <-b.slots }()
		ctx, cancel := context.WithTimeout(context.Background(), speechTimeout)
		defer cancel()

		_, err := b.speaker.Speech(ctx, a.Text)
		if err != nil {
			log.Warnf("caller: game %s: %v", a.GameId, err)
		}
		if b.done != nil {
			b.done(a, err)
		}
	}()
}
