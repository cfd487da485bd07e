package ws

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/avvvet/tambola-services/internal/comm"
	"github.com/avvvet/tambola-services/internal/socketsvc/broker"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

var (
	errTooManyRequests = errors.New("too many requests, slow down")
	errUnavailable     = errors.New("game service unavailable, try again")
)

// requests a browser may send; disconnect is raised by the socket service.
var clientRequests = map[string]bool{
	comm.CreateGame:     true,
	comm.GetGameDetails: true,
	comm.JoinGame:       true,
	comm.GetGameInfo:    true,
	comm.StartGame:      true,
	comm.CancelGame:     true,
	comm.Claim:          true,
	comm.RequestPause:   true,
	comm.PauseGame:      true,
	comm.ResumeGame:     true,
}

type Config struct {
	RequestTimeout time.Duration
	MsgRate        float64 // requests per second per socket
	MsgBurst       int
}

type Ws struct {
	connMap sync.Map // to keep track of socket connection with socketId
	Broker  *broker.Broker
	cfg     Config
}

func NewWs(cfg Config) *Ws {
	return &Ws{cfg: cfg}
}

// NewLimiter returns the per-socket request limiter.
func (s *Ws) NewLimiter() *rate.Limiter {
	if s.cfg.MsgRate <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(s.cfg.MsgRate), s.cfg.MsgBurst)
}

// handle socket message from web clients
func (s *Ws) SocketMessage(socketId string, message *comm.WSMessage) {
	if !clientRequests[message.Type] {
		log.Warnf("unknown event received: %s", message.Type)
		s.SendError(socketId, "unknown request "+message.Type)
		return
	}

	client, ok := s.GetConnection(socketId)
	if !ok {
		return
	}
	if !client.Allow() {
		s.sendAck(socketId, message, comm.Fail(errTooManyRequests))
		return
	}

	// Update message with socket ID
	message.SocketId = socketId
	message.Targets = nil

	// Marshal message for NATS
	bytes, err := json.Marshal(message)
	if err != nil {
		log.Errorf("Failed to marshal WSMessage for NATS: %v", err)
		return
	}

	reply, err := s.Broker.Request(comm.SubjectRequests, bytes, s.cfg.RequestTimeout)
	if err != nil {
		log.Errorf("%s request from %s failed: %v", message.Type, socketId, err)
		s.sendAck(socketId, message, comm.Fail(errUnavailable))
		return
	}
	s.Deliver(socketId, reply)
}

func (s *Ws) sendAck(socketId string, req *comm.WSMessage, ack comm.Ack) {
	data, err := json.Marshal(ack)
	if err != nil {
		log.Errorf("Error %s", err)
		return
	}
	s.send(socketId, &comm.WSMessage{Type: comm.ResponseType(req.Type), Data: data, Ref: req.Ref})
}

// SendError sends a free-standing error event to the socket.
func (s *Ws) SendError(socketId, message string) {
	data, err := json.Marshal(comm.ErrorEvent{Error: message})
	if err != nil {
		log.Errorf("Error %s", err)
		return
	}
	s.send(socketId, &comm.WSMessage{Type: comm.EventError, Data: data})
}

// Welcome tells a new socket its id.
func (s *Ws) Welcome(socketId string) {
	data, err := json.Marshal(comm.Connected{SocketId: socketId})
	if err != nil {
		log.Errorf("Error %s", err)
		return
	}
	s.send(socketId, &comm.WSMessage{Type: comm.EventConnected, Data: data})
}

func (s *Ws) send(socketId string, msg *comm.WSMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		log.Errorf("Error %s", err)
		return
	}
	s.Deliver(socketId, payload)
}

// Deliver queues payload on the socket. It reports false if the socket is
// not connected here.
func (s *Ws) Deliver(socketId string, payload []byte) bool {
	client, ok := s.GetConnection(socketId)
	if !ok {
		return false
	}
	return client.Send(payload)
}

// HandleDisconnect forgets the socket and tells the game service.
func (s *Ws) HandleDisconnect(socketId string) {
	if c, ok := s.connMap.LoadAndDelete(socketId); ok {
		c.(*Client).Close()
	}

	bytes, err := json.Marshal(&comm.WSMessage{Type: comm.Disconnect, SocketId: socketId})
	if err != nil {
		log.Errorf("Error %s", err)
		return
	}
	if err := s.Broker.Publish(comm.SubjectRequests, bytes); err != nil {
		log.Errorf("unable to publish disconnect for %s: %v", socketId, err)
	}
}

func (s *Ws) StoreConnection(c *Client) {
	s.connMap.Store(c.ID, c)
}

func (s *Ws) GetConnection(socketId string) (*Client, bool) {
	conn, ok := s.connMap.Load(socketId)
	if !ok {
		return nil, false
	}
	return conn.(*Client), true
}

// Count is the number of sockets connected to this instance.
func (s *Ws) Count() int {
	count := 0
	s.connMap.Range(func(key, value any) bool {
		count++
		return true
	})
	return count
}
