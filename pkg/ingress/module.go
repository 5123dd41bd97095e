package ingress

import (
	"context"
	"errors"
	"sync"

	"github.com/cfoust/uno/pkg/protocol"
	"github.com/cfoust/uno/pkg/utils"
)

type ClientType uint8

const (
	ClientTypeTCP ClientType = iota
	ClientTypeWS
)

func (t ClientType) String() string {
	switch t {
	case ClientTypeTCP:
		return "tcp"
	case ClientTypeWS:
		return "ws"
	default:
		return "unknown"
	}
}

const (
	CLIENT_MESSAGE_LIMIT int = 64
)

var (
	ErrClientLeft    = errors.New("client closed the connection")
	ErrClientTooSlow = errors.New("client could not keep up with messages")
	ErrServerClosed  = errors.New("server closed the connection")
)

type Connection interface {
	// Lasts for the duration of the client's connection to its ingress.
	Session() *utils.Session
	Host() string
	Type() ClientType
	DeviceType() string
	// Messages going to the client. Never blocks.
	Send(message protocol.Message)
	// Messages going to the server
	ReceiveMessages() <-chan protocol.Message
	// Close the connection once everything already sent has been written.
	Disconnect(reason error)
}

// Handler runs for as long as a client is connected.
type Handler func(ctx context.Context, connection Connection)

var _ Connection = (*TCPClient)(nil)
var _ Connection = (*WSClient)(nil)

// client is the transport-independent half of a connection: a queue in
// each direction and the session.
type client struct {
	session  utils.Session
	host     string
	device   string
	toClient chan protocol.Message
	toServer chan protocol.Message

	closing chan struct{}
	reason  error
	once    sync.Once
}

func newClient(ctx context.Context, host string, device string) *client {
	return &client{
		session:  utils.NewSession(ctx),
		host:     host,
		device:   device,
		toClient: make(chan protocol.Message, CLIENT_MESSAGE_LIMIT),
		toServer: make(chan protocol.Message, CLIENT_MESSAGE_LIMIT),
		closing:  make(chan struct{}),
	}
}

func (c *client) Session() *utils.Session {
	return &c.session
}

func (c *client) Host() string {
	return c.host
}

func (c *client) DeviceType() string {
	return c.device
}

func (c *client) Send(message protocol.Message) {
	select {
	case <-c.closing:
		return
	default:
	}

	select {
	case c.toClient <- message:
	default:
		c.session.End(ErrClientTooSlow)
	}
}

func (c *client) ReceiveMessages() <-chan protocol.Message {
	return c.toServer
}

func (c *client) Disconnect(reason error) {
	c.once.Do(func() {
		c.reason = reason
		close(c.closing)
	})
}

// receive hands a message to the server, giving up if the session ends
// first.
func (c *client) receive(message protocol.Message) bool {
	select {
	case c.toServer <- message:
		return true
	case <-c.session.Done():
		return false
	}
}

// write drains the outgoing queue until the session ends. After
// Disconnect, whatever is still queued is written before the session is
// ended.
func (c *client) write(send func(protocol.Packet) error) {
	for {
		select {
		case message := <-c.toClient:
			err := send(protocol.Encode(message))
			if err != nil {
				c.session.End(err)
				return
			}
		case <-c.closing:
			for {
				select {
				case message := <-c.toClient:
					if err := send(protocol.Encode(message)); err != nil {
						c.session.End(err)
						return
					}
				default:
					reason := c.reason
					if reason == nil {
						reason = ErrServerClosed
					}
					c.session.End(reason)
					return
				}
			}
		case <-c.session.Done():
			return
		}
	}
}
