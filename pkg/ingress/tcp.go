package ingress

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/cfoust/uno/pkg/protocol"

	"github.com/rs/zerolog/log"
)

const WRITE_TIMEOUT = 5 * time.Second

type TCPClient struct {
	*client
	conn net.Conn
}

func NewTCPClient(ctx context.Context, conn net.Conn) *TCPClient {
	return &TCPClient{
		// The only TCP client is the desktop one
		client: newClient(ctx, conn.RemoteAddr().String(), "desktop"),
		conn:   conn,
	}
}

func (c *TCPClient) Type() ClientType {
	return ClientTypeTCP
}

func (c *TCPClient) read() {
	reader := protocol.NewReader(c.conn)
	for {
		message, err := reader.ReadClient()
		if errors.Is(err, io.EOF) {
			c.session.End(ErrClientLeft)
			return
		}
		if err != nil {
			c.session.End(err)
			return
		}

		if !c.receive(message) {
			return
		}
	}
}

// Poll moves messages between the socket and the client's queues until the
// session ends, then closes the socket.
func (c *TCPClient) Poll() {
	go c.read()

	c.write(func(packet protocol.Packet) error {
		c.conn.SetWriteDeadline(time.Now().Add(WRITE_TIMEOUT))
		_, err := c.conn.Write(packet)
		return err
	})

	<-c.session.Done()
	c.conn.Close()
}

type TCPIngress struct {
	handler  Handler
	listener net.Listener
}

func NewTCPIngress(handler Handler) *TCPIngress {
	return &TCPIngress{
		handler: handler,
	}
}

func (server *TCPIngress) HandleConn(ctx context.Context, conn net.Conn) {
	client := NewTCPClient(ctx, conn)
	logger := log.With().Str("host", client.Host()).Logger()
	logger.Info().Msg("client connected")

	go client.Poll()
	server.handler(client.Session().Ctx(), client)
	client.Disconnect(nil)

	<-client.Session().Done()
	logger.Info().AnErr("reason", client.Session().Err()).Msg("client disconnected")
}

func (server *TCPIngress) Listen(host string, port int) error {
	listener, err := net.Listen("tcp", fmt.Sprintf("%s:%d", host, port))
	if err != nil {
		return err
	}

	server.listener = listener
	log.Info().Msgf("listening on tcp://%v", listener.Addr())
	return nil
}

func (server *TCPIngress) Addr() net.Addr {
	return server.listener.Addr()
}

// Serve accepts connections until the context is canceled.
func (server *TCPIngress) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		server.listener.Close()
	}()

	for {
		conn, err := server.listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		go server.HandleConn(ctx, conn)
	}
}
