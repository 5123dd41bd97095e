package ingress

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/cfoust/uno/pkg/protocol"

	"github.com/mileusna/useragent"
	"github.com/rs/zerolog/log"
	"nhooyr.io/websocket"
)

// WSClient carries exactly one protocol message in every binary WebSocket
// message.
type WSClient struct {
	*client
	conn *websocket.Conn
}

func (c *WSClient) Type() ClientType {
	return ClientTypeWS
}

func DeviceType(agent string) string {
	parsed := useragent.Parse(agent)
	switch {
	case parsed.Bot:
		return "bot"
	case parsed.Tablet:
		return "tablet"
	case parsed.Mobile:
		return "mobile"
	default:
		return "desktop"
	}
}

func WriteTimeout(ctx context.Context, timeout time.Duration, c *websocket.Conn, msg []byte) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.Write(ctx, websocket.MessageBinary, msg)
}

func (c *WSClient) read() {
	ctx := c.session.Ctx()
	for {
		typ, data, err := c.conn.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				err = ErrClientLeft
			}
			c.session.End(err)
			return
		}

		if typ != websocket.MessageBinary {
			continue
		}

		message, err := protocol.DecodeClient(data)
		if err != nil {
			c.session.End(err)
			return
		}

		if !c.receive(message) {
			return
		}
	}
}

func (c *WSClient) Poll() {
	go c.read()

	c.write(func(packet protocol.Packet) error {
		return WriteTimeout(c.session.Ctx(), WRITE_TIMEOUT, c.conn, packet)
	})
}

type WSIngress struct {
	handler    Handler
	httpServer *http.Server
}

func NewWSIngress(handler Handler) *WSIngress {
	return &WSIngress{
		handler: handler,
	}
}

func (server *WSIngress) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})

	if err != nil {
		log.Error().Err(err).Msg("error accepting client connection")
		return
	}

	// Behind a proxy, check this first
	hostname := r.RemoteAddr

	original, ok := r.Header["X-Forwarded-For"]
	if ok {
		hostname = original[0]
	}

	client := &WSClient{
		client: newClient(r.Context(), hostname, DeviceType(r.UserAgent())),
		conn:   c,
	}

	logger := log.With().
		Str("host", hostname).
		Str("device", client.DeviceType()).
		Logger()
	logger.Info().Msg("client connected")

	go server.handler(client.Session().Ctx(), client)
	client.Poll()

	reason := client.Session().Err()
	if errors.Is(reason, ErrClientLeft) || errors.Is(reason, ErrServerClosed) {
		c.Close(websocket.StatusNormalClosure, "")
	} else {
		c.Close(websocket.StatusPolicyViolation, "disconnected")
	}

	logger.Info().AnErr("reason", reason).Msg("client disconnected")
}

func (server *WSIngress) Serve(ctx context.Context, host string, port int) error {
	listen, err := net.Listen("tcp", fmt.Sprintf("%s:%d", host, port))
	if err != nil {
		log.Error().Err(err).Msg("failed to bind WebSocket port")
		return err
	}

	log.Info().Msgf("listening on http://%v", listen.Addr())

	server.httpServer = &http.Server{
		Handler: server,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	err = server.httpServer.Serve(listen)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (server *WSIngress) Shutdown(ctx context.Context) {
	if server.httpServer == nil {
		return
	}
	server.httpServer.Shutdown(ctx)
}
