package ingress

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cfoust/uno/pkg/protocol"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
)

var login = protocol.Login{
	Header: protocol.Header{Room: "den", Player: "alice"},
}

func tcpPair(t *testing.T) (*TCPClient, net.Conn) {
	server, remote := net.Pipe()
	client := NewTCPClient(context.Background(), server)
	go client.Poll()
	t.Cleanup(func() {
		remote.Close()
	})
	return client, remote
}

func receive(t *testing.T, connection Connection) protocol.Message {
	select {
	case message := <-connection.ReceiveMessages():
		return message
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
	}
	return nil
}

func TestTCPClient(t *testing.T) {
	client, remote := tcpPair(t)
	assert.Equal(t, ClientTypeTCP, client.Type())

	go remote.Write(protocol.Encode(login))
	assert.Equal(t, login, receive(t, client))

	client.Send(protocol.LoginSuccess{Admin: true})
	message, err := protocol.NewReader(remote).ReadServer()
	require.NoError(t, err)
	assert.Equal(t, protocol.LoginSuccess{Admin: true}, message)

	remote.Close()
	<-client.Session().Done()
	assert.ErrorIs(t, client.Session().Err(), ErrClientLeft)
}

func TestTCPDisconnectFlushes(t *testing.T) {
	client, remote := tcpPair(t)

	// Nothing reads until both are queued
	client.Send(protocol.RoomFull{})
	client.Disconnect(nil)

	reader := protocol.NewReader(remote)
	message, err := reader.ReadServer()
	require.NoError(t, err)
	assert.Equal(t, protocol.RoomFull{}, message)

	_, err = reader.ReadServer()
	assert.True(t, errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe))

	<-client.Session().Done()
	assert.ErrorIs(t, client.Session().Err(), ErrServerClosed)

	// Sending after the fact is harmless
	client.Send(protocol.StartGame{})
}

func TestTCPMalformed(t *testing.T) {
	client, remote := tcpPair(t)

	packet := protocol.Packet{}
	packet.PutUint(99)
	go remote.Write(packet)

	<-client.Session().Done()
	assert.ErrorIs(t, client.Session().Err(), protocol.ErrMalformedPacket)
}

func TestTooSlow(t *testing.T) {
	c := newClient(context.Background(), "test", "desktop")
	for i := 0; i <= CLIENT_MESSAGE_LIMIT; i++ {
		c.Send(protocol.StartGame{})
	}
	assert.ErrorIs(t, c.Session().Err(), ErrClientTooSlow)
}

func TestDeviceType(t *testing.T) {
	assert.Equal(t, "desktop", DeviceType("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/108.0.0.0 Safari/537.36"))
	assert.Equal(t, "mobile", DeviceType("Mozilla/5.0 (iPhone; CPU iPhone OS 16_1 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.1 Mobile/15E148 Safari/604.1"))
	assert.Equal(t, "bot", DeviceType("Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)"))
}

func TestWSIngress(t *testing.T) {
	reasons := make(chan error, 1)
	ingress := NewWSIngress(func(ctx context.Context, connection Connection) {
		select {
		case message := <-connection.ReceiveMessages():
			if message == login {
				connection.Send(protocol.LoginSuccess{Admin: true})
			}
		case <-ctx.Done():
		}

		<-ctx.Done()
		reasons <- connection.Session().Err()
	})

	server := httptest.NewServer(ingress)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)

	require.NoError(t, conn.Write(ctx, websocket.MessageBinary, protocol.Encode(login)))

	typ, data, err := conn.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, websocket.MessageBinary, typ)

	message, err := protocol.DecodeServer(data)
	require.NoError(t, err)
	assert.Equal(t, protocol.LoginSuccess{Admin: true}, message)

	// One WebSocket message must hold exactly one protocol message
	require.NoError(t, conn.Write(ctx, websocket.MessageBinary, append(protocol.Encode(login), 0)))

	select {
	case reason := <-reasons:
		assert.ErrorIs(t, reason, protocol.ErrMalformedPacket)
	case <-ctx.Done():
		t.Fatal("session never ended")
	}

	conn.Close(websocket.StatusNormalClosure, "")
}
