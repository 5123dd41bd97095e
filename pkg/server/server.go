package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/cfoust/uno/pkg/ingress"
	"github.com/cfoust/uno/pkg/protocol"
	"github.com/cfoust/uno/pkg/room"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

var (
	ErrFlooding = errors.New("client sent too many messages")
	ErrRejected = errors.New("login rejected")
)

type Server struct {
	Registry *Registry

	messagesPerSecond int
}

func New(registry *Registry, messagesPerSecond int) *Server {
	return &Server{
		Registry:          registry,
		messagesPerSecond: messagesPerSecond,
	}
}

// seat is where a connection sits once it has logged in.
type seat struct {
	room   *room.Room
	player *room.Player
}

func (s *Server) login(logger zerolog.Logger, connection ingress.Connection, message protocol.Login) *seat {
	header := message.Header
	if !protocol.ValidName(header.Room) || !protocol.ValidName(header.Player) {
		logger.Warn().
			Str("room", header.Room).
			Str("player", header.Player).
			Msg("invalid name")
		connection.Send(protocol.LoginFailedNameExists{})
		return nil
	}

	for {
		target := s.Registry.GetOrCreate(header.Room)
		player, err := target.AddPlayer(header.Player, connection)

		switch {
		case err == nil:
			return &seat{room: target, player: player}
		case errors.Is(err, room.ErrRoomClosed):
			continue
		case errors.Is(err, room.ErrRoomFull):
			connection.Send(protocol.RoomFull{})
			connection.Disconnect(fmt.Errorf("%w: %s", ErrRejected, err))
		case errors.Is(err, room.ErrGameAlreadyStarted):
			connection.Send(protocol.LoginFailedGameStarted{})
			connection.Disconnect(fmt.Errorf("%w: %s", ErrRejected, err))
		case errors.Is(err, room.ErrNameAlreadyExists):
			// The client may try again with another name
			connection.Send(protocol.LoginFailedNameExists{})
		}

		logger.Info().
			Err(err).
			Str("room", header.Room).
			Str("player", header.Player).
			Msg("login rejected")
		return nil
	}
}

func (s *Server) dispatch(logger zerolog.Logger, seat *seat, message protocol.Message) {
	client, ok := message.(protocol.ClientMessage)
	if !ok {
		return
	}

	header := client.GetHeader()
	if header.Room != seat.room.Name || header.Player != seat.player.Name {
		logger.Warn().
			Str("claimedRoom", header.Room).
			Str("claimedPlayer", header.Player).
			Stringer("type", message.Type()).
			Msg("message for another seat")
		return
	}

	var err error
	id := seat.player.ID
	switch message := message.(type) {
	case protocol.Login:
		logger.Warn().Msg("already logged in")
		return
	case protocol.StartGameRequest:
		err = seat.room.Start(id)
	case protocol.PlayCard:
		err = seat.room.Play(id, message.Card, message.Color)
	case protocol.DrawCard:
		err = seat.room.Draw(id)
	case protocol.CallUno:
		err = seat.room.CallUno(id)
	}

	if err != nil {
		logger.Warn().Err(err).Stringer("type", message.Type()).Msg("rejected move")
		return
	}

	logger.Debug().Stringer("type", message.Type()).Msg("applied")
}

func (s *Server) leave(logger zerolog.Logger, seat *seat) {
	err := seat.room.RemovePlayer(seat.player.ID)
	if err != nil {
		logger.Error().Err(err).Msg("failed to remove player")
	}
	s.Registry.RemoveIfEmpty(seat.room)
}

// Handle serves one connection until it goes away, removing its seat from
// the room afterwards.
func (s *Server) Handle(ctx context.Context, connection ingress.Connection) {
	logger := log.With().
		Str("host", connection.Host()).
		Stringer("transport", connection.Type()).
		Logger()

	limiter := rate.NewLimiter(rate.Limit(s.messagesPerSecond), s.messagesPerSecond)

	var current *seat
	defer func() {
		if current != nil {
			s.leave(logger, current)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case message := <-connection.ReceiveMessages():
			if !limiter.Allow() {
				logger.Warn().Msg("client is flooding, disconnecting")
				connection.Disconnect(ErrFlooding)
				return
			}

			if current != nil {
				s.dispatch(logger, current, message)
				continue
			}

			login, ok := message.(protocol.Login)
			if !ok {
				logger.Warn().Stringer("type", message.Type()).Msg("message before login")
				continue
			}

			current = s.login(logger, connection, login)
			if current != nil {
				logger = logger.With().
					Str("room", current.room.Name).
					Str("player", current.player.Name).
					Logger()
			}
		}
	}
}
