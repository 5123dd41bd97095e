package protocol

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cfoust/uno/pkg/cards"

	opt "github.com/repeale/fp-go/option"
)

var ErrMalformedPacket = errors.New("malformed packet")

const (
	MaxNameLength = 255
	// Long enough for every name in a full room plus separators
	MaxTextLength = 4*MaxNameLength + 3
	MaxPlayers    = 4
	MaxHandSize   = cards.DeckSize
)

func malformed(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrMalformedPacket, fmt.Sprintf(format, args...))
}

// source is where a decoder pulls fields from: either a complete Packet or a
// byte stream.
type source interface {
	Uint() (uint32, error)
	Bytes(n int) ([]byte, error)
}

type packetSource struct {
	packet *Packet
}

func (s packetSource) Uint() (uint32, error) {
	v, ok := s.packet.GetUint()
	if !ok {
		return 0, malformed("truncated integer")
	}
	return v, nil
}

func (s packetSource) Bytes(n int) ([]byte, error) {
	v, ok := s.packet.GetBytes(n)
	if !ok {
		return nil, malformed("length %d exceeds remaining %d bytes", n, len(*s.packet))
	}
	return v, nil
}

func getText(src source, length uint32, limit int) (string, error) {
	if length > uint32(limit) {
		return "", malformed("text length %d over limit %d", length, limit)
	}

	value, err := src.Bytes(int(length))
	if err != nil {
		return "", err
	}

	for _, b := range value {
		if b > 0x7f {
			return "", malformed("non-ASCII byte 0x%x in text", b)
		}
	}

	return string(value), nil
}

func getString(src source, limit int) (string, error) {
	length, err := src.Uint()
	if err != nil {
		return "", err
	}
	return getText(src, length, limit)
}

func getBool(src source) (bool, error) {
	v, err := src.Uint()
	if err != nil {
		return false, err
	}

	switch v {
	case 0:
		return false, nil
	case 1:
		return true, nil
	}
	return false, malformed("invalid flag %d", v)
}

func getColor(src source) (opt.Option[cards.Color], error) {
	v, err := src.Uint()
	if err != nil {
		return opt.None[cards.Color](), err
	}

	if v == 0 {
		return opt.None[cards.Color](), nil
	}

	color := cards.Color(v)
	if !color.Valid() {
		return opt.None[cards.Color](), malformed("invalid color %d", v)
	}
	return opt.Some(color), nil
}

func getCard(src source) (cards.Card, error) {
	v, err := src.Uint()
	if err != nil {
		return 0, err
	}

	card := cards.Card(v)
	if _, err := cards.Classify(card); err != nil {
		return 0, malformed("%s", err)
	}
	return card, nil
}

func getHeader(src source) (header Header, err error) {
	roomLength, err := src.Uint()
	if err != nil {
		return
	}

	playerLength, err := src.Uint()
	if err != nil {
		return
	}

	header.Room, err = getText(src, roomLength, MaxNameLength)
	if err != nil {
		return
	}

	header.Player, err = getText(src, playerLength, MaxNameLength)
	return
}

func getFlag(src source) (byte, error) {
	b, err := src.Bytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func getType(src source) (PacketType, error) {
	v, err := src.Uint()
	return PacketType(v), err
}

// readClient decodes the body of a client -> server message.
func readClient(src source, typ PacketType) (Message, error) {
	switch typ {
	case LoginType, StartGameType, DrawCardType, CallUnoType:
		header, err := getHeader(src)
		if err != nil {
			return nil, err
		}

		switch typ {
		case LoginType:
			return Login{header}, nil
		case StartGameType:
			return StartGameRequest{header}, nil
		case DrawCardType:
			return DrawCard{header}, nil
		}
		return CallUno{header}, nil

	case PlayCardType:
		header, err := getHeader(src)
		if err != nil {
			return nil, err
		}

		card, err := getCard(src)
		if err != nil {
			return nil, err
		}

		color, err := getColor(src)
		if err != nil {
			return nil, err
		}

		return PlayCard{
			Header: header,
			Card:   card,
			Color:  color,
		}, nil
	}

	return nil, malformed("unexpected client packet type %s", typ)
}

// readServer decodes the body of a server -> client message.
func readServer(src source, typ PacketType) (Message, error) {
	switch typ {
	case LoginSuccessType:
		b, err := getFlag(src)
		if err != nil {
			return nil, err
		}

		switch b {
		case FlagAdmin:
			return LoginSuccess{Admin: true}, nil
		case FlagNonAdmin:
			return LoginSuccess{Admin: false}, nil
		}
		return nil, malformed("invalid admin flag %q", b)

	case LoginFailedNameExistsType, LoginFailedGameStartedType, RoomFullType:
		if _, err := getFlag(src); err != nil {
			return nil, err
		}

		switch typ {
		case LoginFailedNameExistsType:
			return LoginFailedNameExists{}, nil
		case LoginFailedGameStartedType:
			return LoginFailedGameStarted{}, nil
		}
		return RoomFull{}, nil

	case PlayerListType:
		names, err := getString(src, MaxTextLength)
		if err != nil {
			return nil, err
		}

		list := PlayerList{}
		if names != "" {
			list.Names = strings.Split(names, NameSeparator)
		}
		return list, nil

	case StartGameType:
		return StartGame{}, nil

	case GameStateType:
		state, err := getGameState(src)
		if err != nil {
			return nil, err
		}
		return state, nil

	case CallUnoType:
		header, err := getHeader(src)
		if err != nil {
			return nil, err
		}
		return CallUno{header}, nil

	case FinalWinType:
		winner, err := getString(src, MaxNameLength)
		if err != nil {
			return nil, err
		}
		return FinalWin{Winner: winner}, nil
	}

	return nil, malformed("unexpected server packet type %s", typ)
}

func getGameState(src source) (state GameState, err error) {
	state.DrawPile, err = src.Uint()
	if err != nil {
		return
	}
	if state.DrawPile > cards.DeckSize {
		err = malformed("draw pile of %d cards", state.DrawPile)
		return
	}

	state.First, err = getBool(src)
	if err != nil {
		return
	}

	hasTop, err := getBool(src)
	if err != nil {
		return
	}

	if hasTop {
		top := TopCard{}
		top.Card, err = getCard(src)
		if err != nil {
			return
		}

		top.Color, err = getColor(src)
		if err != nil {
			return
		}
		state.Top = opt.Some(top)
	} else {
		state.Top = opt.None[TopCard]()
	}

	numPlayers, err := src.Uint()
	if err != nil {
		return
	}
	if numPlayers > MaxPlayers {
		err = malformed("%d players", numPlayers)
		return
	}

	for i := uint32(0); i < numPlayers; i++ {
		player := PlayerState{}

		player.Name, err = getString(src, MaxNameLength)
		if err != nil {
			return
		}

		player.Score, err = src.Uint()
		if err != nil {
			return
		}

		player.Turn, err = getBool(src)
		if err != nil {
			return
		}

		var numCards uint32
		numCards, err = src.Uint()
		if err != nil {
			return
		}
		if numCards > MaxHandSize {
			err = malformed("hand of %d cards", numCards)
			return
		}

		for j := uint32(0); j < numCards; j++ {
			var card cards.Card
			card, err = getCard(src)
			if err != nil {
				return
			}
			player.Hand = append(player.Hand, card)
		}

		state.Players = append(state.Players, player)
	}

	return
}

func decode(b []byte, read func(source, PacketType) (Message, error)) (Message, error) {
	p := Packet(b)
	src := packetSource{&p}

	typ, err := getType(src)
	if err != nil {
		return nil, err
	}

	message, err := read(src, typ)
	if err != nil {
		return nil, err
	}

	if len(p) != 0 {
		return nil, malformed("%d trailing bytes after %s", len(p), typ)
	}

	return message, nil
}

// DecodeClient decodes exactly one client -> server message. Truncated
// input, inconsistent lengths and trailing bytes are all ErrMalformedPacket.
func DecodeClient(b []byte) (Message, error) {
	return decode(b, readClient)
}

// DecodeServer decodes exactly one server -> client message.
func DecodeServer(b []byte) (Message, error) {
	return decode(b, readServer)
}

type streamSource struct {
	reader *bufio.Reader
}

func (s streamSource) Uint() (uint32, error) {
	b, err := s.Bytes(4)
	if err != nil {
		return 0, err
	}
	p := Packet(b)
	v, _ := p.GetUint()
	return v, nil
}

func (s streamSource) Bytes(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := io.ReadFull(s.reader, b)
	return b, err
}

// Reader decodes messages one at a time from a byte stream. There is no
// outer frame: each message is delimited by its own length fields.
type Reader struct {
	src streamSource
}

func NewReader(r io.Reader) *Reader {
	return &Reader{
		src: streamSource{bufio.NewReader(r)},
	}
}

func (r *Reader) read(decode func(source, PacketType) (Message, error)) (Message, error) {
	// A clean EOF is only possible between messages
	typ, err := getType(r.src)
	if err != nil {
		return nil, err
	}

	message, err := decode(r.src, typ)
	if errors.Is(err, io.EOF) {
		return nil, io.ErrUnexpectedEOF
	}
	return message, err
}

func (r *Reader) ReadClient() (Message, error) {
	return r.read(readClient)
}

func (r *Reader) ReadServer() (Message, error) {
	return r.read(readServer)
}
