package protocol

import (
	"strconv"
	"strings"

	"github.com/cfoust/uno/pkg/cards"

	opt "github.com/repeale/fp-go/option"
)

type PacketType uint32

const (
	LoginType PacketType = iota + 1
	LoginSuccessType
	LoginFailedNameExistsType
	LoginFailedGameStartedType
	PlayerListType
	RoomFullType
	StartGameType
	GameStateType
	PlayCardType
	DrawCardType
	CallUnoType
	FinalWinType
)

func (t PacketType) String() string {
	switch t {
	case LoginType:
		return "LOGIN"
	case LoginSuccessType:
		return "LOGIN_SUCCESS"
	case LoginFailedNameExistsType:
		return "LOGIN_FAILED_NAME_ALREADY_EXISTS"
	case LoginFailedGameStartedType:
		return "LOGIN_FAILED_GAME_STARTED"
	case PlayerListType:
		return "PLAYER_LIST"
	case RoomFullType:
		return "ROOM_ALREADY_FULL"
	case StartGameType:
		return "START_GAME"
	case GameStateType:
		return "PLAYER_CARDS_INFO"
	case PlayCardType:
		return "PLAY_CARD"
	case DrawCardType:
		return "DRAW_CARD"
	case CallUnoType:
		return "CALL_UNO"
	case FinalWinType:
		return "FINAL_WIN"
	default:
		return strconv.Itoa(int(t))
	}
}

const (
	FlagAdmin    byte = 'A'
	FlagNonAdmin byte = 'N'

	// Player names are joined with this in PlayerList.
	NameSeparator = ";"
)

type Message interface {
	Type() PacketType
}

// Header is repeated at the front of every client message.
type Header struct {
	Room   string
	Player string
}

func (h Header) GetHeader() Header {
	return h
}

// ClientMessage is any message sent by a client.
type ClientMessage interface {
	Message
	GetHeader() Header
}

// Client -> Server

type Login struct{ Header }

func (m Login) Type() PacketType { return LoginType }

type StartGameRequest struct{ Header }

func (m StartGameRequest) Type() PacketType { return StartGameType }

type PlayCard struct {
	Header
	Card  cards.Card
	Color opt.Option[cards.Color]
}

func (m PlayCard) Type() PacketType { return PlayCardType }

type DrawCard struct{ Header }

func (m DrawCard) Type() PacketType { return DrawCardType }

// CallUno travels in both directions: the server forwards it verbatim to
// every member of the room.
type CallUno struct{ Header }

func (m CallUno) Type() PacketType { return CallUnoType }

// Server -> Client

type LoginSuccess struct {
	Admin bool
}

func (m LoginSuccess) Type() PacketType { return LoginSuccessType }

type LoginFailedNameExists struct{}

func (m LoginFailedNameExists) Type() PacketType { return LoginFailedNameExistsType }

type LoginFailedGameStarted struct{}

func (m LoginFailedGameStarted) Type() PacketType { return LoginFailedGameStartedType }

type RoomFull struct{}

func (m RoomFull) Type() PacketType { return RoomFullType }

type PlayerList struct {
	Names []string
}

func (m PlayerList) Type() PacketType { return PlayerListType }

type StartGame struct{}

func (m StartGame) Type() PacketType { return StartGameType }

type TopCard struct {
	Card cards.Card
	// None while an opening wild is waiting for its first color
	Color opt.Option[cards.Color]
}

type PlayerState struct {
	Name  string
	Score uint32
	Turn  bool
	Hand  []cards.Card
}

type GameState struct {
	DrawPile uint32
	// Set on the first state after a deal
	First   bool
	Top     opt.Option[TopCard]
	Players []PlayerState
}

func (m GameState) Type() PacketType { return GameStateType }

type FinalWin struct {
	Winner string
}

func (m FinalWin) Type() PacketType { return FinalWinType }

// ValidName reports whether a room or player name can be carried by the
// protocol: non-empty printable ASCII without the list separator.
func ValidName(name string) bool {
	if len(name) == 0 || len(name) > MaxNameLength {
		return false
	}

	if strings.Contains(name, NameSeparator) {
		return false
	}

	for i := 0; i < len(name); i++ {
		if name[i] < 0x20 || name[i] > 0x7e {
			return false
		}
	}

	return true
}
