package protocol

import (
	"fmt"
	"strings"

	"github.com/cfoust/uno/pkg/cards"

	opt "github.com/repeale/fp-go/option"
)

// Colors travel as 0 when there is none.
func putColor(p *Packet, color opt.Option[cards.Color]) {
	if opt.IsNone(color) {
		p.PutUint(0)
		return
	}
	p.PutUint(uint32(color.Value))
}

func putHeader(p *Packet, header Header) {
	p.PutUint(uint32(len(header.Room)))
	p.PutUint(uint32(len(header.Player)))
	p.PutRaw(header.Room)
	p.PutRaw(header.Player)
}

func flag(admin bool) byte {
	if admin {
		return FlagAdmin
	}
	return FlagNonAdmin
}

// Encode serializes a message, including its packet type.
func Encode(message Message) Packet {
	p := Packet{}
	p.PutUint(uint32(message.Type()))

	switch m := message.(type) {
	case Login:
		putHeader(&p, m.Header)
	case StartGameRequest:
		putHeader(&p, m.Header)
	case DrawCard:
		putHeader(&p, m.Header)
	case CallUno:
		putHeader(&p, m.Header)
	case PlayCard:
		putHeader(&p, m.Header)
		p.PutUint(uint32(m.Card))
		putColor(&p, m.Color)

	case LoginSuccess:
		p.PutByte(flag(m.Admin))
	case LoginFailedNameExists, LoginFailedGameStarted, RoomFull:
		p.PutByte(FlagNonAdmin)
	case PlayerList:
		p.PutString(strings.Join(m.Names, NameSeparator))
	case StartGame:
	case GameState:
		putGameState(&p, m)
	case FinalWin:
		p.PutString(m.Winner)

	default:
		panic(fmt.Sprintf("unhandled message type %T", m))
	}

	return p
}

func putGameState(p *Packet, state GameState) {
	p.PutUint(state.DrawPile)
	p.PutBool(state.First)

	if opt.IsSome(state.Top) {
		p.PutUint(1)
		p.PutUint(uint32(state.Top.Value.Card))
		putColor(p, state.Top.Value.Color)
	} else {
		p.PutUint(0)
	}

	p.PutUint(uint32(len(state.Players)))
	for _, player := range state.Players {
		p.PutString(player.Name)
		p.PutUint(player.Score)
		p.PutBool(player.Turn)
		p.PutUint(uint32(len(player.Hand)))
		for _, card := range player.Hand {
			p.PutUint(uint32(card))
		}
	}
}
