package events

import (
	"time"

	"github.com/fxamacker/cbor/v2"
)

type Kind string

const (
	PlayerJoined Kind = "joined"
	PlayerLeft   Kind = "left"
	RoundDealt   Kind = "dealt"
	CardPlayed   Kind = "played"
	CardDrawn    Kind = "drew"
	UnoCalled    Kind = "uno"
	RoundWon     Kind = "round"
	MatchWon     Kind = "match"
)

// Event is something that happened in a room. Events are informational:
// nothing in the game depends on them being delivered.
type Event struct {
	Kind   Kind   `cbor:"kind"`
	Room   string `cbor:"room"`
	Player string `cbor:"player,omitempty"`
	Round  int    `cbor:"round"`
	// Only set for CardPlayed
	Card uint32 `cbor:"card"`
	// Points won in the round for RoundWon, final score for MatchWon
	Points int `cbor:"points,omitempty"`
	// Cumulative score of every seated player
	Scores map[string]int `cbor:"scores,omitempty"`
	// Unix milliseconds
	Time int64 `cbor:"time"`
}

func New(kind Kind, room string, player string) Event {
	return Event{
		Kind:   kind,
		Room:   room,
		Player: player,
		Time:   time.Now().UnixMilli(),
	}
}

type Publisher interface {
	Publish(event Event)
}

func Marshal(event Event) ([]byte, error) {
	return cbor.Marshal(event)
}

func Unmarshal(data []byte) (Event, error) {
	var event Event
	err := cbor.Unmarshal(data, &event)
	return event, err
}
