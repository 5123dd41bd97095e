package protocol

import (
	"bytes"
	"fmt"
	"io"
	"math/rand"
	"testing"

	"github.com/cfoust/uno/pkg/cards"

	opt "github.com/repeale/fp-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func header() Header {
	return Header{Room: "den", Player: "alice"}
}

func TestClientMessages(t *testing.T) {
	messages := []Message{
		Login{header()},
		StartGameRequest{header()},
		DrawCard{header()},
		CallUno{header()},
		PlayCard{Header: header(), Card: 45, Color: opt.Some(cards.Red)},
		PlayCard{Header: header(), Card: cards.WildCard, Color: opt.None[cards.Color]()},
	}

	for _, before := range messages {
		after, err := DecodeClient(Encode(before))
		require.NoError(t, err, "%T", before)
		assert.Equal(t, before, after)
	}
}

func TestServerMessages(t *testing.T) {
	messages := []Message{
		LoginSuccess{Admin: true},
		LoginSuccess{Admin: false},
		LoginFailedNameExists{},
		LoginFailedGameStarted{},
		RoomFull{},
		PlayerList{Names: []string{"alice", "bob"}},
		PlayerList{},
		StartGame{},
		CallUno{header()},
		FinalWin{Winner: "bob"},
	}

	for _, before := range messages {
		after, err := DecodeServer(Encode(before))
		require.NoError(t, err, "%T", before)
		assert.Equal(t, before, after)
	}
}

func TestLoginWireFormat(t *testing.T) {
	packet := Encode(Login{Header{Room: "r", Player: "bob"}})
	assert.Equal(t, []byte{
		0, 0, 0, 1,
		0, 0, 0, 1,
		0, 0, 0, 3,
		'r', 'b', 'o', 'b',
	}, []byte(packet))

	packet = Encode(LoginSuccess{Admin: true})
	assert.Equal(t, []byte{0, 0, 0, 2, 'A'}, []byte(packet))

	packet = Encode(PlayerList{Names: []string{"a", "b"}})
	assert.Equal(t, []byte{0, 0, 0, 5, 0, 0, 0, 3, 'a', ';', 'b'}, []byte(packet))
}

func randomState(rng *rand.Rand, numPlayers int) GameState {
	deck := cards.Standard().Deck()
	state := GameState{
		DrawPile: uint32(rng.Intn(80)),
		First:    rng.Intn(2) == 0,
		Top:      opt.None[TopCard](),
	}

	if rng.Intn(2) == 0 {
		top := TopCard{
			Card:  deck[rng.Intn(len(deck))],
			Color: opt.None[cards.Color](),
		}
		if rng.Intn(2) == 0 {
			top.Color = opt.Some(cards.Colors[rng.Intn(4)])
		}
		state.Top = opt.Some(top)
	}

	for i := 0; i < numPlayers; i++ {
		player := PlayerState{
			Name:  fmt.Sprintf("player-%d", i),
			Score: uint32(rng.Intn(600)),
			Turn:  i == 0,
		}
		for j := rng.Intn(21); j > 0; j-- {
			player.Hand = append(player.Hand, deck[rng.Intn(len(deck))])
		}
		state.Players = append(state.Players, player)
	}

	return state
}

func TestGameStateRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for numPlayers := 0; numPlayers <= MaxPlayers; numPlayers++ {
		for i := 0; i < 25; i++ {
			before := randomState(rng, numPlayers)
			after, err := DecodeServer(Encode(before))
			require.NoError(t, err)
			assert.Equal(t, before, after)
		}
	}
}

func TestMalformed(t *testing.T) {
	state := Encode(GameState{
		DrawPile: 10,
		Top:      opt.Some(TopCard{Card: 12}),
		Players: []PlayerState{
			{Name: "alice", Hand: []cards.Card{1, 2, 3}},
		},
	})

	// Every strict prefix is truncated
	for i := 0; i < len(state); i++ {
		_, err := DecodeServer(state[:i])
		assert.ErrorIs(t, err, ErrMalformedPacket, "prefix of %d bytes", i)
	}

	_, err := DecodeServer(append(Packet{}, append(state, 0)...))
	assert.ErrorIs(t, err, ErrMalformedPacket, "trailing bytes")

	login := Encode(Login{header()})

	// Room length pointing past the end of the buffer
	bad := append(Packet{}, login...)
	bad[7] = 200
	_, err = DecodeClient(bad)
	assert.ErrorIs(t, err, ErrMalformedPacket)

	// Lengths that do not add up leave trailing bytes
	bad = append(Packet{}, login...)
	bad[7] = 1
	_, err = DecodeClient(bad)
	assert.ErrorIs(t, err, ErrMalformedPacket)

	bad = Packet{}
	bad.PutUint(99)
	_, err = DecodeClient(bad)
	assert.ErrorIs(t, err, ErrMalformedPacket)

	// Server-only types are not accepted from clients
	_, err = DecodeClient(Encode(FinalWin{Winner: "x"}))
	assert.ErrorIs(t, err, ErrMalformedPacket)

	play := Encode(PlayCard{Header: header(), Card: 1, Color: opt.Some(cards.Blue)})
	bad = append(Packet{}, play...)
	bad[len(bad)-1] = 9
	_, err = DecodeClient(bad)
	assert.ErrorIs(t, err, ErrMalformedPacket, "invalid color")

	bad = append(Packet{}, play...)
	bad[len(bad)-5] = 77
	_, err = DecodeClient(bad)
	assert.ErrorIs(t, err, ErrMalformedPacket, "invalid card")

	// A hostile hand size must not be trusted
	huge := Packet{}
	huge.PutUint(uint32(GameStateType))
	huge.PutUint(0)
	huge.PutBool(false)
	huge.PutBool(false)
	huge.PutUint(1)
	huge.PutString("a")
	huge.PutUint(0)
	huge.PutBool(false)
	huge.PutUint(0xffffffff)
	_, err = DecodeServer(huge)
	assert.ErrorIs(t, err, ErrMalformedPacket)
}

func TestReader(t *testing.T) {
	stream := bytes.Buffer{}
	messages := []Message{
		Login{header()},
		PlayCard{Header: header(), Card: 90, Color: opt.Some(cards.Green)},
		DrawCard{header()},
	}
	for _, message := range messages {
		stream.Write(Encode(message))
	}

	reader := NewReader(&stream)
	for _, before := range messages {
		after, err := reader.ReadClient()
		require.NoError(t, err)
		assert.Equal(t, before, after)
	}

	_, err := reader.ReadClient()
	assert.ErrorIs(t, err, io.EOF)

	// Closing in the middle of a message is not a clean EOF
	truncated := Encode(Login{header()})
	reader = NewReader(bytes.NewReader(truncated[:10]))
	_, err = reader.ReadClient()
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	state := GameState{
		DrawPile: 3,
		Top:      opt.None[TopCard](),
		Players:  []PlayerState{{Name: "bob", Score: 12}},
	}
	reader = NewReader(bytes.NewReader(Encode(state)))
	after, err := reader.ReadServer()
	require.NoError(t, err)
	assert.Equal(t, state, after)
}

func TestValidName(t *testing.T) {
	assert.True(t, ValidName("alice"))
	assert.False(t, ValidName(""))
	assert.False(t, ValidName("a;b"))
	assert.False(t, ValidName("caf\xc3\xa9"))
	assert.False(t, ValidName(string(make([]byte, MaxNameLength+1))))
}
