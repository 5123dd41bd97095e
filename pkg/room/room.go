package room

import (
	"errors"
	"fmt"

	"github.com/cfoust/uno/pkg/cards"
	"github.com/cfoust/uno/pkg/events"
	"github.com/cfoust/uno/pkg/protocol"

	"github.com/google/uuid"
	opt "github.com/repeale/fp-go/option"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sasha-s/go-deadlock"
)

var (
	ErrNameAlreadyExists  = errors.New("name already exists")
	ErrRoomFull           = errors.New("room is full")
	ErrGameAlreadyStarted = errors.New("game already started")
	ErrRoomClosed         = errors.New("room was closed")

	ErrNotYourTurn        = errors.New("not your turn")
	ErrCardNotInHand      = errors.New("card not in hand")
	ErrIllegalPlay        = errors.New("illegal play")
	ErrMissingColorChoice = errors.New("wild played without a color")
	ErrNotAdmin           = errors.New("only the admin can start the game")
	ErrNotEnoughPlayers   = errors.New("not enough players")
	ErrNotInProgress      = errors.New("no round in progress")
	ErrUnknownPlayer      = errors.New("unknown player")
)

type State uint8

const (
	Waiting State = iota
	InProgress
	// Transient: a round just ended and the room is about to redeal or
	// finish the match.
	RoundOver
	MatchOver
)

func (s State) String() string {
	switch s {
	case Waiting:
		return "waiting"
	case InProgress:
		return "in-progress"
	case RoundOver:
		return "round-over"
	case MatchOver:
		return "match-over"
	default:
		return fmt.Sprintf("State(%d)", s)
	}
}

// Sender delivers a message to one client. It must not block.
type Sender interface {
	Send(message protocol.Message)
}

type Player struct {
	ID    uuid.UUID
	Name  string
	Hand  []cards.Card
	Score int
	Admin bool

	sender Sender
}

type Settings struct {
	MaxPlayers   int
	HandSize     int
	WinningScore int
}

func DefaultSettings() Settings {
	return Settings{
		MaxPlayers:   protocol.MaxPlayers,
		HandSize:     7,
		WinningScore: 500,
	}
}

type discardEvents struct{}

func (discardEvents) Publish(events.Event) {}

// Room is one game session. Every exported method takes the room's lock, and
// the messages a method produces are sent before the lock is released, so
// every member sees them in the order the room applied them.
type Room struct {
	Name string

	settings Settings
	shuffler Shuffler
	events   events.Publisher
	log      zerolog.Logger

	mutex       deadlock.Mutex
	state       State
	closed      bool
	players     []*Player
	drawPile    []cards.Card
	discardPile []cards.Card
	color       opt.Option[cards.Color]
	current     int
	direction   cards.Direction
	round       int
}

// New creates an empty room. A nil shuffler uses a randomly seeded one and
// a nil publisher discards events.
func New(name string, settings Settings, shuffler Shuffler, publisher events.Publisher) *Room {
	if shuffler == nil {
		shuffler = NewShuffler()
	}

	if publisher == nil {
		publisher = discardEvents{}
	}

	return &Room{
		Name:      name,
		settings:  settings,
		shuffler:  shuffler,
		events:    publisher,
		log:       log.With().Str("room", name).Logger(),
		color:     opt.None[cards.Color](),
		direction: cards.Clockwise,
	}
}

func (r *Room) broadcast(message protocol.Message) {
	for _, player := range r.players {
		player.sender.Send(message)
	}
}

func (r *Room) broadcastState(first bool) {
	r.broadcast(r.snapshot(first))
}

func (r *Room) newEvent(kind events.Kind, player string) events.Event {
	event := events.New(kind, r.Name, player)
	event.Round = r.round
	return event
}

func (r *Room) scores() map[string]int {
	scores := make(map[string]int, len(r.players))
	for _, player := range r.players {
		scores[player.Name] = player.Score
	}
	return scores
}

func (r *Room) names() []string {
	names := make([]string, 0, len(r.players))
	for _, player := range r.players {
		names = append(names, player.Name)
	}
	return names
}

func (r *Room) seat(id uuid.UUID) (int, *Player) {
	for i, player := range r.players {
		if player.ID == id {
			return i, player
		}
	}
	return -1, nil
}

func (r *Room) adminSeat() int {
	for i, player := range r.players {
		if player.Admin {
			return i
		}
	}
	return 0
}

// AddPlayer seats a new player. The joiner receives LoginSuccess, then
// every member (the joiner included) receives the new player list.
func (r *Room) AddPlayer(name string, sender Sender) (*Player, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.closed {
		return nil, ErrRoomClosed
	}

	if len(r.players) >= r.settings.MaxPlayers {
		return nil, ErrRoomFull
	}

	if r.state != Waiting {
		return nil, ErrGameAlreadyStarted
	}

	for _, player := range r.players {
		if player.Name == name {
			return nil, ErrNameAlreadyExists
		}
	}

	player := &Player{
		ID:     uuid.New(),
		Name:   name,
		Admin:  len(r.players) == 0,
		sender: sender,
	}
	r.players = append(r.players, player)

	r.log.Info().Str("player", name).Bool("admin", player.Admin).Msg("player joined")

	sender.Send(protocol.LoginSuccess{Admin: player.Admin})
	r.broadcast(protocol.PlayerList{Names: r.names()})
	r.events.Publish(r.newEvent(events.PlayerJoined, name))

	return player, nil
}

// Start begins a new match on behalf of the admin: scores are cleared,
// StartGame is broadcast and the first round is dealt.
func (r *Room) Start(id uuid.UUID) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	_, player := r.seat(id)
	if player == nil {
		return ErrUnknownPlayer
	}

	if !player.Admin {
		return ErrNotAdmin
	}

	if r.state == InProgress || r.state == RoundOver {
		return ErrGameAlreadyStarted
	}

	if len(r.players) < 2 {
		return ErrNotEnoughPlayers
	}

	r.reset(true)
	r.broadcast(protocol.StartGame{})
	r.deal()
	return nil
}

// Deal deals a round to the seated players without announcing a new match.
func (r *Room) Deal() error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.state != Waiting {
		return ErrGameAlreadyStarted
	}

	if len(r.players) < 2 {
		return ErrNotEnoughPlayers
	}

	r.deal()
	return nil
}

func (r *Room) Play(id uuid.UUID, card cards.Card, color opt.Option[cards.Color]) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.play(id, card, color)
}

func (r *Room) Draw(id uuid.UUID) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.draw(id)
}

// CallUno tells every member that the player announced Uno. Nothing is
// enforced.
func (r *Room) CallUno(id uuid.UUID) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	_, player := r.seat(id)
	if player == nil {
		return ErrUnknownPlayer
	}

	r.broadcast(protocol.CallUno{
		Header: protocol.Header{
			Room:   r.Name,
			Player: player.Name,
		},
	})
	r.events.Publish(r.newEvent(events.UnoCalled, player.Name))
	return nil
}

// RemovePlayer drops a seat, usually because its connection went away. A
// departing player forfeits: their hand is shuffled back into the draw pile
// and the turn moves on if it was theirs. Fewer than two players abandons
// the round.
func (r *Room) RemovePlayer(id uuid.UUID) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	index, player := r.seat(id)
	if player == nil {
		return ErrUnknownPlayer
	}

	r.players = append(r.players[:index], r.players[index+1:]...)
	remaining := len(r.players)

	logger := r.log.With().Str("player", player.Name).Logger()
	logger.Info().Str("state", r.state.String()).Msg("player left")

	if player.Admin && remaining > 0 {
		next := r.players[index%remaining]
		next.Admin = true
		logger.Info().Str("admin", next.Name).Msg("admin handed over")
	}

	r.events.Publish(r.newEvent(events.PlayerLeft, player.Name))

	if remaining == 0 {
		r.reset(false)
		return nil
	}

	r.broadcast(protocol.PlayerList{Names: r.names()})

	if r.state != InProgress {
		return nil
	}

	r.drawPile = append(r.drawPile, player.Hand...)
	player.Hand = nil
	r.shuffler.Shuffle(r.drawPile)

	if remaining < 2 {
		logger.Info().Msg("round abandoned")
		r.reset(false)
		return nil
	}

	switch {
	case index < r.current:
		r.current--
	case index == r.current:
		// The seat after the leaver now sits at its index.
		if r.direction == cards.CounterClockwise {
			r.current = cards.NextSeat(index, remaining, cards.CounterClockwise, 1)
		} else {
			r.current = index % remaining
		}
	}

	r.broadcastState(false)
	return nil
}

// CloseIfEmpty marks an empty room as closed so that no one can join it
// after it has been dropped from the registry.
func (r *Room) CloseIfEmpty() bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if len(r.players) == 0 {
		r.closed = true
	}
	return r.closed
}

func (r *Room) State() State {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.state
}

func (r *Room) Count() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return len(r.players)
}

func (r *Room) Names() []string {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.names()
}

// Snapshot is the full state broadcast that members receive after every
// move.
func (r *Room) Snapshot(first bool) protocol.GameState {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.snapshot(first)
}
