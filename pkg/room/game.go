package room

import (
	"github.com/cfoust/uno/pkg/cards"
	"github.com/cfoust/uno/pkg/events"
	"github.com/cfoust/uno/pkg/protocol"

	"github.com/google/uuid"
	opt "github.com/repeale/fp-go/option"
)

func (r *Room) top() cards.Card {
	return r.discardPile[len(r.discardPile)-1]
}

func (r *Room) pop() cards.Card {
	card := r.drawPile[len(r.drawPile)-1]
	r.drawPile = r.drawPile[:len(r.drawPile)-1]
	return card
}

// take draws one card, reshuffling everything but the top of the discard
// pile when the draw pile runs out. It only fails when every card outside
// the players' hands is the top card.
func (r *Room) take() (cards.Card, bool) {
	if len(r.drawPile) == 0 {
		top := r.top()
		r.drawPile = append(r.drawPile, r.discardPile[:len(r.discardPile)-1]...)
		r.discardPile = []cards.Card{top}
		r.shuffler.Shuffle(r.drawPile)
		r.log.Debug().Int("cards", len(r.drawPile)).Msg("reshuffled discard pile")
	}

	if len(r.drawPile) == 0 {
		return 0, false
	}

	return r.pop(), true
}

func (r *Room) give(player *Player, count int) {
	for i := 0; i < count; i++ {
		card, ok := r.take()
		if !ok {
			r.log.Warn().Str("player", player.Name).Msg("no cards left to draw")
			return
		}
		player.Hand = append(player.Hand, card)
	}
}

func (r *Room) advance(steps int) {
	r.current = cards.NextSeat(r.current, len(r.players), r.direction, steps)
}

// reset clears the table and returns to Waiting without telling anyone.
func (r *Room) reset(clearScores bool) {
	r.state = Waiting
	r.drawPile = nil
	r.discardPile = nil
	r.color = opt.None[cards.Color]()
	r.current = 0
	r.direction = cards.Clockwise
	if clearScores {
		r.round = 0
	}

	for _, player := range r.players {
		player.Hand = nil
		if clearScores {
			player.Score = 0
		}
	}
}

func (r *Room) deal() {
	deck := cards.Standard().Deck()
	r.shuffler.Shuffle(deck)
	r.drawPile = deck
	r.discardPile = nil

	for _, player := range r.players {
		player.Hand = nil
	}

	for i := 0; i < r.settings.HandSize; i++ {
		for _, player := range r.players {
			player.Hand = append(player.Hand, r.pop())
		}
	}

	// A wild draw four never opens a round.
	starter := r.pop()
	for starter == cards.WildDrawFour {
		r.drawPile = append([]cards.Card{starter}, r.drawPile...)
		r.shuffler.Shuffle(r.drawPile)
		starter = r.pop()
	}

	r.discardPile = []cards.Card{starter}
	r.direction = cards.Clockwise
	r.current = r.adminSeat()
	r.color = opt.None[cards.Color]()
	r.state = InProgress
	r.round++

	info := cards.MustClassify(starter)
	if info.Category != cards.CategoryWild {
		r.color = opt.Some(info.Color)
	}

	if info.Category == cards.CategoryAction {
		switch info.Action {
		case cards.Skip:
			r.advance(1)
		case cards.Reverse:
			r.direction = r.direction.Flip()
			if len(r.players) == 2 {
				r.advance(1)
			}
		case cards.DrawTwo:
			r.give(r.players[r.current], 2)
			r.advance(1)
		}
	}

	r.log.Info().
		Int("round", r.round).
		Stringer("starter", starter).
		Str("first", r.players[r.current].Name).
		Msg("dealt")

	event := r.newEvent(events.RoundDealt, r.players[r.current].Name)
	event.Card = uint32(starter)
	r.events.Publish(event)

	r.broadcastState(true)
}

func (r *Room) turn(id uuid.UUID) (*Player, error) {
	if r.state != InProgress {
		return nil, ErrNotInProgress
	}

	index, player := r.seat(id)
	if player == nil {
		return nil, ErrUnknownPlayer
	}

	if index != r.current {
		return nil, ErrNotYourTurn
	}

	return player, nil
}

func (r *Room) play(id uuid.UUID, card cards.Card, color opt.Option[cards.Color]) error {
	player, err := r.turn(id)
	if err != nil {
		return err
	}

	index := -1
	for i, held := range player.Hand {
		if held == card {
			index = i
			break
		}
	}
	if index == -1 {
		return ErrCardNotInHand
	}

	if !cards.IsLegalPlay(r.top(), r.color, card) {
		return ErrIllegalPlay
	}

	info := cards.MustClassify(card)
	if info.Category == cards.CategoryWild {
		if opt.IsNone(color) || !color.Value.Valid() {
			return ErrMissingColorChoice
		}
	} else {
		color = opt.Some(info.Color)
	}

	player.Hand = append(player.Hand[:index], player.Hand[index+1:]...)
	r.discardPile = append(r.discardPile, card)
	r.color = color

	r.log.Debug().
		Str("player", player.Name).
		Stringer("card", card).
		Stringer("color", color.Value).
		Msg("played")

	event := r.newEvent(events.CardPlayed, player.Name)
	event.Card = uint32(card)
	r.events.Publish(event)

	if len(player.Hand) == 0 {
		r.finishRound(player)
		return nil
	}

	switch info.Category {
	case cards.CategoryRegular:
		r.advance(1)
	case cards.CategoryAction:
		switch info.Action {
		case cards.Skip:
			r.advance(2)
		case cards.Reverse:
			r.direction = r.direction.Flip()
			if len(r.players) == 2 {
				r.advance(2)
			} else {
				r.advance(1)
			}
		case cards.DrawTwo:
			r.advance(1)
			r.give(r.players[r.current], 2)
			r.advance(1)
		}
	case cards.CategoryWild:
		r.advance(1)
		if info.DrawFour {
			r.give(r.players[r.current], 4)
			r.advance(1)
		}
	}

	r.broadcastState(false)
	return nil
}

func (r *Room) draw(id uuid.UUID) error {
	player, err := r.turn(id)
	if err != nil {
		return err
	}

	card, ok := r.take()
	if ok {
		player.Hand = append(player.Hand, card)
	}

	r.events.Publish(r.newEvent(events.CardDrawn, player.Name))

	// The player keeps the turn only when something can be played now.
	if !cards.CanPlayAny(r.top(), r.color, player.Hand) {
		r.advance(1)
	}

	r.broadcastState(false)
	return nil
}

func (r *Room) finishRound(winner *Player) {
	r.state = RoundOver

	points := 0
	for _, player := range r.players {
		if player != winner {
			points += cards.HandScore(player.Hand)
		}
	}
	winner.Score += points

	r.log.Info().
		Str("winner", winner.Name).
		Int("points", points).
		Int("score", winner.Score).
		Msg("round over")

	event := r.newEvent(events.RoundWon, winner.Name)
	event.Points = points
	event.Scores = r.scores()
	r.events.Publish(event)

	if winner.Score >= r.settings.WinningScore {
		r.state = MatchOver
		r.log.Info().Str("winner", winner.Name).Msg("match over")

		event := r.newEvent(events.MatchWon, winner.Name)
		event.Points = winner.Score
		event.Scores = r.scores()
		r.events.Publish(event)

		r.broadcast(protocol.FinalWin{Winner: winner.Name})
		return
	}

	r.reset(false)
	r.broadcast(protocol.StartGame{})
	r.deal()
}

func (r *Room) snapshot(first bool) protocol.GameState {
	state := protocol.GameState{
		DrawPile: uint32(len(r.drawPile)),
		First:    first,
		Top:      opt.None[protocol.TopCard](),
	}

	if len(r.discardPile) > 0 {
		state.Top = opt.Some(protocol.TopCard{
			Card:  r.top(),
			Color: r.color,
		})
	}

	for i, player := range r.players {
		state.Players = append(state.Players, protocol.PlayerState{
			Name:  player.Name,
			Score: uint32(player.Score),
			Turn:  r.state == InProgress && i == r.current,
			Hand:  append([]cards.Card(nil), player.Hand...),
		})
	}

	return state
}
