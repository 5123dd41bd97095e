package cards

import (
	opt "github.com/repeale/fp-go/option"
)

type Direction int8

const (
	Clockwise        Direction = 1
	CounterClockwise Direction = -1
)

func (d Direction) Flip() Direction {
	return -d
}

func (d Direction) String() string {
	if d == CounterClockwise {
		return "counter-clockwise"
	}
	return "clockwise"
}

const (
	ActionPoints = 20
	WildPoints   = 50
)

// IsLegalPlay reports whether candidate may be discarded on top of top.
// topColor is the color in effect, which for a wild top card is whatever the
// player who discarded it declared. An opening wild has no declared color and
// accepts anything.
func IsLegalPlay(top Card, topColor opt.Option[Color], candidate Card) bool {
	topInfo, err := Classify(top)
	if err != nil {
		return false
	}

	candidateInfo, err := Classify(candidate)
	if err != nil {
		return false
	}

	if candidateInfo.Category == CategoryWild {
		return true
	}

	effective := topInfo.Color
	if topInfo.Category == CategoryWild {
		if opt.IsNone(topColor) {
			return true
		}
		effective = topColor.Value
	}

	if candidateInfo.Color == effective {
		return true
	}

	switch topInfo.Category {
	case CategoryRegular:
		return candidateInfo.Category == CategoryRegular &&
			candidateInfo.Rank == topInfo.Rank
	case CategoryAction:
		return candidateInfo.Category == CategoryAction &&
			candidateInfo.Action == topInfo.Action
	}

	return false
}

// CanPlayAny reports whether any card in hand is a legal play.
func CanPlayAny(top Card, topColor opt.Option[Color], hand []Card) bool {
	for _, card := range hand {
		if IsLegalPlay(top, topColor, card) {
			return true
		}
	}
	return false
}

func CardScore(card Card) int {
	info, err := Classify(card)
	if err != nil {
		return 0
	}

	switch info.Category {
	case CategoryRegular:
		return info.Rank
	case CategoryAction:
		return ActionPoints
	default:
		return WildPoints
	}
}

func HandScore(hand []Card) (score int) {
	for _, card := range hand {
		score += CardScore(card)
	}
	return
}

// NextSeat walks steps seats from current around a table of n seats.
func NextSeat(current, n int, direction Direction, steps int) int {
	if n <= 0 {
		return 0
	}

	for i := 0; i < steps; i++ {
		if direction == CounterClockwise {
			current = (current + n - 1) % n
		} else {
			current = (current + 1) % n
		}
	}
	return current
}
