package room

import (
	"math/rand"
	"time"

	"github.com/cfoust/uno/pkg/cards"
)

type Shuffler interface {
	Shuffle(deck []cards.Card)
}

// RandomShuffler is a uniform Fisher-Yates shuffle. It is not safe for
// concurrent use; every room owns its own.
type RandomShuffler struct {
	rng *rand.Rand
}

func NewRandomShuffler(seed int64) *RandomShuffler {
	return &RandomShuffler{
		rng: rand.New(rand.NewSource(seed)),
	}
}

func NewShuffler() *RandomShuffler {
	return NewRandomShuffler(time.Now().UnixNano())
}

func (s *RandomShuffler) Shuffle(deck []cards.Card) {
	s.rng.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
}
