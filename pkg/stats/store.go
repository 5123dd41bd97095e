package stats

import (
	"context"
	"sort"
	"time"

	"github.com/cfoust/uno/pkg/events"
	"github.com/cfoust/uno/pkg/utils"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Store keeps the history of finished rounds and matches. It is never read
// back into a room.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Record saves the events that end a round or a match and ignores the rest.
func (s *Store) Record(ctx context.Context, event events.Event) error {
	db := s.db.WithContext(ctx)
	created := time.UnixMilli(event.Time)

	switch event.Kind {
	case events.RoundWon:
		round := Round{
			Room:    event.Room,
			Number:  event.Round,
			Winner:  event.Player,
			Points:  event.Points,
			Created: created,
		}

		players := make([]string, 0, len(event.Scores))
		for player := range event.Scores {
			players = append(players, player)
		}
		sort.Strings(players)

		for _, player := range players {
			round.Scores = append(round.Scores, &Score{
				Player: player,
				Total:  event.Scores[player],
			})
		}

		return db.Create(&round).Error
	case events.MatchWon:
		return db.Create(&Match{
			Room:    event.Room,
			Winner:  event.Player,
			Score:   event.Points,
			Rounds:  event.Round,
			Created: created,
		}).Error
	}

	return nil
}

func (s *Store) Wins(ctx context.Context, player string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&Match{}).
		Where(&Match{Winner: player}).
		Count(&count).Error
	return count, err
}

func (s *Store) Rounds(ctx context.Context, room string) ([]Round, error) {
	var rounds []Round
	err := s.db.WithContext(ctx).
		Preload("Scores").
		Where(&Round{Room: room}).
		Order("id").
		Find(&rounds).Error
	return rounds, err
}

// Poll records events from the subscription until ctx is done.
func (s *Store) Poll(ctx context.Context, subscriber *utils.Subscriber[events.Event]) {
	defer subscriber.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case event := <-subscriber.Recv():
			err := s.Record(ctx, event)
			if err != nil {
				log.Error().Err(err).Str("room", event.Room).Msg("failed to record event")
			}
		}
	}
}
