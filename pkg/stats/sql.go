package stats

import (
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Entity struct {
	ID uint `gorm:"primaryKey"`
}

// A finished round of a match.
type Round struct {
	Entity

	Room   string `gorm:"not null;size:255;index"`
	Number int
	Winner string `gorm:"not null;size:255"`
	// Awarded to the winner from everyone else's hands
	Points  int
	Created time.Time

	Scores []*Score
}

// A player's cumulative score once a round was over.
type Score struct {
	Entity

	RoundID uint   `gorm:"not null"`
	Player  string `gorm:"not null;size:255"`
	Total   int
}

type Match struct {
	Entity

	Room    string `gorm:"not null;size:255;index"`
	Winner  string `gorm:"not null;size:255;index"`
	Score   int
	Rounds  int
	Created time.Time
}

func InitDB(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	err = db.AutoMigrate(&Round{}, &Score{}, &Match{})
	if err != nil {
		return nil, err
	}

	return db, nil
}
