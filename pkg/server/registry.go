package server

import (
	"sort"

	"github.com/cfoust/uno/pkg/events"
	"github.com/cfoust/uno/pkg/room"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sasha-s/go-deadlock"
)

// Registry maps room names to rooms. Rooms are created on the first login
// to a name and dropped when their last player leaves.
type Registry struct {
	settings room.Settings
	events   events.Publisher
	// Used for every new room. Defaults to a randomly seeded shuffler.
	NewShuffler func() room.Shuffler

	// room name -> room
	rooms map[string]*room.Room
	mutex deadlock.RWMutex
}

func NewRegistry(settings room.Settings, publisher events.Publisher) *Registry {
	return &Registry{
		settings: settings,
		events:   publisher,
		NewShuffler: func() room.Shuffler {
			return room.NewShuffler()
		},
		rooms: make(map[string]*room.Room),
	}
}

func (r *Registry) Logger() zerolog.Logger {
	return log.With().Str("service", "registry").Logger()
}

func (r *Registry) Get(name string) (*room.Room, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	found, ok := r.rooms[name]
	return found, ok
}

func (r *Registry) GetOrCreate(name string) *room.Room {
	if found, ok := r.Get(name); ok {
		return found
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	// Someone may have beaten us to it
	if found, ok := r.rooms[name]; ok {
		return found
	}

	created := room.New(name, r.settings, r.NewShuffler(), r.events)
	r.rooms[name] = created

	logger := r.Logger()
	logger.Info().Str("room", name).Msg("created room")
	return created
}

// RemoveIfEmpty drops the room if nobody is seated in it. A dropped room is
// closed, so a login racing with the removal retries against a fresh room.
func (r *Registry) RemoveIfEmpty(target *room.Room) bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.rooms[target.Name] != target {
		return false
	}

	if !target.CloseIfEmpty() {
		return false
	}

	delete(r.rooms, target.Name)

	logger := r.Logger()
	logger.Info().Str("room", target.Name).Msg("removed empty room")
	return true
}

func (r *Registry) Names() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	names := make([]string, 0, len(r.rooms))
	for name := range r.rooms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
