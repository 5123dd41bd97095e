package utils

import (
	"github.com/rs/zerolog/log"
	"github.com/sasha-s/go-deadlock"
)

const TOPIC_BUFFER_SIZE = 64

// Topic fans values out to every subscriber. Publishing never blocks: a
// subscriber that falls TOPIC_BUFFER_SIZE values behind misses values.
type Topic[T any] struct {
	name        string
	subscribers map[chan T]struct{}
	mutex       deadlock.Mutex
}

func NewTopic[T any](name string) *Topic[T] {
	return &Topic[T]{
		name:        name,
		subscribers: make(map[chan T]struct{}),
	}
}

func (t *Topic[T]) Publish(value T) {
	t.mutex.Lock()
	for subscriber := range t.subscribers {
		select {
		case subscriber <- value:
		default:
			log.Warn().Str("topic", t.name).Msg("subscriber too slow, dropping value")
		}
	}
	t.mutex.Unlock()
}

type Subscriber[T any] struct {
	channel chan T
	topic   *Topic[T]
}

func (t *Topic[T]) Subscribe() *Subscriber[T] {
	channel := make(chan T, TOPIC_BUFFER_SIZE)
	t.mutex.Lock()
	t.subscribers[channel] = struct{}{}
	t.mutex.Unlock()

	return &Subscriber[T]{channel, t}
}

func (t *Subscriber[T]) Recv() <-chan T {
	return t.channel
}

func (t *Subscriber[T]) Done() {
	topic := t.topic
	topic.mutex.Lock()
	delete(topic.subscribers, t.channel)
	topic.mutex.Unlock()
}
