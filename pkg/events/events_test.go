package events

import (
	"testing"

	"github.com/cfoust/uno/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshal(t *testing.T) {
	event := New(RoundWon, "den", "alice")
	event.Round = 3
	event.Points = 74
	event.Scores = map[string]int{"alice": 74, "bob": 0}

	data, err := Marshal(event)
	require.NoError(t, err)

	after, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, event, after)
}

func TestTopicIsPublisher(t *testing.T) {
	topic := utils.NewTopic[Event]("events")
	var publisher Publisher = topic

	subscriber := topic.Subscribe()
	defer subscriber.Done()

	publisher.Publish(New(CardPlayed, "den", "bob"))
	event := <-subscriber.Recv()
	assert.Equal(t, CardPlayed, event.Kind)
	assert.Equal(t, "bob", event.Player)
}

func TestChannel(t *testing.T) {
	publisher := NewRedisPublisher(RedisSettings{Address: "localhost:6379", Prefix: "uno"})
	defer publisher.Close()
	assert.Equal(t, "uno:den", publisher.Channel("den"))
}
