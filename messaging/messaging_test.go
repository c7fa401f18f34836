package messaging

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	events []Event
	err    error
}

func (r *recorder) Publish(_ context.Context, ev Event) error {
	r.events = append(r.events, ev)
	return r.err
}

func TestFanoutDeliversToAll(t *testing.T) {
	a := &recorder{}
	b := &recorder{err: errors.New("broker down")}
	c := &recorder{}

	err := Fanout{a, b, c}.Publish(context.Background(), Event{Type: PostCreated, ActorID: "u1"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
	assert.Len(t, a.events, 1)
	assert.Len(t, c.events, 1, "a failing publisher does not stop the rest")
}

func TestNopPublisher(t *testing.T) {
	assert.NoError(t, Nop{}.Publish(context.Background(), Event{Type: PostLiked}))
}

func TestForwardSkipsOwnEvents(t *testing.T) {
	local := &recorder{}
	forward := forwardFrom("node-a", local)

	forward(Event{Type: PostCreated, ActorID: "u1", Origin: "node-a", Recipients: []string{"u2"}})
	forward(Event{Type: PostLiked, ActorID: "u3", Origin: "node-b", Recipients: []string{"u1"}})

	require.Len(t, local.events, 1)
	assert.Equal(t, PostLiked, local.events[0].Type)
	assert.Equal(t, []string{"u1"}, local.events[0].Recipients)

	local.err = errors.New("hub closed")
	assert.NotPanics(t, func() { forward(Event{Type: PostLiked, Origin: "node-b"}) })
}

func TestNATSRoundTrip(t *testing.T) {
	url := os.Getenv("NATS_TEST_URL")
	if url == "" {
		t.Skip("NATS_TEST_URL not set")
	}
	nc, err := ConnectNATS(url)
	require.NoError(t, err)
	defer nc.Close()

	got := make(chan Event, 1)
	sub, err := Subscribe(nc, "user.*", func(ev Event) { got <- ev })
	require.NoError(t, err)
	defer sub.Unsubscribe()
	require.NoError(t, nc.Flush())

	sent := Event{Type: UserFollowed, ActorID: "a", TargetID: "b", Timestamp: time.Now().UTC().Truncate(time.Second), Recipients: []string{"b"}}
	require.NoError(t, NewNATSPublisher(nc, "node-a").Publish(context.Background(), sent))

	select {
	case ev := <-got:
		assert.Equal(t, UserFollowed, ev.Type)
		assert.Equal(t, "b", ev.TargetID)
		assert.True(t, sent.Timestamp.Equal(ev.Timestamp))
		assert.Equal(t, []string{"b"}, ev.Recipients)
		assert.Equal(t, "node-a", ev.Origin)
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}
}

func TestRelayBetweenInstances(t *testing.T) {
	url := os.Getenv("NATS_TEST_URL")
	if url == "" {
		t.Skip("NATS_TEST_URL not set")
	}
	nc, err := ConnectNATS(url)
	require.NoError(t, err)
	defer nc.Close()

	got := make(chan Event, 4)
	local := publisherFunc(func(ev Event) { got <- ev })
	sub, err := Relay(nc, "node-a", local)
	require.NoError(t, err)
	defer sub.Unsubscribe()
	require.NoError(t, nc.Flush())

	ctx := context.Background()
	require.NoError(t, NewNATSPublisher(nc, "node-a").Publish(ctx, Event{Type: PostCreated, ActorID: "self"}))
	require.NoError(t, NewNATSPublisher(nc, "node-b").Publish(ctx, Event{Type: PostCreated, ActorID: "peer", Recipients: []string{"u9"}}))

	select {
	case ev := <-got:
		assert.Equal(t, "peer", ev.ActorID)
		assert.Equal(t, []string{"u9"}, ev.Recipients)
	case <-time.After(2 * time.Second):
		t.Fatal("event not relayed")
	}
	select {
	case ev := <-got:
		t.Fatalf("own event relayed back: %+v", ev)
	case <-time.After(200 * time.Millisecond):
	}
}

type publisherFunc func(Event)

func (f publisherFunc) Publish(_ context.Context, ev Event) error {
	f(ev)
	return nil
}
