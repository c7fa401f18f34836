package messaging

import (
	"context"
	"errors"
	"time"
)

const (
	PostCreated    = "post.created"
	PostLiked      = "post.liked"
	UserFollowed   = "user.followed"
	UserUnfollowed = "user.unfollowed"
)

// Event describes one change to the social graph or to a post.
// Recipients are the accounts that should be notified in real time and
// Origin names the process that raised it; neither is sent to browsers.
type Event struct {
	Type       string    `json:"type"`
	ActorID    string    `json:"actorId"`
	TargetID   string    `json:"targetId,omitempty"`
	PostID     string    `json:"postId,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	Recipients []string  `json:"recipients,omitempty"`
	Origin     string    `json:"origin,omitempty"`
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Fanout hands every event to each publisher and joins their errors.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, ev Event) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
