package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"sosmed/internal/post/model"
	"sosmed/messaging"
	"sosmed/pkg/apperror"
	"sosmed/pkg/logger"
	"sosmed/pkg/monitoring"
	"sosmed/store"
)

type PostStore interface {
	Create(ctx context.Context, post *store.Post) error
	FindByID(ctx context.Context, id string) (*store.Post, error)
	FindByUser(ctx context.Context, userID string) ([]store.Post, error)
	Update(ctx context.Context, id string, patch store.PostPatch) error
	Delete(ctx context.Context, id string) error
	AddLike(ctx context.Context, id, accountID string) error
	RemoveLike(ctx context.Context, id, accountID string) error
	FollowingPosts(ctx context.Context, accountID string) ([]store.Post, error)
}

// AccountFinder resolves the author of a new post to notify its followers.
type AccountFinder interface {
	FindByID(ctx context.Context, id string) (*store.Account, error)
}

type PostService struct {
	Repo   PostStore
	Users  AccountFinder
	Events messaging.Publisher
}

func NewPostService(repo PostStore, users AccountFinder, events messaging.Publisher) *PostService {
	if events == nil {
		events = messaging.Nop{}
	}
	return &PostService{Repo: repo, Users: users, Events: events}
}

var errPostNotFound = apperror.New(apperror.ErrNotFound, "Post not found")

// CreatePost stores a post for req.UserID, or for the caller when the
// request names no author.
func (s *PostService) CreatePost(ctx context.Context, callerID string, req model.CreatePostRequest) (*store.Post, error) {
	authorID := strings.TrimSpace(req.UserID)
	if authorID == "" {
		authorID = callerID
	}
	authorID = store.Canonical(authorID)
	if strings.TrimSpace(req.Desc) == "" && strings.TrimSpace(req.Image) == "" {
		return nil, apperror.New(apperror.ErrBadRequest, "Post needs a description or an image")
	}

	post := &store.Post{UserID: authorID, Desc: req.Desc, Image: req.Image}
	if err := s.Repo.Create(ctx, post); err != nil {
		return nil, apperror.Internal(err)
	}
	monitoring.PostsCreated.Inc()

	if author, err := s.Users.FindByID(ctx, authorID); err == nil && len(author.Followers) > 0 {
		s.publish(ctx, messaging.Event{
			Type:       messaging.PostCreated,
			ActorID:    authorID,
			PostID:     post.ID.Hex(),
			Timestamp:  post.CreatedAt,
			Recipients: author.Followers,
		})
	}
	return post, nil
}

func (s *PostService) GetPost(ctx context.Context, id string) (*store.Post, error) {
	post, err := s.Repo.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, errPostNotFound
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return post, nil
}

func (s *PostService) UpdatePost(ctx context.Context, id, callerID string, req model.UpdatePostRequest) error {
	if _, err := s.owned(ctx, id, callerID); err != nil {
		return err
	}
	if err := s.Repo.Update(ctx, id, req.Patch()); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errPostNotFound
		}
		return apperror.Internal(err)
	}
	return nil
}

func (s *PostService) DeletePost(ctx context.Context, id, callerID string) error {
	if _, err := s.owned(ctx, id, callerID); err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errPostNotFound
		}
		return apperror.Internal(err)
	}
	return nil
}

func (s *PostService) owned(ctx context.Context, id, callerID string) (*store.Post, error) {
	post, err := s.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if store.Canonical(post.UserID) != store.Canonical(callerID) {
		return nil, apperror.New(apperror.ErrForbidden, "Action forbidden")
	}
	return post, nil
}

// ToggleLike likes the post for accountID, or removes the like if present.
func (s *PostService) ToggleLike(ctx context.Context, id, accountID string) (model.LikeResult, error) {
	accountID = store.Canonical(accountID)
	post, err := s.GetPost(ctx, id)
	if err != nil {
		return model.LikeResult{}, err
	}

	liked := !post.LikedBy(accountID)
	if liked {
		err = s.Repo.AddLike(ctx, id, accountID)
	} else {
		err = s.Repo.RemoveLike(ctx, id, accountID)
	}
	if errors.Is(err, store.ErrNotFound) {
		return model.LikeResult{}, errPostNotFound
	}
	if err != nil {
		return model.LikeResult{}, apperror.Internal(err)
	}

	if liked && post.UserID != accountID {
		s.publish(ctx, messaging.Event{
			Type:       messaging.PostLiked,
			ActorID:    accountID,
			TargetID:   post.UserID,
			PostID:     id,
			Timestamp:  time.Now().UTC(),
			Recipients: []string{post.UserID},
		})
	}
	return model.LikeResult{Liked: liked}, nil
}

// Timeline returns the account's own posts and the posts of every account
// it follows, newest first.
func (s *PostService) Timeline(ctx context.Context, accountID string) ([]store.Post, error) {
	accountID = store.Canonical(accountID)
	following, err := s.Repo.FollowingPosts(ctx, accountID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperror.New(apperror.ErrNotFound, "No such user exists")
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}

	own, err := s.Repo.FindByUser(ctx, accountID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return MergeTimeline(own, following), nil
}

// MergeTimeline concatenates own and following and sorts the result by
// creation time, newest first. Equal timestamps keep their input order.
func MergeTimeline(own, following []store.Post) []store.Post {
	feed := make([]store.Post, 0, len(own)+len(following))
	feed = append(feed, own...)
	feed = append(feed, following...)
	sort.SliceStable(feed, func(i, j int) bool {
		return feed[i].CreatedAt.After(feed[j].CreatedAt)
	})
	return feed
}

func (s *PostService) publish(ctx context.Context, ev messaging.Event) {
	if err := s.Events.Publish(ctx, ev); err != nil {
		logger.Sugar.Warnf("Failed to publish %s: %v", ev.Type, err)
	}
}
