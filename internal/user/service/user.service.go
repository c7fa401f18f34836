package service

import (
	"context"
	"errors"
	"time"

	"sosmed/internal/user/model"
	"sosmed/messaging"
	"sosmed/pkg/apperror"
	"sosmed/pkg/logger"
	"sosmed/pkg/monitoring"
	"sosmed/pkg/token"
	"sosmed/store"

	"golang.org/x/crypto/bcrypt"
)

// UserStore is implemented by the MongoDB repository and the memory store.
type UserStore interface {
	FindByID(ctx context.Context, id string) (*store.Account, error)
	List(ctx context.Context) ([]store.Account, error)
	Update(ctx context.Context, id string, patch store.AccountPatch) (*store.Account, error)
	Delete(ctx context.Context, id string) error
	Follow(ctx context.Context, targetID, callerID string) error
	Unfollow(ctx context.Context, targetID, callerID string) error
}

type UserService struct {
	Repo       UserStore
	Tokens     *token.Issuer
	Events     messaging.Publisher
	BcryptCost int
}

func NewUserService(repo UserStore, tokens *token.Issuer, events messaging.Publisher, bcryptCost int) *UserService {
	if events == nil {
		events = messaging.Nop{}
	}
	return &UserService{Repo: repo, Tokens: tokens, Events: events, BcryptCost: bcryptCost}
}

func (s *UserService) GetUser(ctx context.Context, id string) (*store.Account, error) {
	acc, err := s.Repo.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperror.New(apperror.ErrNotFound, "No such user exists")
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return acc, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]store.Account, error) {
	accounts, err := s.Repo.List(ctx)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return accounts, nil
}

// UpdateUser applies the whitelisted profile fields and hands back a fresh token.
func (s *UserService) UpdateUser(ctx context.Context, targetID, callerID string, req model.UpdateUserRequest) (*model.AuthResponse, error) {
	targetID, callerID = store.Canonical(targetID), store.Canonical(callerID)
	if targetID != callerID {
		return nil, apperror.New(apperror.ErrForbidden, "Access Denied! you can only update your own profile")
	}

	patch := req.Patch()
	if patch.Password != nil {
		if *patch.Password == "" {
			return nil, apperror.New(apperror.ErrBadRequest, "Password cannot be empty")
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(*patch.Password), s.BcryptCost)
		if err != nil {
			return nil, apperror.Internal(err)
		}
		h := string(hashed)
		patch.Password = &h
	}

	acc, err := s.Repo.Update(ctx, targetID, patch)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperror.New(apperror.ErrNotFound, "No such user exists")
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}

	tok, err := s.Tokens.Issue(acc.Username, acc.ID.Hex())
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return &model.AuthResponse{User: acc, Token: tok}, nil
}

// DeleteUser removes the account when the caller owns it or is an admin.
// Posts and graph references to the account are left in place.
func (s *UserService) DeleteUser(ctx context.Context, targetID, callerID string) error {
	targetID, callerID = store.Canonical(targetID), store.Canonical(callerID)
	if targetID != callerID {
		caller, err := s.Repo.FindByID(ctx, callerID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return apperror.Internal(err)
		}
		if caller == nil || !caller.IsAdmin {
			return apperror.New(apperror.ErrForbidden, "Access Denied! you can only delete your own profile")
		}
	}

	err := s.Repo.Delete(ctx, targetID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return apperror.Internal(err)
	}
	return nil
}

func (s *UserService) Follow(ctx context.Context, targetID, callerID string) error {
	return s.changeFollow(ctx, targetID, callerID, true)
}

func (s *UserService) Unfollow(ctx context.Context, targetID, callerID string) error {
	return s.changeFollow(ctx, targetID, callerID, false)
}

func (s *UserService) changeFollow(ctx context.Context, targetID, callerID string, follow bool) error {
	targetID, callerID = store.Canonical(targetID), store.Canonical(callerID)
	if targetID == callerID {
		return apperror.New(apperror.ErrForbidden, "Action forbidden")
	}

	target, err := s.GetUser(ctx, targetID)
	if err != nil {
		return err
	}
	if _, err := s.GetUser(ctx, callerID); err != nil {
		return err
	}

	conflict := apperror.New(apperror.ErrConflict, "User is Already followed by you")
	if !follow {
		conflict = apperror.New(apperror.ErrConflict, "User is not followed by you")
	}
	if target.HasFollower(callerID) == follow {
		return conflict
	}

	if follow {
		err = s.Repo.Follow(ctx, targetID, callerID)
	} else {
		err = s.Repo.Unfollow(ctx, targetID, callerID)
	}
	switch {
	case errors.Is(err, store.ErrNoChange):
		return conflict
	case errors.Is(err, store.ErrNotFound):
		return apperror.New(apperror.ErrNotFound, "No such user exists")
	case err != nil:
		return apperror.Internal(err)
	}

	action, evType := "follow", messaging.UserFollowed
	if !follow {
		action, evType = "unfollow", messaging.UserUnfollowed
	}
	monitoring.Follows.WithLabelValues(action).Inc()
	s.publish(ctx, messaging.Event{
		Type:       evType,
		ActorID:    callerID,
		TargetID:   targetID,
		Timestamp:  time.Now().UTC(),
		Recipients: []string{targetID},
	})
	return nil
}

func (s *UserService) publish(ctx context.Context, ev messaging.Event) {
	if err := s.Events.Publish(ctx, ev); err != nil {
		logger.Sugar.Warnf("Failed to publish %s: %v", ev.Type, err)
	}
}
