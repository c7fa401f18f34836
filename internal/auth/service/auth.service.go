package service

import (
	"context"
	"errors"
	"strings"

	"sosmed/internal/auth/model"
	userModel "sosmed/internal/user/model"
	"sosmed/pkg/apperror"
	"sosmed/pkg/monitoring"
	"sosmed/pkg/token"
	"sosmed/store"

	"golang.org/x/crypto/bcrypt"
)

type AccountStore interface {
	Create(ctx context.Context, acc *store.Account) error
	FindByUsername(ctx context.Context, username string) (*store.Account, error)
}

type AuthService struct {
	Repo       AccountStore
	Tokens     *token.Issuer
	BcryptCost int
}

func NewAuthService(repo AccountStore, tokens *token.Issuer, bcryptCost int) *AuthService {
	return &AuthService{Repo: repo, Tokens: tokens, BcryptCost: bcryptCost}
}

func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (*userModel.AuthResponse, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return nil, apperror.New(apperror.ErrBadRequest, "Username and password are required")
	}

	existing, err := s.Repo.FindByUsername(ctx, username)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, apperror.Internal(err)
	}
	if existing != nil {
		return nil, apperror.New(apperror.ErrConflict, "User already exists")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.BcryptCost)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	acc := &store.Account{
		Username:       username,
		Password:       string(hashed),
		Firstname:      req.Firstname,
		Lastname:       req.Lastname,
		ProfilePicture: req.ProfilePicture,
		CoverPicture:   req.CoverPicture,
		About:          req.About,
		LivesIn:        req.LivesIn,
		WorksAt:        req.WorksAt,
		Relationship:   req.Relationship,
		Country:        req.Country,
	}
	// The unique index catches a concurrent registration of the same name.
	if err := s.Repo.Create(ctx, acc); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperror.New(apperror.ErrConflict, "User already exists")
		}
		return nil, apperror.Internal(err)
	}

	tok, err := s.Tokens.Issue(acc.Username, acc.ID.Hex())
	if err != nil {
		return nil, apperror.Internal(err)
	}
	monitoring.RegisterSuccess.Inc()
	return &userModel.AuthResponse{User: acc, Token: tok}, nil
}

func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (*userModel.AuthResponse, error) {
	acc, err := s.Repo.FindByUsername(ctx, strings.TrimSpace(req.Username))
	if errors.Is(err, store.ErrNotFound) {
		monitoring.LoginFailure.WithLabelValues("unknown_user").Inc()
		return nil, apperror.New(apperror.ErrNotFound, "User does not exists")
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acc.Password), []byte(req.Password)); err != nil {
		monitoring.LoginFailure.WithLabelValues("wrong_password").Inc()
		return nil, apperror.New(apperror.ErrInvalidCredential, "wrong password")
	}

	tok, err := s.Tokens.Issue(acc.Username, acc.ID.Hex())
	if err != nil {
		return nil, apperror.Internal(err)
	}
	monitoring.LoginSuccess.Inc()
	return &userModel.AuthResponse{User: acc, Token: tok}, nil
}
