package service

import (
	"context"
	"errors"
	"time"

	"github.com/Payphone-Digital/midas/internal/dto"
	apperrors "github.com/Payphone-Digital/midas/internal/errors"
	"github.com/Payphone-Digital/midas/internal/model"
	"github.com/Payphone-Digital/midas/internal/repository"
	ctxutil "github.com/Payphone-Digital/midas/pkg/context"
	"github.com/Payphone-Digital/midas/pkg/logger"
	"github.com/Payphone-Digital/midas/pkg/store"
)

type TokenService struct {
	users        *repository.UserRepository
	tokens       *repository.TokenRepository
	hasher       *PasswordHasher
	accessTTL    time.Duration
	refreshTTL   time.Duration
	maxExtension int
	now          func() time.Time
	newID        func() (string, error)
}

func NewTokenService(users *repository.UserRepository, tokens *repository.TokenRepository, hasher *PasswordHasher, accessTTL, refreshTTL time.Duration, maxExtensionHours int) *TokenService {
	return &TokenService{
		users:        users,
		tokens:       tokens,
		hasher:       hasher,
		accessTTL:    accessTTL,
		refreshTTL:   refreshTTL,
		maxExtension: maxExtensionHours,
		now:          time.Now,
		newID:        newTokenID,
	}
}

// Login checks the password and issues a new session for the user.
func (s *TokenService) Login(ctx context.Context, req dto.CreateTokenRequest) (*dto.TokenResponse, error) {
	ctx = ctxutil.NewContextWithRequest(ctx, "service", "TokenService.Login")

	user, err := s.users.Get(ctx, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			logger.LogAuth(req.Email, "login", false)
			return nil, apperrors.ErrUserNotFound
		}
		logger.ErrorWithContext(ctx, "Failed to read user").String("email", req.Email).Err(err).Log()
		return nil, apperrors.Internal(err)
	}

	if !s.hasher.Check(user.Password, req.Password) {
		logger.LogAuth(req.Email, "login", false)
		return nil, apperrors.ErrIncorrectPassword
	}

	token, err := s.IssueSession(ctx, user)
	if err != nil {
		return nil, err
	}

	logger.LogAuth(req.Email, "login", true)
	resp := dto.NewTokenResponse(*token)
	return &resp, nil
}

// IssueSession mints an access token with an embedded refresh token,
// replaces any previous token of the user and links the new one to it.
func (s *TokenService) IssueSession(ctx context.Context, user *model.User) (*model.Token, error) {
	ctx = ctxutil.NewContextWithRequest(ctx, "service", "TokenService.IssueSession")

	accessID, err := s.newID()
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	refreshID, err := s.newID()
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	now := s.now()
	token := &model.Token{
		ID:      accessID,
		Email:   user.Email,
		Expires: now.Add(s.accessTTL).UnixMilli(),
		RefreshToken: &model.RefreshToken{
			ID:      refreshID,
			Expires: now.Add(s.refreshTTL).UnixMilli(),
		},
	}

	if user.HasToken != "" {
		if err := s.tokens.Delete(ctx, user.HasToken); err != nil && !errors.Is(err, store.ErrNotFound) {
			logger.ErrorWithContext(ctx, "Failed to delete previous token").
				String("email", user.Email).
				Token("token", user.HasToken).
				Err(err).
				Log()
			return nil, apperrors.Internal(err)
		}
	}

	if err := s.tokens.Create(ctx, token); err != nil {
		logger.ErrorWithContext(ctx, "Failed to create token").String("email", user.Email).Err(err).Log()
		return nil, apperrors.Internal(err)
	}

	user.HasToken = token.ID
	if err := s.users.Update(ctx, user); err != nil {
		logger.ErrorWithContext(ctx, "Failed to link token to user").String("email", user.Email).Err(err).Log()
		return nil, apperrors.Internal(err)
	}

	logger.InfoWithContext(ctx, "Session issued").
		String("email", user.Email).
		Token("token", token.ID).
		Log()
	return token, nil
}

func (s *TokenService) Get(ctx context.Context, tokenID string) (*dto.TokenResponse, error) {
	token, err := s.tokens.Get(ctx, tokenID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.ErrTokenNotFound
		}
		return nil, apperrors.Internal(err)
	}

	resp := dto.NewTokenResponse(*token)
	return &resp, nil
}

// Extend pushes the access expiration back by whole hours without rotating
// the token.
func (s *TokenService) Extend(ctx context.Context, tokenID string, hours int) (*dto.TokenResponse, error) {
	ctx = ctxutil.NewContextWithRequest(ctx, "service", "TokenService.Extend")

	if hours < 1 || hours > s.maxExtension {
		return nil, apperrors.ErrExtensionHours
	}

	token, err := s.tokens.Get(ctx, tokenID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.ErrTokenNotFound
		}
		return nil, apperrors.Internal(err)
	}

	token.Expires += (time.Duration(hours) * time.Hour).Milliseconds()
	if err := s.tokens.Update(ctx, token); err != nil {
		logger.ErrorWithContext(ctx, "Failed to extend token").Token("token", tokenID).Err(err).Log()
		return nil, apperrors.Internal(err)
	}

	logger.InfoWithContext(ctx, "Token extended").
		Token("token", tokenID).
		Int("hours", hours).
		Log()

	resp := dto.NewTokenResponse(*token)
	return &resp, nil
}

// Revoke deletes the session and unlinks it from its user.
func (s *TokenService) Revoke(ctx context.Context, tokenID, email string) error {
	ctx = ctxutil.NewContextWithRequest(ctx, "service", "TokenService.Revoke")

	if err := s.tokens.Delete(ctx, tokenID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperrors.ErrTokenNotFound
		}
		return apperrors.Internal(err)
	}

	user, err := s.users.Get(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return apperrors.Internal(err)
	}
	if user.HasToken == tokenID {
		user.HasToken = ""
		if err := s.users.Update(ctx, user); err != nil {
			logger.ErrorWithContext(ctx, "Failed to unlink revoked token").String("email", email).Err(err).Log()
			return apperrors.Internal(err)
		}
	}

	logger.LogAuth(email, "logout", true)
	return nil
}
