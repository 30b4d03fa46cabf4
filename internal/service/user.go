package service

import (
	"context"
	"errors"
	"strings"

	"github.com/Payphone-Digital/midas/internal/constants"
	"github.com/Payphone-Digital/midas/internal/dto"
	apperrors "github.com/Payphone-Digital/midas/internal/errors"
	"github.com/Payphone-Digital/midas/internal/model"
	"github.com/Payphone-Digital/midas/internal/repository"
	ctxutil "github.com/Payphone-Digital/midas/pkg/context"
	"github.com/Payphone-Digital/midas/pkg/logger"
	"github.com/Payphone-Digital/midas/pkg/store"
	"github.com/Payphone-Digital/midas/pkg/validation"
)

type UserService struct {
	users  *repository.UserRepository
	tokens *repository.TokenRepository
	auth   *TokenService
	hasher *PasswordHasher
}

func NewUserService(users *repository.UserRepository, tokens *repository.TokenRepository, auth *TokenService, hasher *PasswordHasher) *UserService {
	return &UserService{users: users, tokens: tokens, auth: auth, hasher: hasher}
}

// Register creates the account with an empty cart and logs the user in.
func (s *UserService) Register(ctx context.Context, req dto.CreateUserRequest) (*dto.TokenResponse, error) {
	ctx = ctxutil.NewContextWithRequest(ctx, "service", "UserService.Register")

	email := strings.TrimSpace(req.Email)
	logger.InfoWithContext(ctx, "Creating new user").String("email", email).Log()

	exists, err := s.users.Exists(ctx, email)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if exists {
		return nil, apperrors.ErrUserExists
	}

	hashed, err := s.hasher.Hash(req.Password)
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to hash password").String("email", email).Err(err).Log()
		return nil, apperrors.Internal(err)
	}

	user := &model.User{
		Name:          strings.TrimSpace(req.Name),
		Email:         email,
		Password:      hashed,
		StreetAddress: strings.TrimSpace(req.StreetAddress),
		Cart:          model.EmptyCart(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrExists) {
			return nil, apperrors.ErrUserExists
		}
		return nil, apperrors.Internal(err)
	}

	token, err := s.auth.IssueSession(ctx, user)
	if err != nil {
		return nil, err
	}

	logger.InfoWithContext(ctx, "User created successfully").String("email", email).Log()
	resp := dto.NewTokenResponse(*token)
	return &resp, nil
}

func (s *UserService) Get(ctx context.Context, email string) (*dto.UserResponse, error) {
	user, err := s.load(ctx, email)
	if err != nil {
		return nil, err
	}
	resp := dto.NewUserResponse(*user)
	return &resp, nil
}

// Update applies the valid fields of req. Invalid values are dropped; an
// email change moves the record and its session to the new key.
func (s *UserService) Update(ctx context.Context, email string, req dto.UpdateUserRequest) (*dto.UserResponse, error) {
	ctx = ctxutil.NewContextWithRequest(ctx, "service", "UserService.Update")

	user, err := s.load(ctx, email)
	if err != nil {
		return nil, err
	}

	changed := false
	if name := strings.TrimSpace(req.Name); name != "" && len(name) <= constants.MaxNameLength {
		user.Name = name
		changed = true
	}
	if addr := strings.TrimSpace(req.StreetAddress); validation.IsStreetAddress(addr) {
		user.StreetAddress = addr
		changed = true
	}
	if validation.IsPassword(req.Password) {
		hashed, err := s.hasher.Hash(req.Password)
		if err != nil {
			return nil, apperrors.Internal(err)
		}
		user.Password = hashed
		changed = true
	}
	newEmail := strings.TrimSpace(req.Email)
	moveTo := ""
	if validation.IsEmail(newEmail) && newEmail != email {
		moveTo = newEmail
		changed = true
	}
	if !changed {
		return nil, apperrors.ErrNoDataToUpdate
	}

	if moveTo == "" {
		if err := s.users.Update(ctx, user); err != nil {
			logger.ErrorWithContext(ctx, "Failed to update user").String("email", email).Err(err).Log()
			return nil, apperrors.Internal(err)
		}
	} else if err := s.move(ctx, user, moveTo); err != nil {
		return nil, err
	}

	logger.InfoWithContext(ctx, "User updated successfully").String("email", user.Email).Log()
	resp := dto.NewUserResponse(*user)
	return &resp, nil
}

func (s *UserService) move(ctx context.Context, user *model.User, newEmail string) error {
	oldEmail := user.Email
	user.Email = newEmail

	if err := s.users.Create(ctx, user); err != nil {
		user.Email = oldEmail
		if errors.Is(err, store.ErrExists) {
			return apperrors.ErrUserExists
		}
		return apperrors.Internal(err)
	}

	var moved *model.Token
	if user.HasToken != "" {
		token, err := s.tokens.Get(ctx, user.HasToken)
		switch {
		case err == nil:
			token.Email = newEmail
			if err := s.tokens.Update(ctx, token); err != nil {
				s.undoMove(ctx, user, oldEmail, nil)
				return apperrors.Internal(err)
			}
			moved = token
		case !errors.Is(err, store.ErrNotFound):
			s.undoMove(ctx, user, oldEmail, nil)
			return apperrors.Internal(err)
		}
	}

	if err := s.users.Delete(ctx, oldEmail); err != nil && !errors.Is(err, store.ErrNotFound) {
		logger.ErrorWithContext(ctx, "Failed to delete user under previous email").
			String("email", oldEmail).
			Err(err).
			Log()
		s.undoMove(ctx, user, oldEmail, moved)
		return apperrors.Internal(err)
	}

	logger.InfoWithContext(ctx, "User email changed").
		String("old_email", oldEmail).
		String("email", newEmail).
		Log()
	return nil
}

// undoMove hands the session back to oldEmail and drops the record created
// under the new email. Failures are logged and the move error still returned.
func (s *UserService) undoMove(ctx context.Context, user *model.User, oldEmail string, moved *model.Token) {
	ctx = context.WithoutCancel(ctx)
	newEmail := user.Email
	user.Email = oldEmail

	if moved != nil {
		moved.Email = oldEmail
		if err := s.tokens.Update(ctx, moved); err != nil {
			logger.ErrorWithContext(ctx, "Failed to return token to previous email").
				String("email", oldEmail).
				Token("token", moved.ID).
				Err(err).
				Log()
		}
	}
	if err := s.users.Delete(ctx, newEmail); err != nil && !errors.Is(err, store.ErrNotFound) {
		logger.ErrorWithContext(ctx, "Failed to drop user created under new email").
			String("email", newEmail).
			Err(err).
			Log()
	}
}

// Delete removes the user and its session.
func (s *UserService) Delete(ctx context.Context, email string) error {
	ctx = ctxutil.NewContextWithRequest(ctx, "service", "UserService.Delete")

	user, err := s.load(ctx, email)
	if err != nil {
		return err
	}

	if user.HasToken != "" {
		if err := s.tokens.Delete(ctx, user.HasToken); err != nil && !errors.Is(err, store.ErrNotFound) {
			return apperrors.Internal(err)
		}
	}
	if err := s.users.Delete(ctx, email); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperrors.ErrUserNotFound
		}
		return apperrors.Internal(err)
	}

	logger.InfoWithContext(ctx, "User deleted").String("email", email).Log()
	return nil
}

func (s *UserService) load(ctx context.Context, email string) (*model.User, error) {
	user, err := s.users.Get(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		logger.ErrorWithContext(ctx, "Failed to read user").String("email", email).Err(err).Log()
		return nil, apperrors.Internal(err)
	}
	return user, nil
}
