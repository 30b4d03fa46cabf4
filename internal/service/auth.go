package service

import (
	"context"
	"errors"
	"time"

	apperrors "github.com/Payphone-Digital/midas/internal/errors"
	"github.com/Payphone-Digital/midas/internal/model"
	"github.com/Payphone-Digital/midas/internal/repository"
	ctxutil "github.com/Payphone-Digital/midas/pkg/context"
	"github.com/Payphone-Digital/midas/pkg/logger"
	"github.com/Payphone-Digital/midas/pkg/store"
	"github.com/Payphone-Digital/midas/pkg/validation"
	"golang.org/x/sync/errgroup"
)

// VerifyResult reports a successful verification. Rotated is set when an
// expired access token was replaced using its refresh token; the client must
// switch to Rotated.ID.
type VerifyResult struct {
	Valid   bool
	Rotated *model.Token
}

type Authenticator struct {
	users     *repository.UserRepository
	tokens    *repository.TokenRepository
	accessTTL time.Duration
	now       func() time.Time
	newID     func() (string, error)
}

func NewAuthenticator(users *repository.UserRepository, tokens *repository.TokenRepository, accessTTL time.Duration) *Authenticator {
	return &Authenticator{
		users:     users,
		tokens:    tokens,
		accessTTL: accessTTL,
		now:       time.Now,
		newID:     newTokenID,
	}
}

// Verify checks that tokenID is a live session of email, rotating it when
// only the refresh token is still valid.
func (a *Authenticator) Verify(ctx context.Context, tokenID, email string) (VerifyResult, error) {
	ctx = ctxutil.NewContextWithRequest(ctx, "service", "Authenticator.Verify")

	if !validation.IsTokenID(tokenID) {
		return VerifyResult{}, apperrors.ErrTokenMalformed
	}

	token, err := a.tokens.Get(ctx, tokenID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			logger.LogAuth(email, "verify", false)
			return VerifyResult{}, apperrors.ErrTokenNotFound
		}
		logger.ErrorWithContext(ctx, "Failed to read token").Token("token", tokenID).Err(err).Log()
		return VerifyResult{}, apperrors.Internal(err)
	}

	if token.Email != email {
		logger.WarnWithContext(ctx, "Token presented for another user").
			String("email", email).
			Token("token", tokenID).
			Log()
		return VerifyResult{}, apperrors.ErrTokenNotForUser
	}

	user, err := a.users.Get(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return VerifyResult{}, apperrors.ErrTokenNotForUser
		}
		logger.ErrorWithContext(ctx, "Failed to read token owner").String("email", email).Err(err).Log()
		return VerifyResult{}, apperrors.Internal(err)
	}
	if user.HasToken != tokenID {
		logger.WarnWithContext(ctx, "Token no longer linked to its user").
			String("email", email).
			Token("token", tokenID).
			Log()
		return VerifyResult{}, apperrors.ErrTokenNotForUser
	}

	now := a.now()
	if token.Active(now) {
		return VerifyResult{Valid: true}, nil
	}
	if !token.Refreshable(now) {
		logger.LogAuth(email, "verify", false)
		return VerifyResult{}, apperrors.ErrRefreshExpired
	}

	rotated, err := a.rotate(ctx, token, user, now)
	if err != nil {
		logger.ErrorWithContext(ctx, "Token rotation failed").
			String("email", email).
			Token("token", tokenID).
			Err(err).
			Log()
		return VerifyResult{}, apperrors.Internal(err)
	}

	logger.InfoWithContext(ctx, "Token rotated").
		String("email", email).
		Token("old_token", tokenID).
		Token("new_token", rotated.ID).
		Log()
	return VerifyResult{Valid: true, Rotated: rotated}, nil
}

// rotate replaces the expired access token. The three writes are issued
// together and are not atomic: a failure can leave partial state behind.
func (a *Authenticator) rotate(ctx context.Context, old *model.Token, user *model.User, now time.Time) (*model.Token, error) {
	id, err := a.newID()
	if err != nil {
		return nil, err
	}

	next := &model.Token{
		ID:           id,
		Email:        old.Email,
		Expires:      now.Add(a.accessTTL).UnixMilli(),
		RefreshToken: old.RefreshToken,
	}
	updated := *user
	updated.HasToken = id

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.tokens.Delete(gctx, old.ID) })
	g.Go(func() error { return a.tokens.Create(gctx, next) })
	g.Go(func() error { return a.users.Update(gctx, &updated) })
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return next, nil
}
