package repository

import (
	"context"

	"github.com/Payphone-Digital/midas/internal/constants"
	"github.com/Payphone-Digital/midas/internal/model"
	ctxutil "github.com/Payphone-Digital/midas/pkg/context"
	"github.com/Payphone-Digital/midas/pkg/logger"
	"github.com/Payphone-Digital/midas/pkg/store"
)

type UserRepository struct {
	store store.Store
}

func NewUserRepository(s store.Store) *UserRepository {
	return &UserRepository{store: s}
}

func (r *UserRepository) Get(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.store.Read(ctx, constants.CollectionUsers, email, &user); err != nil {
		return nil, err
	}
	if user.Email == "" {
		user.Email = email
	}
	return &user, nil
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	ctx = ctxutil.NewContextWithRequest(ctx, "repository", "UserRepository.Create")

	if err := r.store.Create(ctx, constants.CollectionUsers, user.Email, user); err != nil {
		logger.WarnWithContext(ctx, "Failed to create user").
			String("email", user.Email).
			Err(err).
			Log()
		return err
	}
	return nil
}

func (r *UserRepository) Update(ctx context.Context, user *model.User) error {
	return r.store.Update(ctx, constants.CollectionUsers, user.Email, user)
}

func (r *UserRepository) Delete(ctx context.Context, email string) error {
	return r.store.Delete(ctx, constants.CollectionUsers, email)
}

func (r *UserRepository) Exists(ctx context.Context, email string) (bool, error) {
	return r.store.Exists(ctx, constants.CollectionUsers, email)
}
