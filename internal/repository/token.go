package repository

import (
	"context"

	"github.com/Payphone-Digital/midas/internal/constants"
	"github.com/Payphone-Digital/midas/internal/model"
	"github.com/Payphone-Digital/midas/pkg/store"
)

type TokenRepository struct {
	store store.Store
}

func NewTokenRepository(s store.Store) *TokenRepository {
	return &TokenRepository{store: s}
}

func (r *TokenRepository) Get(ctx context.Context, id string) (*model.Token, error) {
	var token model.Token
	if err := r.store.Read(ctx, constants.CollectionTokens, id, &token); err != nil {
		return nil, err
	}
	if token.ID == "" {
		token.ID = id
	}
	return &token, nil
}

func (r *TokenRepository) Create(ctx context.Context, token *model.Token) error {
	return r.store.Create(ctx, constants.CollectionTokens, token.ID, token)
}

func (r *TokenRepository) Update(ctx context.Context, token *model.Token) error {
	return r.store.Update(ctx, constants.CollectionTokens, token.ID, token)
}

func (r *TokenRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, constants.CollectionTokens, id)
}
