package dto

import (
	"time"

	"github.com/Payphone-Digital/midas/internal/model"
)

type CreateTokenRequest struct {
	Email    string `json:"email" binding:"required,midasemail"`
	Password string `json:"password" binding:"required"`
}

type ExtendTokenRequest struct {
	HoursToExtend int `json:"hoursToExtend" binding:"required,min=1"`
}

type TokenResponse struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	Expires        time.Time `json:"expires"`
	RefreshExpires time.Time `json:"refreshExpires,omitzero"`
}

func NewTokenResponse(t model.Token) TokenResponse {
	resp := TokenResponse{
		ID:      t.ID,
		Email:   t.Email,
		Expires: t.ExpiresAt().UTC(),
	}
	if t.RefreshToken != nil {
		resp.RefreshExpires = time.UnixMilli(t.RefreshToken.Expires).UTC()
	}
	return resp
}
