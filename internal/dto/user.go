package dto

import "github.com/Payphone-Digital/midas/internal/model"

type CreateUserRequest struct {
	Name          string `json:"name" binding:"required,max=100"`
	Email         string `json:"email" binding:"required,max=255,midasemail"`
	Password      string `json:"password" binding:"required,max=100,password"`
	StreetAddress string `json:"streetAddress" binding:"required,streetaddress"`
}

// UpdateUserRequest fields are filtered rather than rejected: invalid values
// are dropped, and an update with nothing left fails.
type UpdateUserRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	StreetAddress string `json:"streetAddress"`
}

type UserResponse struct {
	Name          string       `json:"name"`
	Email         string       `json:"email"`
	StreetAddress string       `json:"streetAddress"`
	Cart          CartResponse `json:"cart"`
}

func NewUserResponse(u model.User) UserResponse {
	return UserResponse{
		Name:          u.Name,
		Email:         u.Email,
		StreetAddress: u.StreetAddress,
		Cart:          NewCartResponse(u.Cart),
	}
}
