package model

// User is stored in the users collection keyed by email.
type User struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	StreetAddress string `json:"streetAddress"`
	// HasToken is the ID of the user's current access token, if any.
	HasToken string `json:"hasToken,omitempty"`
	Cart     Cart   `json:"cart"`
}
