package model

import "time"

// Token is stored in the tokens collection keyed by its ID. Expirations are
// epoch milliseconds.
type Token struct {
	ID           string        `json:"id"`
	Email        string        `json:"email"`
	Expires      int64         `json:"expires"`
	RefreshToken *RefreshToken `json:"refreshToken,omitempty"`
}

type RefreshToken struct {
	ID      string `json:"id"`
	Expires int64  `json:"expires"`
}

func (t Token) Active(now time.Time) bool {
	return now.UnixMilli() < t.Expires
}

// Refreshable reports whether an expired token can still be rotated.
func (t Token) Refreshable(now time.Time) bool {
	return t.RefreshToken != nil && t.RefreshToken.ID != "" && now.UnixMilli() < t.RefreshToken.Expires
}

func (t Token) ExpiresAt() time.Time {
	return time.UnixMilli(t.Expires)
}
