package service

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher bcrypts the HMAC-SHA256 digest of a password keyed with
// the hashing secret.
type PasswordHasher struct {
	secret []byte
	cost   int
}

func NewPasswordHasher(secret string) *PasswordHasher {
	return &PasswordHasher{secret: []byte(secret), cost: bcrypt.DefaultCost}
}

func (h *PasswordHasher) peppered(password string) []byte {
	mac := hmac.New(sha256.New, h.secret)
	mac.Write([]byte(password))
	return []byte(hex.EncodeToString(mac.Sum(nil)))
}

// Hash hashes password using bcrypt
func (h *PasswordHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword(h.peppered(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Check verifies password against hash
func (h *PasswordHasher) Check(hashed, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), h.peppered(password)) == nil
}

// newTokenID returns 12 random bytes as 24 lowercase hex characters.
func newTokenID() (string, error) {
	b := make([]byte, 12)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate token id: %w", err)
	}
	return hex.EncodeToString(b), nil
}
