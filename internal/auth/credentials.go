package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/hyunwoo/tably/internal/model"
)

// Credentials holds the two fixed staff accounts. Passwords are hashed
// at startup so plaintexts never sit in memory past construction, and
// login comparisons are constant-time.
type Credentials struct {
	adminUser   string
	adminHash   []byte
	kitchenUser string
	kitchenHash []byte
}

// NewCredentials hashes the configured staff passwords.
func NewCredentials(adminUser, adminPass, kitchenUser, kitchenPass string) (*Credentials, error) {
	if adminUser == "" || adminPass == "" || kitchenUser == "" || kitchenPass == "" {
		return nil, fmt.Errorf("all staff usernames and passwords must be set")
	}
	if adminUser == kitchenUser {
		return nil, fmt.Errorf("admin and kitchen usernames must differ")
	}

	adminHash, err := bcrypt.GenerateFromPassword([]byte(adminPass), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing admin password: %w", err)
	}
	kitchenHash, err := bcrypt.GenerateFromPassword([]byte(kitchenPass), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing kitchen password: %w", err)
	}

	return &Credentials{
		adminUser:   adminUser,
		adminHash:   adminHash,
		kitchenUser: kitchenUser,
		kitchenHash: kitchenHash,
	}, nil
}

// Authenticate checks a username/password pair and returns the matching
// staff role.
func (c *Credentials) Authenticate(username, password string) (string, bool) {
	switch username {
	case c.adminUser:
		if bcrypt.CompareHashAndPassword(c.adminHash, []byte(password)) == nil {
			return model.RoleAdmin, true
		}
	case c.kitchenUser:
		if bcrypt.CompareHashAndPassword(c.kitchenHash, []byte(password)) == nil {
			return model.RoleKitchen, true
		}
	}
	return "", false
}
