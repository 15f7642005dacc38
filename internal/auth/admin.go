package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost matches bcrypt's default; the hash is computed once per process.
const bcryptCost = 10

// maxPasswordBytes is the longest input bcrypt accepts.
const maxPasswordBytes = 72

var (
	// ErrEmptyCredentials is returned when the admin username or password is blank.
	ErrEmptyCredentials = errors.New("admin username and password must be set")
	// ErrPasswordTooLong is returned when the admin password exceeds bcrypt's input limit.
	ErrPasswordTooLong = fmt.Errorf("admin password must be at most %d bytes", maxPasswordBytes)
)

// Admin holds the single shared admin credential. The password is kept only as a bcrypt hash.
type Admin struct {
	username     string
	passwordHash []byte
}

// NewAdmin resolves the configured credential pair once at startup.
func NewAdmin(username, password string) (*Admin, error) {
	if username == "" || password == "" {
		return nil, ErrEmptyCredentials
	}
	if len(password) > maxPasswordBytes {
		return nil, fmt.Errorf("%w (got %d)", ErrPasswordTooLong, len(password))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}

	return &Admin{username: username, passwordHash: hash}, nil
}

// Username returns the configured admin name.
func (a *Admin) Username() string {
	return a.username
}

// Verify reports whether the supplied pair matches the admin credential.
func (a *Admin) Verify(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	passOK := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)) == nil
	return userOK && passOK
}
