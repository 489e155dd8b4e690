package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrPasswordTooShort is returned when a password fails the minimum length check
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")

	// ErrWrongPassword is returned when a password does not match its hash
	ErrWrongPassword = errors.New("wrong password")
)

const minPasswordLength = 8

// HashPassword validates and hashes a plaintext password with bcrypt
func HashPassword(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", ErrPasswordTooShort
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares a plaintext password against a bcrypt hash
func CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrWrongPassword
	}
	return nil
}
