package service

import (
	"context"
	"crypto/subtle"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"n3portal/internal/model"
)

var ErrInvalidCredentials = errors.New("invalid login or password")

// AuthService checks staff credentials against the configured login and
// bcrypt password hash.
type AuthService struct {
	login        string
	passwordHash []byte
}

func NewAuthService(login, passwordHash string) *AuthService {
	return &AuthService{login: login, passwordHash: []byte(passwordHash)}
}

func (s *AuthService) Authenticate(_ context.Context, login, password string) (*model.Staff, error) {
	if len(s.passwordHash) == 0 || s.login == "" {
		return nil, ErrInvalidCredentials
	}
	if subtle.ConstantTimeCompare([]byte(login), []byte(s.login)) != 1 {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &model.Staff{Login: login}, nil
}

// HashPassword produces the value expected in STAFF_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
