package catalog

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials indicates an unknown user, a wrong password or an inactive account.
var ErrInvalidCredentials = eris.New("invalid curator credentials")

const minPasswordLength = 8

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", eris.Errorf("password must be at least %d characters", minPasswordLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", eris.Wrap(err, "hashing password")
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the curator's hash.
func (c *Curator) CheckPassword(password string) bool {
	if c == nil || c.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password)) == nil
}

func (s *service) CreateCurator(ctx context.Context, username, password string) (*Curator, error) {
	trimmed := strings.TrimSpace(username)
	if trimmed == "" {
		return nil, eris.New("username is required")
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	curator := &Curator{Username: trimmed, PasswordHash: hash, Active: true}
	if err := s.repo.CreateCurator(ctx, curator); err != nil {
		s.recordError(ctx, logrus.Fields{"username": trimmed}, err, "creating curator")
		return nil, eris.Wrapf(err, "creating curator %s", trimmed)
	}
	return curator, nil
}

func (s *service) Authenticate(ctx context.Context, username, password string) (*Curator, error) {
	trimmed := strings.TrimSpace(username)
	if trimmed == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	curator, err := s.repo.CuratorByUsername(ctx, trimmed)
	if err != nil {
		s.recordError(ctx, logrus.Fields{"username": trimmed}, err, "loading curator")
		return nil, eris.Wrap(err, "authenticating curator")
	}
	if curator == nil || !curator.Active || !curator.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}
	return curator, nil
}
