// Package adapters implements adapter interfaces from the application layer.
package adapters

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/kakeibo/backend/internal/application/adapter"
	domainerror "github.com/kakeibo/backend/internal/domain/error"
)

const (
	bcryptCost = 12

	minPasswordLength = 8
	// bcrypt ignores everything past 72 bytes.
	maxPasswordBytes = 72
)

type passwordService struct {
	cost int
}

// NewPasswordService creates a bcrypt-backed password service.
func NewPasswordService() adapter.PasswordService {
	return &passwordService{cost: bcryptCost}
}

func (s *passwordService) HashPassword(password string) (string, error) {
	if err := s.ValidatePasswordStrength(password); err != nil {
		return "", err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// VerifyPassword reports ErrInvalidCredentials for a wrong password or an
// account that never set one.
func (s *passwordService) VerifyPassword(hashedPassword, password string) error {
	if hashedPassword == "" {
		return fmt.Errorf("%w: account signs in with a login link or Google", domainerror.ErrInvalidCredentials)
	}
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return domainerror.ErrInvalidCredentials
	}
	return err
}

func (s *passwordService) ValidatePasswordStrength(password string) error {
	switch {
	case len(password) < minPasswordLength:
		return fmt.Errorf("%w: use at least %d characters", domainerror.ErrWeakPassword, minPasswordLength)
	case len(password) > maxPasswordBytes:
		return fmt.Errorf("%w: use at most %d bytes", domainerror.ErrWeakPassword, maxPasswordBytes)
	}
	return nil
}
