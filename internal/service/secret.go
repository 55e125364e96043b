package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/msomdec/catalog-admin/internal/domain"
)

const (
	secretRandomBytes  = 3
	maxGenerateCount   = 1000
	attemptsPerSecret  = 10
	defaultSecretGroup = "USER"
)

// SecretService issues registration keys.
type SecretService struct {
	secrets domain.RegisterSecretRepository
}

// NewSecretService creates a new SecretService.
func NewSecretService(secrets domain.RegisterSecretRepository) *SecretService {
	return &SecretService{secrets: secrets}
}

// Generate creates count new keys of the form PREFIX-CATEGORY-XXXXXX, where
// XXXXXX is six random upper-case hex digits. Keys that already exist are
// skipped and redrawn.
func (s *SecretService) Generate(ctx context.Context, count int, prefix, category string) ([]domain.RegisterSecret, error) {
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	category = strings.ToUpper(strings.TrimSpace(category))
	if category == "" {
		category = defaultSecretGroup
	}

	var v validation
	v.check(count > 0 && count <= maxGenerateCount, "count", fmt.Sprintf("count must be between 1 and %d", maxGenerateCount), nil)
	v.check(prefix != "", "prefix", "prefix is required", nil)
	if err := v.Err(); err != nil {
		return nil, err
	}

	created := make([]domain.RegisterSecret, 0, count)
	for attempts := 0; len(created) < count; attempts++ {
		if attempts >= count*attemptsPerSecret {
			return created, fmt.Errorf("generate secrets: gave up after %d attempts with %d of %d created", attempts, len(created), count)
		}

		code, err := randomHex(secretRandomBytes)
		if err != nil {
			return created, fmt.Errorf("generate secrets: %w", err)
		}

		secret := &domain.RegisterSecret{Secret: prefix + "-" + category + "-" + code}
		if err := s.secrets.Create(ctx, secret); err != nil {
			if errors.Is(err, domain.ErrDuplicateSecret) {
				continue
			}
			return created, fmt.Errorf("create secret: %w", err)
		}
		created = append(created, *secret)
	}
	return created, nil
}

// List returns every registration key.
func (s *SecretService) List(ctx context.Context) ([]domain.RegisterSecret, error) {
	return s.secrets.List(ctx)
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(b)), nil
}
