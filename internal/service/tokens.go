package service

import (
	"context"
	"errors"

	"github.com/tagship/tagship/internal/security"
	"github.com/tagship/tagship/internal/store"
)

// EnvTokenSource serves a token handed in from the environment. Used by
// the one-shot CLI where no credential store exists.
type EnvTokenSource struct {
	Value string
}

func (s EnvTokenSource) Token(ctx context.Context) (string, error) {
	if s.Value == "" {
		return "", errors.New("no publish token configured")
	}
	return s.Value, nil
}

// StoreTokenSource decrypts the named credential from the store at the
// moment it is needed. The plaintext never leaves the publish stage.
type StoreTokenSource struct {
	credentials store.CredentialStore
	encrypter   security.Encrypter
	name        string
}

func NewStoreTokenSource(
	credentials store.CredentialStore,
	encrypter security.Encrypter,
	name string,
) *StoreTokenSource {
	return &StoreTokenSource{
		credentials: credentials,
		encrypter:   encrypter,
		name:        name,
	}
}

func (s *StoreTokenSource) Token(ctx context.Context) (string, error) {
	c, err := s.credentials.ReadCredentialByName(ctx, s.name)
	if err != nil {
		return "", err
	}
	plain, err := s.encrypter.DecryptAES(c.TokenHash)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}
