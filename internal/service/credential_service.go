package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/tagship/tagship/internal/security"
	"github.com/tagship/tagship/internal/store"
)

type CredentialService struct {
	credentialStore store.CredentialStore
	encrypter       security.Encrypter
}

func NewCredentialService(
	s store.CredentialStore,
	encrypter security.Encrypter,
) *CredentialService {
	return &CredentialService{credentialStore: s, encrypter: encrypter}
}

func (s *CredentialService) CreateCredential(
	ctx context.Context,
	name, description, token string,
) (*store.Credential, error) {
	hash := s.encrypter.EncryptAES(token)
	c, err := s.credentialStore.CreateCredential(ctx, name, description, hash)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CredentialService) ListCredentials(ctx context.Context) ([]*store.Credential, error) {
	credentials, err := s.credentialStore.ListCredentials(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	return credentials, nil
}

func (s *CredentialService) UpdateCredential(
	ctx context.Context,
	credentialID int64,
	name, description string,
) error {
	return s.credentialStore.UpdateCredential(ctx, credentialID, name, description)
}

func (s *CredentialService) DeleteCredential(ctx context.Context, credentialID int64) error {
	return s.credentialStore.DeleteCredential(ctx, credentialID)
}
