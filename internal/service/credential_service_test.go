package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tagship/tagship/internal/security"
	"github.com/tagship/tagship/internal/store"

	_ "modernc.org/sqlite"
)

func newCredentialServiceOverSQLite(t *testing.T) (*CredentialService, *store.CredentialSQLiteStore) {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
	})
	store.RunMigrations(db, "migrations")

	credentialStore := store.NewCredentialSQLiteStore(db, db)
	encrypter := security.NewAESEncrypter([]byte("0123456789abcdef0123456789abcdef"))
	return NewCredentialService(credentialStore, encrypter), credentialStore
}

func TestCredentialService_UpdateCredential(t *testing.T) {
	t.Run("success - rename keeps the stored token decryptable", func(t *testing.T) {
		// arrange
		svc, credentialStore := newCredentialServiceOverSQLite(t)
		encrypter := security.NewAESEncrypter([]byte("0123456789abcdef0123456789abcdef"))
		created, err := svc.CreateCredential(
			context.Background(), "github", "release publishing", "ghp_example",
		)
		require.NoError(t, err)

		// act
		err = svc.UpdateCredential(
			context.Background(), created.CredentialID, "github-releases", "new description",
		)

		// assert
		assert.NoError(t, err)
		read, err := credentialStore.ReadCredentialByName(context.Background(), "github-releases")
		require.NoError(t, err)
		assert.Equal(t, "new description", read.Description)

		plain, err := encrypter.DecryptAES(read.TokenHash)
		require.NoError(t, err)
		assert.Equal(t, "ghp_example", string(plain))

		tokens := NewStoreTokenSource(credentialStore, encrypter, "github-releases")
		token, err := tokens.Token(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "ghp_example", token)
	})
}
