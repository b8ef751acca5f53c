package store

import "context"

// Credential holds one named publish token, AES encrypted at rest. The
// plaintext token only ever exists in memory inside the publish stage.
type Credential struct {
	CredentialID int64
	Name         string
	Description  string
	TokenHash    string

	Token string
}

type CredentialStore interface {
	CreateCredential(context.Context, string, string, string) (*Credential, error)
	ReadCredentialByName(context.Context, string) (*Credential, error)
	UpdateCredential(context.Context, int64, string, string) error
	DeleteCredential(context.Context, int64) error
	ListCredentials(context.Context) ([]*Credential, error)
}
