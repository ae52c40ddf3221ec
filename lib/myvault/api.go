package myvault

import (
	"context"
)

// TokenVault is the durable key-value store that holds the bearer credentials
// of the admin front-end: one slot for the access token and one for the
// refresh token, keyed by configured names.
//
//go:generate mockgen -source=api.go -package myvault -destination vault_mock.go TokenVault
type TokenVault interface {
	Get(c context.Context, key string) (string, bool, error)
	Put(c context.Context, key string, value string) error
	Remove(c context.Context, key string) error
}
