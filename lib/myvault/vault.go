package myvault

import (
	"context"

	"github.com/MarcGrol/useradminclient/lib/mystore"
)

type storedToken struct {
	Value string `datastore:",noindex"`
}

type storeVault struct {
	store mystore.Store[storedToken]
}

// New returns a vault on top of mystore: in-memory locally,
// Datastore-backed when running on Google cloud.
func New(c context.Context) (TokenVault, func(), error) {
	store, cleanup, err := mystore.New[storedToken](c)
	if err != nil {
		return nil, nil, err
	}

	return &storeVault{
		store: store,
	}, cleanup, nil
}

func (v *storeVault) Get(c context.Context, key string) (string, bool, error) {
	token, exists, err := v.store.Get(c, key)
	if err != nil {
		return "", false, err
	}
	if !exists || token.Value == "" {
		return "", false, nil
	}

	return token.Value, true, nil
}

func (v *storeVault) Put(c context.Context, key string, value string) error {
	return v.store.Put(c, key, storedToken{Value: value})
}

func (v *storeVault) Remove(c context.Context, key string) error {
	return v.store.Remove(c, key)
}
