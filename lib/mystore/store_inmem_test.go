package mystore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

type account struct {
	UID   string
	Email string
}

var (
	exampleAccount = account{UID: "123", Email: "admin@example.com"}
)

func TestStore(t *testing.T) {
	c := context.TODO()
	as, cleanup, err := NewInMemoryStore[account](c)
	assert.NoError(t, err)
	defer cleanup()

	t.Run("Get not found", func(t *testing.T) {
		_, found, err := as.Get(c, exampleAccount.UID)
		assert.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("Put", func(t *testing.T) {
		err = as.Put(c, exampleAccount.UID, exampleAccount)
		assert.NoError(t, err)
	})

	t.Run("Get found", func(t *testing.T) {
		a, found, err := as.Get(c, exampleAccount.UID)
		assert.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, account{UID: "123", Email: "admin@example.com"}, a)
	})

	t.Run("List", func(t *testing.T) {
		all, err := as.List(c)
		assert.NoError(t, err)
		assert.Equal(t, all, []account{exampleAccount})
	})

	t.Run("Remove", func(t *testing.T) {
		err := as.Remove(c, exampleAccount.UID)
		assert.NoError(t, err)

		_, found, err := as.Get(c, exampleAccount.UID)
		assert.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("Remove is idempotent", func(t *testing.T) {
		err := as.Remove(c, exampleAccount.UID)
		assert.NoError(t, err)
	})
}
