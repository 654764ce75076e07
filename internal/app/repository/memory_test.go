package repository

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_WithinTransactionRollback(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	user := newAdmin("admin@example.com", true)
	require.NoError(t, store.Users().Create(ctx, user))
	require.NoError(t, store.ResetTokens().Create(ctx, newToken("tok", user, issued)))

	boom := errors.New("boom")
	err := store.WithinTransaction(ctx, func(repos Repositories) error {
		require.NoError(t, repos.ResetTokens.MarkUsed(ctx, "tok", issued.Add(time.Minute)))
		require.NoError(t, repos.Users.UpdatePasswordHash(ctx, user.ID, "changed"))
		require.NoError(t, repos.ResetTokens.Create(ctx, newToken("extra", user, issued)))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	found, err := store.ResetTokens().FindByToken(ctx, "tok")
	require.NoError(t, err)
	assert.False(t, found.Used)

	_, err = store.ResetTokens().FindByToken(ctx, "extra")
	assert.ErrorIs(t, err, ErrNotFound)

	stored, err := store.Users().FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "hashedpassword", stored.PasswordHash)
}

func TestMemoryStore_CancelledContext(t *testing.T) {
	store := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := store.WithinTransaction(ctx, func(repos Repositories) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestMemoryStore_SetActive(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	user := newAdmin("admin@example.com", true)
	require.NoError(t, store.Users().Create(ctx, user))

	store.SetActive(user.ID, false)
	_, err := store.Users().FindActiveByEmail(ctx, user.Email)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.Users().UpdatePasswordHash(ctx, user.ID, "x"), ErrNotFound)
}

func TestMemoryStore_ConcurrentClaim(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	user := newAdmin("admin@example.com", true)
	require.NoError(t, store.Users().Create(ctx, user))
	require.NoError(t, store.ResetTokens().Create(ctx, newToken("tok", user, issued)))

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if store.ResetTokens().MarkUsed(ctx, "tok", issued.Add(time.Minute)) == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
}
