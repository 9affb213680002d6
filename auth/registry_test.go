package auth

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmcleod/graphgate/storage/memory"
)

func TestRegistryBootstrap(t *testing.T) {
	r := NewRegistry(memory.NewStore())

	require.NoError(t, r.Bootstrap("admin", "admin"))

	user, err := r.Get("admin")
	require.NoError(t, err)
	assert.True(t, user.MustChangePassword)
	assert.True(t, r.Verify("admin", "admin"))

	// A second bootstrap on a non-empty store is a no-op.
	require.NoError(t, r.Bootstrap("other", "other"))
	_, err = r.Get("other")
	assert.Error(t, err)
}

func TestRegistryRegister(t *testing.T) {
	r := NewRegistry(memory.NewStore())

	require.NoError(t, r.Register("alice", "secret123"))

	user, err := r.Get("alice")
	require.NoError(t, err)
	assert.False(t, user.MustChangePassword)
	assert.True(t, r.Verify("alice", "secret123"))
	assert.False(t, r.Verify("alice", "wrong"))

	assert.ErrorIs(t, r.Register("alice", "other"), ErrDuplicateUser)
	assert.ErrorIs(t, r.Register("", "pw"), ErrInvalidInput)
	assert.ErrorIs(t, r.Register("bob", ""), ErrInvalidInput)
}

func TestRegistryChangePassword(t *testing.T) {
	r := NewRegistry(memory.NewStore())
	require.NoError(t, r.Bootstrap("admin", "admin"))

	t.Run("WrongCurrent", func(t *testing.T) {
		assert.False(t, r.ChangePassword("admin", "nope", "newpass"))
		assert.True(t, r.Verify("admin", "admin"), "stored hash unchanged")
	})

	t.Run("SameAsCurrent", func(t *testing.T) {
		assert.False(t, r.ChangePassword("admin", "admin", "admin"))
	})

	t.Run("UnknownUser", func(t *testing.T) {
		assert.False(t, r.ChangePassword("ghost", "x", "y"))
	})

	t.Run("Success", func(t *testing.T) {
		require.True(t, r.ChangePassword("admin", "admin", "newpass"))
		assert.True(t, r.Verify("admin", "newpass"))
		assert.False(t, r.Verify("admin", "admin"))

		user, err := r.Get("admin")
		require.NoError(t, err)
		assert.False(t, user.MustChangePassword, "flag cleared on change")
	})
}

func TestRegistryConcurrentRegister(t *testing.T) {
	r := NewRegistry(memory.NewStore())

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = r.Register("alice", "secret123")
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrDuplicateUser)
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one concurrent register may win")
}

func TestRegistryVerifyUnknown(t *testing.T) {
	r := NewRegistry(memory.NewStore())
	assert.False(t, r.Verify("nobody", "pw"))
}
