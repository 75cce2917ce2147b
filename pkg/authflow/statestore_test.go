package authflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateStore_IssueAndConsume(t *testing.T) {
	store := newStateStore()

	state, err := store.Issue(time.Minute)
	require.NoError(t, err)
	assert.Len(t, state, 64)

	assert.True(t, store.ValidateAndConsume(state))
	assert.False(t, store.ValidateAndConsume(state), "states are single-use")
}

func TestStateStore_UnknownState(t *testing.T) {
	store := newStateStore()
	assert.False(t, store.ValidateAndConsume("never-issued"))
}

func TestStateStore_Expiry(t *testing.T) {
	store := newStateStore()

	state, err := store.Issue(-time.Second)
	require.NoError(t, err)
	assert.False(t, store.ValidateAndConsume(state))
}

func TestStateStore_StatesAreUnique(t *testing.T) {
	store := newStateStore()

	a, err := store.Issue(time.Minute)
	require.NoError(t, err)
	b, err := store.Issue(time.Minute)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
