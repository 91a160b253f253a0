package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_Valid(t *testing.T) {
	assert.True(t, StatusActive.Valid())
	assert.True(t, StatusNeedsReview.Valid())
	assert.True(t, StatusExpiredArchived.Valid())
	assert.False(t, Status("archived").Valid())
	assert.False(t, Status("").Valid())
}

func TestStateEntry_Validate(t *testing.T) {
	first, err := ParseDate("2025-08-01")
	require.NoError(t, err)
	last, err := ParseDate("2025-08-15")
	require.NoError(t, err)

	t.Run("valid entry", func(t *testing.T) {
		entry := StateEntry{
			ExternalID: "src:abc",
			FirstSeen:  first,
			LastSeen:   last,
			Status:     StatusActive,
		}
		assert.NoError(t, entry.Validate())
	})

	t.Run("missing external id", func(t *testing.T) {
		entry := StateEntry{FirstSeen: first, LastSeen: last, Status: StatusActive}
		assert.Error(t, entry.Validate())
	})

	t.Run("unknown status", func(t *testing.T) {
		entry := StateEntry{
			ExternalID: "src:abc",
			FirstSeen:  first,
			LastSeen:   last,
			Status:     Status("gone"),
		}
		assert.Error(t, entry.Validate())
	})

	t.Run("last_seen before first_seen", func(t *testing.T) {
		entry := StateEntry{
			ExternalID: "src:abc",
			FirstSeen:  last,
			LastSeen:   first,
			Status:     StatusActive,
		}
		assert.Error(t, entry.Validate())
	})
}
