package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignment_Lifecycle(t *testing.T) {
	t.Run("accept then complete", func(t *testing.T) {
		a := &Assignment{ID: 1, Status: StatusPending}
		require.NoError(t, a.Accept())
		assert.Equal(t, StatusAccepted, a.Status)
		require.NoError(t, a.Complete())
		assert.Equal(t, StatusCompleted, a.Status)
	})

	t.Run("reject closes the assignment", func(t *testing.T) {
		a := &Assignment{ID: 1, Status: StatusPending}
		require.NoError(t, a.Reject())
		assert.Equal(t, StatusRejected, a.Status)
		assert.False(t, a.Status.IsOpen())
	})

	t.Run("invalid transitions rejected", func(t *testing.T) {
		a := &Assignment{ID: 1, Status: StatusPending}
		err := a.Complete()
		assert.ErrorIs(t, err, ErrInvalidStatusTransition)
		assert.Equal(t, StatusPending, a.Status)

		require.NoError(t, a.Accept())
		assert.ErrorIs(t, a.Accept(), ErrInvalidStatusTransition)
		assert.ErrorIs(t, a.Reject(), ErrInvalidStatusTransition)
	})
}

func TestAssignment_RateImportance(t *testing.T) {
	a := &Assignment{ID: 1, Status: StatusAccepted}

	require.NoError(t, a.RateImportance(7))
	assert.Equal(t, 7, a.OwnImportance)

	assert.ErrorIs(t, a.RateImportance(0), ErrInvalidImportance)
	assert.ErrorIs(t, a.RateImportance(11), ErrInvalidImportance)
	assert.Equal(t, 7, a.OwnImportance, "failed rating must not overwrite")
}

func TestAssignment_RecordDelivery(t *testing.T) {
	a := &Assignment{ID: 1, Status: StatusPending}

	a.RecordDelivery(false, "gateway timeout")
	assert.False(t, a.NotificationSent)
	assert.Equal(t, "gateway timeout", a.NotificationError)
	// Delivery failure never touches the lifecycle.
	assert.Equal(t, StatusPending, a.Status)

	a.RecordDelivery(true, "")
	assert.True(t, a.NotificationSent)
	assert.Empty(t, a.NotificationError)
}
