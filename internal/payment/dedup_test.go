package payment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryDeduper(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	d := newMemoryDeduper(time.Hour, func() time.Time { return now })

	seen, err := d.Seen(ctx, "psbank:A1B2C3:success")
	require.NoError(t, err)
	assert.False(t, seen)

	seen, _ = d.Seen(ctx, "psbank:A1B2C3:success")
	assert.True(t, seen)

	// a different outcome for the same operation is a new notification
	seen, _ = d.Seen(ctx, "psbank:A1B2C3:error")
	assert.False(t, seen)

	require.NoError(t, d.Forget(ctx, "psbank:A1B2C3:success"))
	seen, _ = d.Seen(ctx, "psbank:A1B2C3:success")
	assert.False(t, seen)

	now = now.Add(2 * time.Hour)
	seen, _ = d.Seen(ctx, "psbank:A1B2C3:error")
	assert.False(t, seen, "expired keys are forgotten")
}

func TestNewDeduper(t *testing.T) {
	t.Run("NoAddressUsesMemory", func(t *testing.T) {
		d, err := NewDeduper("", "", 0, 0)
		require.NoError(t, err)
		assert.IsType(t, &memoryDeduper{}, d)
	})

	t.Run("UnreachableRedisFallsBack", func(t *testing.T) {
		d, err := NewDeduper("127.0.0.1:1", "", 0, time.Minute)
		assert.Error(t, err)
		require.NotNil(t, d)
		assert.IsType(t, &memoryDeduper{}, d)
	})
}
