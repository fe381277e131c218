package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deciofranchini-oss/objetivo/internal/core"
)

func TestWriteTransactionGroupsByYear(t *testing.T) {
	store := New()
	ctx := context.Background()

	tx := core.Transaction{
		ID:          1,
		Type:        core.TxPaid,
		CategoryKey: core.CategoryMaterial,
		Party:       "me",
		Date:        core.NewDate(2025, 2, 10),
		Amount:      core.Money{Cents: 72450},
	}
	tx.Normalize()

	ref, err := store.WriteTransaction(ctx, tx)
	require.NoError(t, err)
	assert.Equal(t, "mem:2025:1", ref)

	tx.ID = 2
	tx.Date = core.NewDate(2026, 2, 10)
	tx.Normalize()
	_, err = store.WriteTransaction(ctx, tx)
	require.NoError(t, err)

	assert.Len(t, store.Year(2025), 1)
	assert.Len(t, store.Year(2026), 1)
	assert.Empty(t, store.Year(2024))
}

func TestWriteTransactionRejectsInvalid(t *testing.T) {
	_, err := New().WriteTransaction(context.Background(), core.Transaction{})
	assert.Error(t, err)
}
