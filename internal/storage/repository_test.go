package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deciofranchini-oss/objetivo/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func sampleTx() core.Transaction {
	tx := core.Transaction{
		Type:        core.TxPaid,
		CategoryKey: core.CategoryMensalidade,
		Party:       "me",
		Date:        core.NewDate(2025, 1, 5),
		Amount:      core.Money{Cents: 499841},
		Notes:       "Mensalidade Janeiro/2025",
		Tags:        "mensalidade",
	}
	tx.Normalize()
	return tx
}

func TestSaveAndGetTransaction(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.SaveTransaction(ctx, sampleTx())
	require.NoError(t, err)
	assert.Greater(t, id, int64(0))

	got, err := repo.GetTransaction(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, core.TxPaid, got.Type)
	assert.Equal(t, "2025-01-05", got.Date.String())
	assert.Equal(t, 2025, got.AcademicYear)
	assert.Equal(t, 1, got.AcademicMonth)
	assert.Equal(t, int64(499841), got.Amount.Cents)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestSaveTransactionReplaceByID(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.SaveTransaction(ctx, sampleTx())
	require.NoError(t, err)

	edited := sampleTx()
	edited.ID = id
	edited.Amount = core.Money{Cents: 100}
	edited.Notes = "" // full replace, not a patch
	edited.Date = core.NewDate(2025, 2, 10)
	edited.Normalize()

	_, err = repo.SaveTransaction(ctx, edited)
	require.NoError(t, err)

	got, err := repo.GetTransaction(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(100), got.Amount.Cents)
	assert.Empty(t, got.Notes)
	assert.Equal(t, 2, got.AcademicMonth)

	missing := sampleTx()
	missing.ID = 9999
	_, err = repo.SaveTransaction(ctx, missing)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteTransaction(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.SaveTransaction(ctx, sampleTx())
	require.NoError(t, err)

	require.NoError(t, repo.DeleteTransaction(ctx, id))
	_, err = repo.GetTransaction(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.DeleteTransaction(ctx, id), ErrNotFound)
}

func TestReplaceAllAndClear(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.SaveTransaction(ctx, sampleTx())
	require.NoError(t, err)

	imported := sampleTx()
	imported.ID = 42
	err = repo.ReplaceAll(ctx, []core.Transaction{imported},
		[]core.Category{{Key: "extra", Label: "Extra", Color: "#2E7D55", System: true}},
		[]core.Party{{Key: "me", Label: "Eu", System: true}})
	require.NoError(t, err)

	txs, err := repo.ListTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, int64(42), txs[0].ID, "imported ids are preserved")

	require.NoError(t, repo.ClearAll(ctx))
	txs, err = repo.ListTransactions(ctx)
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestListTransactionsAfter(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	var ids []int64
	for i := 0; i < 5; i++ {
		id, err := repo.SaveTransaction(ctx, sampleTx())
		require.NoError(t, err)
		ids = append(ids, id)
	}

	batch, err := repo.ListTransactionsAfter(ctx, ids[1], 2)
	require.NoError(t, err)
	require.Len(t, batch, 2)
	assert.Equal(t, ids[2], batch[0].ID)
	assert.Equal(t, ids[3], batch[1].ID)
}

func TestCategoryCRUD(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	c := core.Category{Key: "ballet", Label: "Ballet", Color: "#FF00FF"}
	require.NoError(t, repo.SaveCategory(ctx, c))

	got, err := repo.GetCategory(ctx, "ballet")
	require.NoError(t, err)
	assert.Equal(t, "Ballet", got.Label)

	// Upsert keeps the system flag, edits label/color
	c.Label = "Ballet Infantil"
	require.NoError(t, repo.SaveCategory(ctx, c))
	got, err = repo.GetCategory(ctx, "ballet")
	require.NoError(t, err)
	assert.Equal(t, "Ballet Infantil", got.Label)

	require.NoError(t, repo.DeleteCategory(ctx, "ballet"))
	_, err = repo.GetCategory(ctx, "ballet")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPartyCRUD(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	p := core.Party{Key: "avo", Label: "Avó"}
	require.NoError(t, repo.SaveParty(ctx, p))

	got, err := repo.GetParty(ctx, "avo")
	require.NoError(t, err)
	assert.Equal(t, "Avó", got.Label)

	require.NoError(t, repo.DeleteParty(ctx, "avo"))
	assert.ErrorIs(t, repo.DeleteParty(ctx, "avo"), ErrNotFound)
}

func TestConfigKV(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	v, err := repo.GetConfig(ctx, "backup_cursor")
	require.NoError(t, err)
	assert.Empty(t, v, "unset keys read as empty")

	require.NoError(t, repo.SetConfig(ctx, "backup_cursor", "17"))
	require.NoError(t, repo.SetConfig(ctx, "backup_cursor", "23"))

	v, err = repo.GetConfig(ctx, "backup_cursor")
	require.NoError(t, err)
	assert.Equal(t, "23", v)
}

func TestSeedIfEmpty(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SeedIfEmpty(ctx))

	cats, err := repo.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, 6)

	parties, err := repo.ListParties(ctx)
	require.NoError(t, err)
	assert.Len(t, parties, 5)

	n, err := repo.CountTransactions(ctx)
	require.NoError(t, err)
	assert.Greater(t, n, int64(0))

	// Second run must not duplicate the demo data
	require.NoError(t, repo.SeedIfEmpty(ctx))
	n2, err := repo.CountTransactions(ctx)
	require.NoError(t, err)
	assert.Equal(t, n, n2)
}

func TestSeedKeepsEditedSystemEntries(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SeedIfEmpty(ctx))

	edited := core.Category{Key: core.CategoryMensalidade, Label: "Escola Nova", Color: "#000000", System: true}
	require.NoError(t, repo.SaveCategory(ctx, edited))
	require.NoError(t, repo.SaveParty(ctx, core.Party{Key: "father", Label: "Papai", System: true}))

	// A restart re-runs the seed; edits must not be reverted
	require.NoError(t, repo.SeedIfEmpty(ctx))

	cat, err := repo.GetCategory(ctx, core.CategoryMensalidade)
	require.NoError(t, err)
	assert.Equal(t, "Escola Nova", cat.Label)
	assert.Equal(t, "#000000", cat.Color)

	party, err := repo.GetParty(ctx, "father")
	require.NoError(t, err)
	assert.Equal(t, "Papai", party.Label)
}
