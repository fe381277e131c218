package ledger

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deciofranchini-oss/objetivo/internal/core"
	applog "github.com/deciofranchini-oss/objetivo/internal/log"
	"github.com/deciofranchini-oss/objetivo/internal/storage"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return NewService(repo, nil, "extract", "backup", applog.New(applog.DefaultConfig()))
}

func paidTx(date string, cents int64) core.Transaction {
	d, _ := core.ParseDate(date)
	return core.Transaction{
		Type:        core.TxPaid,
		CategoryKey: core.CategoryMensalidade,
		Party:       "me",
		Date:        d,
		Amount:      core.Money{Cents: cents},
	}
}

func TestSaveTransactionNormalizesAndValidates(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	tx := paidTx("2025-03-10", 499841)
	tx.IsLate = true // meaningless on a paid row, must be cleared

	saved, err := svc.SaveTransaction(ctx, tx)
	require.NoError(t, err)
	assert.Greater(t, saved.ID, int64(0))
	assert.Equal(t, 2025, saved.AcademicYear)
	assert.Equal(t, 3, saved.AcademicMonth)
	assert.False(t, saved.IsLate)

	_, err = svc.SaveTransaction(ctx, core.Transaction{Type: "WRONG"})
	assert.ErrorIs(t, err, core.ErrInvalidType)
}

func TestSummaryYearScoping(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.SaveTransaction(ctx, paidTx("2025-02-01", 100))
	require.NoError(t, err)
	_, err = svc.SaveTransaction(ctx, paidTx("2026-02-01", 250))
	require.NoError(t, err)

	sum, err := svc.Summary(ctx, core.SingleYear(2025))
	require.NoError(t, err)
	assert.Equal(t, int64(100), sum.PaidActual.Cents)

	sum, err = svc.Summary(ctx, core.AllYears())
	require.NoError(t, err)
	assert.Equal(t, int64(350), sum.PaidActual.Cents)
}

func TestReportYearsAvailable(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.SaveTransaction(ctx, paidTx("2026-05-01", 100))
	require.NoError(t, err)
	_, err = svc.SaveTransaction(ctx, paidTx("2024-05-01", 100))
	require.NoError(t, err)

	rep, err := svc.Report(ctx, core.AllYears())
	require.NoError(t, err)
	assert.Equal(t, []int{2024, 2026}, rep.YearsAvailable)
	assert.Len(t, rep.Blocks, 2)
}

func TestSystemEntriesProtected(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.Reset(ctx))

	err := svc.DeleteCategory(ctx, core.CategoryPensao)
	assert.ErrorIs(t, err, core.ErrSystemEntry)

	err = svc.DeleteParty(ctx, "father")
	assert.ErrorIs(t, err, core.ErrSystemEntry)

	// user-defined entries come and go freely
	_, err = svc.SaveCategory(ctx, core.Category{Key: "Esportes Radicais", Label: "Esportes", Color: "#112233"})
	require.NoError(t, err)
	assert.NoError(t, svc.DeleteCategory(ctx, "esportes_radicais"))
}

func TestBackupRestoreRoundTrip(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.Reset(ctx))

	before, err := svc.Backup(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, before.Transactions)
	require.Len(t, before.Categories, 6)
	require.Len(t, before.Parties, 5)

	// wipe, then restore the snapshot
	require.NoError(t, svc.storage.ClearAll(ctx))
	require.NoError(t, svc.Restore(ctx, before))

	after, err := svc.Backup(ctx)
	require.NoError(t, err)
	assert.Len(t, after.Transactions, len(before.Transactions))
	assert.Len(t, after.Categories, 6)
	assert.Len(t, after.Parties, 5)
}

func TestRestoreRejectsInvalidRow(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	snap := Snapshot{Transactions: []core.Transaction{{Type: "WRONG"}}}
	err := svc.Restore(ctx, snap)
	assert.ErrorIs(t, err, core.ErrInvalidType)

	// nothing was written
	rows, err := svc.ListTransactions(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestSubmitDocumentInlineFallback(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	text := "Recibo pensão alimentícia\nVencimento: 12/01/2026\nTotal: R$ 2.000,00"
	docID, err := svc.SubmitDocument(ctx, "pensao-jan.txt", "text/plain", []byte(text))
	require.NoError(t, err)
	assert.NotEmpty(t, docID)

	rows, err := svc.ListTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	draft := rows[0]
	assert.Equal(t, core.TxReceived, draft.Type)
	assert.Equal(t, core.CategoryPensao, draft.CategoryKey)
	assert.Equal(t, "father", draft.Party)
	assert.Equal(t, "2026-01-12", draft.Date.String())
	assert.Equal(t, int64(200000), draft.Amount.Cents)
	assert.True(t, draft.IsLate)
	assert.Contains(t, draft.Notes, "pensao-jan.txt")
}

func TestSubmitDocumentRejectsUnknownType(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.SubmitDocument(context.Background(), "scan.pdf", "application/pdf", []byte{1})
	assert.Error(t, err)
}
