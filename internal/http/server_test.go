package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deciofranchini-oss/objetivo/internal/core"
	"github.com/deciofranchini-oss/objetivo/internal/ledger"
	applog "github.com/deciofranchini-oss/objetivo/internal/log"
	"github.com/deciofranchini-oss/objetivo/internal/storage"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	logger := applog.New(applog.DefaultConfig())
	svc := ledger.NewService(repo, nil, "extract", "backup", logger)
	srv := NewServer(":0", svc, logger)
	t.Cleanup(func() { srv.Shutdown(context.Background()) })
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	return rec
}

func testTx(date string, cents int64) core.Transaction {
	d, _ := core.ParseDate(date)
	return core.Transaction{
		Type:        core.TxPaid,
		CategoryKey: core.CategoryMensalidade,
		Party:       "me",
		Date:        d,
		Amount:      core.Money{Cents: cents},
	}
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTransactionLifecycle(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/transactions", testTx("2025-03-10", 499841))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created core.Transaction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Greater(t, created.ID, int64(0))
	assert.Equal(t, 2025, created.AcademicYear)

	rec = doJSON(t, srv, http.MethodGet, fmt.Sprintf("/api/transactions/%d", created.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var fetched core.Transaction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fetched))
	assert.Equal(t, created.ID, fetched.ID)
	assert.Equal(t, int64(499841), fetched.Amount.Cents)

	rec = doJSON(t, srv, http.MethodGet, fmt.Sprintf("/api/transactions/%d", created.ID+100), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// full replace through PUT
	updated := testTx("2025-04-10", 500000)
	rec = doJSON(t, srv, http.MethodPut, fmt.Sprintf("/api/transactions/%d", created.ID), updated)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/transactions", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []core.Transaction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "2025-04-10", list[0].Date.String())

	rec = doJSON(t, srv, http.MethodDelete, fmt.Sprintf("/api/transactions/%d", created.ID), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, srv, http.MethodDelete, fmt.Sprintf("/api/transactions/%d", created.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListTransactionsYearFilter(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/transactions", testTx("2024-03-10", 1000))
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = doJSON(t, srv, http.MethodPost, "/api/transactions", testTx("2025-03-10", 2000))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/transactions?year=2024", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []core.Transaction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, 2024, list[0].AcademicYear)

	rec = doJSON(t, srv, http.MethodGet, "/api/transactions?year=all", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 2)

	rec = doJSON(t, srv, http.MethodGet, "/api/transactions?year=banana", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateTransactionValidation(t *testing.T) {
	srv := newTestServer(t)

	bad := testTx("2025-03-10", 100)
	bad.Type = "WRONG"
	rec := doJSON(t, srv, http.MethodPost, "/api/transactions", bad)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/transactions", strings.NewReader("{broken"))
	out := httptest.NewRecorder()
	srv.Handler.ServeHTTP(out, req)
	assert.Equal(t, http.StatusBadRequest, out.Code)
}

func TestSummaryEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/transactions", testTx("2025-03-10", 100))
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = doJSON(t, srv, http.MethodPost, "/api/transactions", testTx("2026-03-10", 250))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/summary?year=2025", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var sum core.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sum))
	assert.Equal(t, int64(100), sum.PaidActual.Cents)

	rec = doJSON(t, srv, http.MethodGet, "/api/summary?year=all", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sum))
	assert.Equal(t, int64(350), sum.PaidActual.Cents)

	rec = doJSON(t, srv, http.MethodGet, "/api/summary?year=banana", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSummaryCacheInvalidatedOnWrite(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/summary?year=2025", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var sum core.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sum))
	require.Zero(t, sum.PaidActual.Cents)

	rec = doJSON(t, srv, http.MethodPost, "/api/transactions", testTx("2025-03-10", 777))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/summary?year=2025", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sum))
	assert.Equal(t, int64(777), sum.PaidActual.Cents)
}

func TestReportEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/transactions", testTx("2025-03-10", 100))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/report?year=2025", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var rep core.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
	require.Len(t, rep.Blocks, 1)
	assert.Len(t, rep.Blocks[0].Months, 12)
}

func TestSystemCategoryProtected(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/reset", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, srv, http.MethodDelete, "/api/categories/"+core.CategoryPensao, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestBackupRestoreEndpoints(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/reset", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/backup", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var snap ledger.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	require.NotEmpty(t, snap.Transactions)

	rec = doJSON(t, srv, http.MethodPost, "/api/restore", snap)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestExportCSVEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/transactions", testTx("2025-03-10", 100))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/export/csv", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Body.String(), "id;date;academicYear")
}

func TestSubmitDocument(t *testing.T) {
	srv := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "recibo.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("Mensalidade Março/2025\nVencimento: 10/03/2025\nTotal: R$ 4.998,41"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/documents", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["documentId"])

	list := doJSON(t, srv, http.MethodGet, "/api/transactions", nil)
	var txs []core.Transaction
	require.NoError(t, json.Unmarshal(list.Body.Bytes(), &txs))
	require.Len(t, txs, 1)
	assert.Equal(t, core.CategoryMensalidade, txs[0].CategoryKey)
	assert.Equal(t, int64(499841), txs[0].Amount.Cents)
}

func TestParseYearSelector(t *testing.T) {
	sel, err := parseYearSelector("all")
	require.NoError(t, err)
	assert.True(t, sel.All())

	sel, err = parseYearSelector("2026")
	require.NoError(t, err)
	year, ok := sel.Year()
	assert.True(t, ok)
	assert.Equal(t, 2026, year)

	_, err = parseYearSelector("soon")
	assert.Error(t, err)
	_, err = parseYearSelector("99")
	assert.Error(t, err)
}

func TestRateLimiter(t *testing.T) {
	rl := newRateLimiter()
	defer rl.stop()

	for i := 0; i < requestsPerMinute; i++ {
		assert.True(t, rl.allow("1.2.3.4"))
	}
	assert.False(t, rl.allow("1.2.3.4"))
	assert.True(t, rl.allow("5.6.7.8"), "limits are per client")
}
