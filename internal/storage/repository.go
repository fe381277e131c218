package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/deciofranchini-oss/objetivo/internal/core"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// SQLiteRepository is the durable record store for transactions,
// categories, parties and config. It makes no ordering promises on
// list operations; callers sort as needed.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const txColumns = `id, type, category_key, party_key, tx_date, academic_year, academic_month,
	amount_cents, is_late, is_forecast, notes, tags, created_at, updated_at`

func scanTransaction(row interface{ Scan(...any) error }) (core.Transaction, error) {
	var (
		t       core.Transaction
		txDate  string
		created time.Time
		updated time.Time
	)
	err := row.Scan(&t.ID, &t.Type, &t.CategoryKey, &t.Party, &txDate,
		&t.AcademicYear, &t.AcademicMonth, &t.Amount.Cents,
		&t.IsLate, &t.IsForecast, &t.Notes, &t.Tags, &created, &updated)
	if err != nil {
		return core.Transaction{}, err
	}
	d, err := core.ParseDate(txDate)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("stored date %q: %w", txDate, err)
	}
	t.Date = d
	t.CreatedAt = created
	t.UpdatedAt = updated
	return t, nil
}

// ListTransactions returns every transaction. No ordering is guaranteed.
func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+txColumns+` FROM transactions`)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

// ListTransactionsAfter returns up to limit transactions with id greater
// than afterID, ordered by id. Used by the backup worker cursor.
func (r *SQLiteRepository) ListTransactionsAfter(ctx context.Context, afterID int64, limit int) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+txColumns+` FROM transactions WHERE id > ? ORDER BY id LIMIT ?`, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("list transactions after %d: %w", afterID, err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+txColumns+` FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %d: %w", id, err)
	}
	return t, nil
}

// SaveTransaction inserts when tx.ID is zero, otherwise fully replaces
// the existing row (no partial patching). Returns the stored id.
func (r *SQLiteRepository) SaveTransaction(ctx context.Context, tx core.Transaction) (int64, error) {
	now := time.Now().UTC()

	if tx.ID == 0 {
		res, err := r.db.ExecContext(ctx, `
			INSERT INTO transactions (type, category_key, party_key, tx_date, academic_year,
				academic_month, amount_cents, is_late, is_forecast, notes, tags, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			tx.Type, tx.CategoryKey, tx.Party, tx.Date.String(), tx.AcademicYear,
			tx.AcademicMonth, tx.Amount.Cents, tx.IsLate, tx.IsForecast, tx.Notes, tx.Tags, now, now)
		if err != nil {
			return 0, fmt.Errorf("insert transaction: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("last insert id: %w", err)
		}
		slog.InfoContext(ctx, "Transaction created",
			"transaction_id", id,
			"transaction_type", string(tx.Type),
			"category_key", tx.CategoryKey,
			"amount_cents", tx.Amount.Cents)
		return id, nil
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions SET type = ?, category_key = ?, party_key = ?, tx_date = ?,
			academic_year = ?, academic_month = ?, amount_cents = ?, is_late = ?,
			is_forecast = ?, notes = ?, tags = ?, updated_at = ?
		WHERE id = ?`,
		tx.Type, tx.CategoryKey, tx.Party, tx.Date.String(), tx.AcademicYear,
		tx.AcademicMonth, tx.Amount.Cents, tx.IsLate, tx.IsForecast, tx.Notes, tx.Tags, now, tx.ID)
	if err != nil {
		return 0, fmt.Errorf("update transaction %d: %w", tx.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return 0, ErrNotFound
	}
	slog.InfoContext(ctx, "Transaction updated", "transaction_id", tx.ID)
	return tx.ID, nil
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ReplaceAll wipes the ledger and installs the given dataset in a single
// transaction. Imported ids are preserved.
func (r *SQLiteRepository) ReplaceAll(ctx context.Context, txs []core.Transaction, cats []core.Category, parties []core.Party) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	defer dbTx.Rollback()

	for _, table := range []string{"transactions", "categories", "parties"} {
		if _, err := dbTx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for _, c := range cats {
		if _, err := dbTx.ExecContext(ctx,
			`INSERT INTO categories (key, label, color, system) VALUES (?, ?, ?, ?)`,
			c.Key, c.Label, c.Color, c.System); err != nil {
			return fmt.Errorf("import category %s: %w", c.Key, err)
		}
	}
	for _, p := range parties {
		if _, err := dbTx.ExecContext(ctx,
			`INSERT INTO parties (key, label, system) VALUES (?, ?, ?)`,
			p.Key, p.Label, p.System); err != nil {
			return fmt.Errorf("import party %s: %w", p.Key, err)
		}
	}

	now := time.Now().UTC()
	for _, t := range txs {
		created := t.CreatedAt
		if created.IsZero() {
			created = now
		}
		updated := t.UpdatedAt
		if updated.IsZero() {
			updated = now
		}
		if _, err := dbTx.ExecContext(ctx, `
			INSERT INTO transactions (id, type, category_key, party_key, tx_date, academic_year,
				academic_month, amount_cents, is_late, is_forecast, notes, tags, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, t.Type, t.CategoryKey, t.Party, t.Date.String(), t.AcademicYear,
			t.AcademicMonth, t.Amount.Cents, t.IsLate, t.IsForecast, t.Notes, t.Tags, created, updated); err != nil {
			return fmt.Errorf("import transaction %d: %w", t.ID, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}

	slog.InfoContext(ctx, "Ledger replaced",
		"transactions", len(txs), "categories", len(cats), "parties", len(parties))
	return nil
}

// ClearAll removes every transaction, category and party.
func (r *SQLiteRepository) ClearAll(ctx context.Context) error {
	return r.ReplaceAll(ctx, nil, nil, nil)
}

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key, label, color, system FROM categories`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.Key, &c.Label, &c.Color, &c.System); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, key string) (core.Category, error) {
	var c core.Category
	err := r.db.QueryRowContext(ctx,
		`SELECT key, label, color, system FROM categories WHERE key = ?`, key).
		Scan(&c.Key, &c.Label, &c.Color, &c.System)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, ErrNotFound
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category %s: %w", key, err)
	}
	return c, nil
}

// SaveCategory upserts by key (create and edit share the same path).
func (r *SQLiteRepository) SaveCategory(ctx context.Context, c core.Category) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO categories (key, label, color, system) VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET label = excluded.label, color = excluded.color`,
		c.Key, c.Label, c.Color, c.System)
	if err != nil {
		return fmt.Errorf("save category %s: %w", c.Key, err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteCategory(ctx context.Context, key string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("delete category %s: %w", key, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) ListParties(ctx context.Context) ([]core.Party, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key, label, system FROM parties`)
	if err != nil {
		return nil, fmt.Errorf("list parties: %w", err)
	}
	defer rows.Close()

	var out []core.Party
	for rows.Next() {
		var p core.Party
		if err := rows.Scan(&p.Key, &p.Label, &p.System); err != nil {
			return nil, fmt.Errorf("scan party: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) GetParty(ctx context.Context, key string) (core.Party, error) {
	var p core.Party
	err := r.db.QueryRowContext(ctx,
		`SELECT key, label, system FROM parties WHERE key = ?`, key).
		Scan(&p.Key, &p.Label, &p.System)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Party{}, ErrNotFound
	}
	if err != nil {
		return core.Party{}, fmt.Errorf("get party %s: %w", key, err)
	}
	return p, nil
}

func (r *SQLiteRepository) SaveParty(ctx context.Context, p core.Party) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO parties (key, label, system) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET label = excluded.label`,
		p.Key, p.Label, p.System)
	if err != nil {
		return fmt.Errorf("save party %s: %w", p.Key, err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteParty(ctx context.Context, key string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM parties WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("delete party %s: %w", key, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetConfig returns the stored value for k, or "" when unset.
func (r *SQLiteRepository) GetConfig(ctx context.Context, k string) (string, error) {
	var v string
	err := r.db.QueryRowContext(ctx, `SELECT v FROM config WHERE k = ?`, k).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get config %s: %w", k, err)
	}
	return v, nil
}

func (r *SQLiteRepository) SetConfig(ctx context.Context, k, v string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO config (k, v) VALUES (?, ?)
		ON CONFLICT(k) DO UPDATE SET v = excluded.v`, k, v)
	if err != nil {
		return fmt.Errorf("set config %s: %w", k, err)
	}
	return nil
}

// CountTransactions is used by the seeder to decide whether the store
// is fresh.
func (r *SQLiteRepository) CountTransactions(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}
