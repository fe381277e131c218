package worker

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/deciofranchini-oss/objetivo/internal/amqp"
	applog "github.com/deciofranchini-oss/objetivo/internal/log"
	"github.com/deciofranchini-oss/objetivo/internal/sheets"
	"github.com/deciofranchini-oss/objetivo/internal/storage"
)

// backupCursorKey holds the highest transaction id already swept to
// the backup. The cursor only covers the periodic sweep; per-message
// writes land regardless of id order.
const backupCursorKey = "backup_cursor"

// BackupWorker mirrors transactions to the spreadsheet backup. Two
// paths feed it: AMQP messages for fresh writes, and a periodic sweep
// that picks up whatever the queue lost.
type BackupWorker struct {
	storage   *storage.SQLiteRepository
	writer    sheets.BackupWriter
	batchSize int
	logger    *applog.Logger
}

func NewBackupWorker(repo *storage.SQLiteRepository, writer sheets.BackupWriter, batchSize int, logger *applog.Logger) *BackupWorker {
	return &BackupWorker{
		storage:   repo,
		writer:    writer,
		batchSize: batchSize,
		logger:    logger.WithComponent(applog.ComponentSheets),
	}
}

// HandleBackupMessage mirrors a single transaction. A row deleted
// between publish and consume is not an error.
func (w *BackupWorker) HandleBackupMessage(ctx context.Context, msg *amqp.BackupSyncMessage) error {
	tx, err := w.storage.GetTransaction(ctx, msg.TransactionID)
	if errors.Is(err, storage.ErrNotFound) {
		w.logger.InfoContext(ctx, "Transaction gone before backup, skipping",
			applog.FieldTxID, msg.TransactionID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load transaction %d: %w", msg.TransactionID, err)
	}

	return w.writeWithRetry(ctx, tx.ID)
}

// ProcessPending sweeps transactions the queue may have missed,
// advancing a cursor stored in the config table. Returns the number of
// rows written.
func (w *BackupWorker) ProcessPending(ctx context.Context) (int, error) {
	cursor, err := w.loadCursor(ctx)
	if err != nil {
		return 0, err
	}

	rows, err := w.storage.ListTransactionsAfter(ctx, cursor, w.batchSize)
	if err != nil {
		return 0, fmt.Errorf("list pending transactions: %w", err)
	}

	written := 0
	for _, tx := range rows {
		if err := w.writeWithRetry(ctx, tx.ID); err != nil {
			// Stop at the first failure so the cursor never skips a row.
			if saveErr := w.saveCursor(ctx, cursor); saveErr != nil {
				w.logger.ErrorContext(ctx, "Failed to persist backup cursor", "error", saveErr)
			}
			return written, err
		}
		cursor = tx.ID
		written++
	}

	if err := w.saveCursor(ctx, cursor); err != nil {
		return written, fmt.Errorf("persist backup cursor: %w", err)
	}

	if written > 0 {
		w.logger.InfoContext(ctx, "Backup sweep complete",
			"written", written, "cursor", cursor, applog.FieldOperation, applog.OpBackup)
	}
	return written, nil
}

// Run sweeps on the given interval until ctx is cancelled.
func (w *BackupWorker) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.ProcessPending(ctx); err != nil {
				w.logger.ErrorContext(ctx, "Backup sweep failed", "error", err)
			}
		}
	}
}

// writeWithRetry rereads the row and appends it, retrying transient
// spreadsheet failures with exponential backoff.
func (w *BackupWorker) writeWithRetry(ctx context.Context, id int64) error {
	operation := func() error {
		tx, err := w.storage.GetTransaction(ctx, id)
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		if err != nil {
			return backoff.Permanent(err)
		}

		ref, err := w.writer.WriteTransaction(ctx, tx)
		if err != nil {
			return err
		}

		w.logger.InfoContext(ctx, "Transaction backed up",
			applog.FieldTxID, tx.ID, applog.FieldSheetsRef, ref)
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 4), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return fmt.Errorf("backup transaction %d: %w", id, err)
	}
	return nil
}

func (w *BackupWorker) loadCursor(ctx context.Context) (int64, error) {
	raw, err := w.storage.GetConfig(ctx, backupCursorKey)
	if err != nil {
		return 0, fmt.Errorf("load backup cursor: %w", err)
	}
	if raw == "" {
		return 0, nil
	}
	cursor, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse backup cursor %q: %w", raw, err)
	}
	return cursor, nil
}

func (w *BackupWorker) saveCursor(ctx context.Context, cursor int64) error {
	return w.storage.SetConfig(ctx, backupCursorKey, strconv.FormatInt(cursor, 10))
}
