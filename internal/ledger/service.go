// Package ledger orchestrates the school-expense operations across the
// SQLite store, the message broker and the extraction heuristics. All
// aggregation math lives in core; this package decides what gets
// loaded, saved and published.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/deciofranchini-oss/objetivo/internal/amqp"
	"github.com/deciofranchini-oss/objetivo/internal/core"
	"github.com/deciofranchini-oss/objetivo/internal/extract"
	applog "github.com/deciofranchini-oss/objetivo/internal/log"
	"github.com/deciofranchini-oss/objetivo/internal/storage"
)

// Service coordinates writes through the repository and nudges the
// async pipeline. The AMQP client is optional: without it writes still
// succeed and documents are analyzed inline.
type Service struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
	extractor  extract.Extractor
	textSource extract.TextSource
	extractQ   string
	backupQ    string
	logger     *applog.Logger
}

func NewService(repo *storage.SQLiteRepository, amqpClient *amqp.Client, extractQueue, backupQueue string, logger *applog.Logger) *Service {
	return &Service{
		storage:    repo,
		amqpClient: amqpClient,
		extractor:  extract.NewHeuristicExtractor(),
		textSource: extract.NewPlainTextSource(),
		extractQ:   extractQueue,
		backupQ:    backupQueue,
		logger:     logger.WithComponent(applog.ComponentLedger),
	}
}

// SaveTransaction normalizes, validates and persists a transaction,
// then queues it for backup. A publish failure is logged but never
// fails the write: the row is already safe in SQLite.
func (s *Service) SaveTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	tx.Normalize()
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	id, err := s.storage.SaveTransaction(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}
	tx.ID = id

	s.logger.DebugContext(ctx, "Transaction saved",
		applog.NewFields().WithTransaction(id, string(tx.Type), tx.CategoryKey, tx.Amount.Cents).ToSlice()...)

	s.publishBackup(ctx, id)
	return tx, nil
}

func (s *Service) DeleteTransaction(ctx context.Context, id int64) error {
	if err := s.storage.DeleteTransaction(ctx, id); err != nil {
		return err
	}
	s.publishBackup(ctx, id)
	return nil
}

func (s *Service) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	return s.storage.GetTransaction(ctx, id)
}

func (s *Service) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	return s.storage.ListTransactions(ctx)
}

// Summary aggregates the dashboard totals for the selected year.
func (s *Service) Summary(ctx context.Context, sel core.YearSelector) (core.Summary, error) {
	rows, err := s.storage.ListTransactions(ctx)
	if err != nil {
		return core.Summary{}, fmt.Errorf("list transactions: %w", err)
	}
	if year, ok := sel.Year(); ok {
		rows = core.FilterByYear(rows, year)
	}
	return core.Summarize(rows), nil
}

// Report builds the yearly report for the selected scope.
func (s *Service) Report(ctx context.Context, sel core.YearSelector) (core.Report, error) {
	rows, err := s.storage.ListTransactions(ctx)
	if err != nil {
		return core.Report{}, fmt.Errorf("list transactions: %w", err)
	}
	return core.BuildReport(rows, sel), nil
}

// Resolver loads the current categories and parties for display lookups.
func (s *Service) Resolver(ctx context.Context) (core.Resolver, error) {
	cats, err := s.storage.ListCategories(ctx)
	if err != nil {
		return core.Resolver{}, fmt.Errorf("list categories: %w", err)
	}
	parties, err := s.storage.ListParties(ctx)
	if err != nil {
		return core.Resolver{}, fmt.Errorf("list parties: %w", err)
	}
	return core.NewResolver(cats, parties), nil
}

func (s *Service) ListCategories(ctx context.Context) ([]core.Category, error) {
	return s.storage.ListCategories(ctx)
}

// SaveCategory normalizes the key and upserts. System entries keep
// their flag on conflict inside the repository.
func (s *Service) SaveCategory(ctx context.Context, c core.Category) (core.Category, error) {
	c.Key = core.NormalizeKey(c.Key)
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	if err := s.storage.SaveCategory(ctx, c); err != nil {
		return core.Category{}, fmt.Errorf("save category: %w", err)
	}
	return c, nil
}

// DeleteCategory refuses to remove system categories.
func (s *Service) DeleteCategory(ctx context.Context, key string) error {
	c, err := s.storage.GetCategory(ctx, key)
	if err != nil {
		return err
	}
	if c.System {
		return core.ErrSystemEntry
	}
	return s.storage.DeleteCategory(ctx, key)
}

func (s *Service) ListParties(ctx context.Context) ([]core.Party, error) {
	return s.storage.ListParties(ctx)
}

func (s *Service) SaveParty(ctx context.Context, p core.Party) (core.Party, error) {
	p.Key = core.NormalizeKey(p.Key)
	if err := p.Validate(); err != nil {
		return core.Party{}, err
	}
	if err := s.storage.SaveParty(ctx, p); err != nil {
		return core.Party{}, fmt.Errorf("save party: %w", err)
	}
	return p, nil
}

// DeleteParty refuses to remove system parties.
func (s *Service) DeleteParty(ctx context.Context, key string) error {
	p, err := s.storage.GetParty(ctx, key)
	if err != nil {
		return err
	}
	if p.System {
		return core.ErrSystemEntry
	}
	return s.storage.DeleteParty(ctx, key)
}

// Reset wipes all data and reseeds the system entries and demo data.
func (s *Service) Reset(ctx context.Context) error {
	if err := s.storage.ClearAll(ctx); err != nil {
		return fmt.Errorf("clear data: %w", err)
	}
	if err := s.storage.SeedIfEmpty(ctx); err != nil {
		return fmt.Errorf("reseed: %w", err)
	}
	s.logger.InfoContext(ctx, "Ledger reset to seed data", applog.FieldOperation, applog.OpReset)
	return nil
}

// SubmitDocument queues a document for extraction. Without a broker it
// falls back to analyzing inline and saving the draft directly, so the
// single-binary setup still works.
func (s *Service) SubmitDocument(ctx context.Context, fileName, mimeType string, payload []byte) (string, error) {
	msg := amqp.NewDocumentExtractMessage(fileName, mimeType, payload)

	if s.amqpClient == nil {
		if err := s.ProcessDocument(ctx, msg); err != nil {
			return "", err
		}
		return msg.DocumentID, nil
	}

	if err := s.amqpClient.PublishDocumentExtract(ctx, s.extractQ, msg); err != nil {
		return "", fmt.Errorf("queue document: %w", err)
	}
	return msg.DocumentID, nil
}

// ProcessDocument runs the extraction pipeline for one document and
// saves the resulting draft transaction. The worker calls this for
// every consumed message.
func (s *Service) ProcessDocument(ctx context.Context, msg *amqp.DocumentExtractMessage) error {
	text, err := s.textSource.Text(ctx, msg.Payload, msg.MimeType)
	if err != nil {
		return fmt.Errorf("read document %s: %w", msg.DocumentID, err)
	}

	guess := s.extractor.Extract(text)
	draft := extract.DraftTransaction(guess, time.Now())
	draft.Notes = appendDocumentNote(draft.Notes, msg.FileName)

	saved, err := s.SaveTransaction(ctx, draft)
	if err != nil {
		return fmt.Errorf("save draft for document %s: %w", msg.DocumentID, err)
	}

	s.logger.InfoContext(ctx, "Document processed into draft transaction",
		applog.FieldDocumentID, msg.DocumentID,
		applog.FieldTxID, saved.ID,
		applog.FieldConfidence, string(guess.Confidence))
	return nil
}

func appendDocumentNote(notes, fileName string) string {
	if fileName == "" {
		return notes
	}
	if notes == "" {
		return "Documento: " + fileName
	}
	return notes + " (documento: " + fileName + ")"
}

func (s *Service) publishBackup(ctx context.Context, id int64) {
	if s.amqpClient == nil {
		return
	}
	if err := s.amqpClient.PublishBackupSync(ctx, s.backupQ, amqp.NewBackupSyncMessage(id)); err != nil {
		fields := applog.NewFields().WithOperation(applog.OpBackup).WithError(err)
		fields[applog.FieldTxID] = id
		s.logger.ErrorContext(ctx, "Failed to publish backup message", fields.ToSlice()...)
	}
}

// Close releases the repository and broker connections.
func (s *Service) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %v", errs)
	}
	return nil
}
