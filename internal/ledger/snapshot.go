package ledger

import (
	"context"
	"fmt"

	"github.com/deciofranchini-oss/objetivo/internal/core"
	applog "github.com/deciofranchini-oss/objetivo/internal/log"
)

// Snapshot is the portable backup format: the full contents of the
// ledger in one document. The short field names match the export files
// users already have.
type Snapshot struct {
	Transactions []core.Transaction `json:"txs"`
	Categories   []core.Category    `json:"cats"`
	Parties      []core.Party       `json:"parties"`
}

// Backup captures the entire ledger state.
func (s *Service) Backup(ctx context.Context) (Snapshot, error) {
	txs, err := s.storage.ListTransactions(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("list transactions: %w", err)
	}
	cats, err := s.storage.ListCategories(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("list categories: %w", err)
	}
	parties, err := s.storage.ListParties(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("list parties: %w", err)
	}
	return Snapshot{Transactions: txs, Categories: cats, Parties: parties}, nil
}

// Restore replaces the entire ledger with the snapshot contents. Every
// transaction is normalized and validated first; an invalid row aborts
// the restore before anything is written.
func (s *Service) Restore(ctx context.Context, snap Snapshot) error {
	for i := range snap.Transactions {
		snap.Transactions[i].Normalize()
		if err := snap.Transactions[i].Validate(); err != nil {
			return fmt.Errorf("transaction %d: %w", snap.Transactions[i].ID, err)
		}
	}
	for _, c := range snap.Categories {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("category %q: %w", c.Key, err)
		}
	}
	for _, p := range snap.Parties {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("party %q: %w", p.Key, err)
		}
	}

	if err := s.storage.ReplaceAll(ctx, snap.Transactions, snap.Categories, snap.Parties); err != nil {
		return fmt.Errorf("replace data: %w", err)
	}

	s.logger.InfoContext(ctx, "Ledger restored from snapshot",
		applog.FieldOperation, applog.OpImport,
		"transactions", len(snap.Transactions),
		"categories", len(snap.Categories),
		"parties", len(snap.Parties))
	return nil
}
