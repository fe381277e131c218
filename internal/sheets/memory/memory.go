// Package memory is an in-memory BackupWriter used by tests and by
// setups that run without Google credentials.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/deciofranchini-oss/objetivo/internal/core"
	ports "github.com/deciofranchini-oss/objetivo/internal/sheets"
)

type Store struct {
	mu   sync.Mutex
	rows map[int][]core.Transaction
}

var _ ports.BackupWriter = (*Store)(nil)

func New() *Store {
	return &Store{rows: make(map[int][]core.Transaction)}
}

// WriteTransaction records the transaction under its academic year and
// returns a synthetic row reference.
func (s *Store) WriteTransaction(_ context.Context, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[tx.AcademicYear] = append(s.rows[tx.AcademicYear], tx)
	return fmt.Sprintf("mem:%d:%d", tx.AcademicYear, len(s.rows[tx.AcademicYear])), nil
}

// Year returns a copy of the rows written for one academic year.
func (s *Store) Year(year int) []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.rows[year]...)
}
