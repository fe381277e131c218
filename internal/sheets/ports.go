package sheets

import (
	"context"

	"github.com/deciofranchini-oss/objetivo/internal/core"
)

// BackupWriter is the outbound port for the off-site backup. The
// Google adapter appends to a yearly spreadsheet tab; the memory
// adapter backs tests and broker-less setups.
type BackupWriter interface {
	WriteTransaction(ctx context.Context, tx core.Transaction) (rowRef string, err error)
}
