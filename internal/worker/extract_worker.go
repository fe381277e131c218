// Package worker hosts the consumers behind the AMQP queues: document
// extraction and the spreadsheet backup.
package worker

import (
	"context"

	"github.com/deciofranchini-oss/objetivo/internal/amqp"
	"github.com/deciofranchini-oss/objetivo/internal/ledger"
	applog "github.com/deciofranchini-oss/objetivo/internal/log"
)

// ExtractWorker turns queued documents into draft transactions.
type ExtractWorker struct {
	service *ledger.Service
	logger  *applog.Logger
}

func NewExtractWorker(service *ledger.Service, logger *applog.Logger) *ExtractWorker {
	return &ExtractWorker{
		service: service,
		logger:  logger.WithComponent(applog.ComponentExtract),
	}
}

// HandleExtractMessage processes one queued document. Errors propagate
// to the consumer, which requeues the delivery.
func (w *ExtractWorker) HandleExtractMessage(ctx context.Context, msg *amqp.DocumentExtractMessage) error {
	w.logger.InfoContext(ctx, "Processing document",
		applog.FieldDocumentID, msg.DocumentID,
		"file_name", msg.FileName,
		applog.FieldOperation, applog.OpExtract)

	return w.service.ProcessDocument(ctx, msg)
}
