package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// DocumentExtractMessage asks the worker to analyze an uploaded
// document and save a draft transaction. The payload travels inline:
// documents are small receipts, not scans of whole statements.
type DocumentExtractMessage struct {
	DocumentID string    `json:"documentId"`
	FileName   string    `json:"fileName"`
	MimeType   string    `json:"mimeType"`
	Payload    []byte    `json:"payload"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewDocumentExtractMessage creates an extract request with a fresh
// document id.
func NewDocumentExtractMessage(fileName, mimeType string, payload []byte) *DocumentExtractMessage {
	return &DocumentExtractMessage{
		DocumentID: uuid.NewString(),
		FileName:   fileName,
		MimeType:   mimeType,
		Payload:    payload,
		Timestamp:  time.Now(),
	}
}

func (m *DocumentExtractMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func DocumentExtractMessageFromJSON(data []byte) (*DocumentExtractMessage, error) {
	var msg DocumentExtractMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// BackupSyncMessage nudges the backup worker after a write. It carries
// only the transaction id; the worker reads the current state from the
// database, so stale messages for rewritten rows are harmless.
type BackupSyncMessage struct {
	TransactionID int64     `json:"transactionId"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewBackupSyncMessage(transactionID int64) *BackupSyncMessage {
	return &BackupSyncMessage{
		TransactionID: transactionID,
		Timestamp:     time.Now(),
	}
}

func (m *BackupSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func BackupSyncMessageFromJSON(data []byte) (*BackupSyncMessage, error) {
	var msg BackupSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
