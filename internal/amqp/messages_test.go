package amqp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentExtractMessageRoundTrip(t *testing.T) {
	msg := NewDocumentExtractMessage("recibo-julho.txt", "text/plain", []byte("Total: R$ 4.998,41"))
	require.NotEmpty(t, msg.DocumentID)
	require.False(t, msg.Timestamp.IsZero())

	body, err := msg.ToJSON()
	require.NoError(t, err)

	got, err := DocumentExtractMessageFromJSON(body)
	require.NoError(t, err)
	assert.Equal(t, msg.DocumentID, got.DocumentID)
	assert.Equal(t, "recibo-julho.txt", got.FileName)
	assert.Equal(t, "text/plain", got.MimeType)
	assert.Equal(t, []byte("Total: R$ 4.998,41"), got.Payload)
}

func TestDocumentExtractMessageUniqueIDs(t *testing.T) {
	a := NewDocumentExtractMessage("a.txt", "text/plain", nil)
	b := NewDocumentExtractMessage("b.txt", "text/plain", nil)
	assert.NotEqual(t, a.DocumentID, b.DocumentID)
}

func TestBackupSyncMessageRoundTrip(t *testing.T) {
	msg := NewBackupSyncMessage(42)

	body, err := msg.ToJSON()
	require.NoError(t, err)

	got, err := BackupSyncMessageFromJSON(body)
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.TransactionID)
}

func TestMessageFromInvalidJSON(t *testing.T) {
	_, err := DocumentExtractMessageFromJSON([]byte("{not json"))
	assert.Error(t, err)

	_, err = BackupSyncMessageFromJSON([]byte("[]"))
	assert.Error(t, err)
}
