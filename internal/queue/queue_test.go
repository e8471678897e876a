package queue

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openbid/auction-marketplace/internal/repository"
)

func TestConsumerHandlePersistsEvent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	c := NewConsumer("", repository.NewNotificationRepo(db))

	mock.ExpectExec("INSERT INTO notifications").
		WithArgs(uint64(7), "Auction Won", "you won", "success").
		WillReturnResult(sqlmock.NewResult(1, 1))

	body, err := json.Marshal(NotificationEvent{
		AccountID: 7,
		Title:     "Auction Won",
		Message:   "you won",
		Severity:  "success",
		SentAt:    "2025-06-15T12:00:00Z",
	})
	require.NoError(t, err)

	require.NoError(t, c.handle(context.Background(), body))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConsumerHandleRejectsBadEvents(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	c := NewConsumer("", repository.NewNotificationRepo(db))

	assert.Error(t, c.handle(context.Background(), []byte("not json")))
	assert.Error(t, c.handle(context.Background(), []byte(`{"title":"no account"}`)))
	// Neither malformed event touches the database.
	assert.NoError(t, mock.ExpectationsWereMet())
}
