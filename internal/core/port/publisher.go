package port

import (
	"context"

	"github.com/pancudaniel7/lightclient-rpc-service/internal/core/entity"
)

// TransactionPublisher emits an event for every raw transaction the backend
// accepted for broadcast.
type TransactionPublisher interface {
	PublishTransaction(ctx context.Context, tx *entity.SubmittedTransaction) error
}
