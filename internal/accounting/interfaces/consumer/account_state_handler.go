package consumer

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/segmentio/kafka-go"
	"github.com/wyfcoding/accountingengine/internal/accounting/application"
)

const AccountStateTopic = "venue.account.state"

// AccountStateHandler feeds venue-reported balance snapshots from kafka into
// the accounting service.
type AccountStateHandler struct {
	service *application.AccountingService
	logger  *slog.Logger
}

func NewAccountStateHandler(service *application.AccountingService, logger *slog.Logger) *AccountStateHandler {
	return &AccountStateHandler{service: service, logger: logger}
}

func (h *AccountStateHandler) Handle(ctx context.Context, msg kafka.Message) error {
	var input application.AccountStateInput
	if err := json.Unmarshal(msg.Value, &input); err != nil {
		h.logger.ErrorContext(ctx, "failed to unmarshal account state message",
			"topic", msg.Topic, "error", err)
		return err
	}

	event, err := input.ToDomain()
	if err != nil {
		// Malformed venue payloads are logged and skipped; replaying them
		// would fail forever.
		h.logger.ErrorContext(ctx, "discarding invalid account state",
			"account_id", input.AccountID, "error", err)
		return nil
	}

	return h.service.ApplyAccountState(ctx, event)
}
