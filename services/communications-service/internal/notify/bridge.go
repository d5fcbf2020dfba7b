package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/solushipx/logisynapse/shared/contracts"
	"github.com/solushipx/logisynapse/shared/rabbitmq"
)

// eventSearchCompleted mirrors the event name the match service publishes.
const eventSearchCompleted = "match.search.completed"

type searchEvent struct {
	Event   string `json:"event"`
	Payload struct {
		UserID    string    `json:"userID"`
		CompanyID string    `json:"companyID"`
		Term      string    `json:"term"`
		Matches   int       `json:"matches"`
		At        time.Time `json:"at"`
	} `json:"payload"`
}

// SearchBridge translates manual searches that found nothing into
// UnmatchedNotice jobs, so they reach operations the same way unmatched batch
// terms do.
type SearchBridge struct {
	queue  rabbitmq.QueuePublisher
	logger *zap.Logger
}

func NewSearchBridge(queue rabbitmq.QueuePublisher, logger *zap.Logger) *SearchBridge {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SearchBridge{queue: queue, logger: logger}
}

// Handle is a kafka.Handler for the search events topic.
func (b *SearchBridge) Handle(ctx context.Context, key, value []byte) error {
	var evt searchEvent
	if err := json.Unmarshal(value, &evt); err != nil {
		b.logger.Warn("bridge: failed to unmarshal kafka message", zap.Error(err))
		return nil
	}
	if evt.Event != eventSearchCompleted || evt.Payload.Matches > 0 {
		return nil
	}
	userID, err := uuid.Parse(evt.Payload.UserID)
	if err != nil {
		b.logger.Warn("bridge: search event without a valid user", zap.String("user_id", evt.Payload.UserID))
		return nil
	}

	notice := contracts.UnmatchedNotice{
		Source:    contracts.SourceManualSearch,
		UserID:    userID,
		CompanyID: evt.Payload.CompanyID,
		Terms:     []string{evt.Payload.Term},
		QueuedAt:  evt.Payload.At,
	}
	if notice.QueuedAt.IsZero() {
		notice.QueuedAt = time.Now().UTC()
	}
	// returning the error leaves the offset uncommitted so Kafka redelivers
	if err := rabbitmq.PublishJSON(ctx, b.queue, UnmatchedQueue, notice); err != nil {
		return err
	}
	b.logger.Debug("bridge: unmatched search queued", zap.String("term", evt.Payload.Term))
	return nil
}
