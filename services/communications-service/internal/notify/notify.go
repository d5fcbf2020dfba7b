// Package notify delivers the operations notifications of the
// communications service.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/solushipx/logisynapse/shared/contracts"
)

// UnmatchedQueue carries contracts.UnmatchedNotice jobs.
const UnmatchedQueue = "reconcile_unmatched"

// ErrMalformedJob marks a job that can never be processed. Workers drop it
// instead of requeueing.
var ErrMalformedJob = errors.New("malformed job")

// Notifier turns queued jobs into notifications for the operations team.
// Delivery is a structured log line that the log pipeline forwards.
type Notifier struct {
	logger *zap.Logger
}

func NewNotifier(logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{logger: logger}
}

// HandleUnmatched decodes one UnmatchedNotice and notifies operations about
// its terms.
func (n *Notifier) HandleUnmatched(ctx context.Context, body []byte) error {
	var notice contracts.UnmatchedNotice
	if err := json.Unmarshal(body, &notice); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedJob, err)
	}
	if len(notice.Terms) == 0 {
		return fmt.Errorf("%w: notice has no terms", ErrMalformedJob)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	subject := "Unmatched manual search"
	if notice.Source == contracts.SourceBatch {
		subject = fmt.Sprintf("Batch %s: %d unmatched reference(s)", notice.BatchID, len(notice.Terms))
	}
	n.logger.Info("ops notification sent",
		zap.String("subject", subject),
		zap.String("source", notice.Source),
		zap.String("batch_id", notice.BatchID),
		zap.String("user_id", notice.UserID.String()),
		zap.String("company_id", notice.CompanyID),
		zap.String("terms", strings.Join(notice.Terms, ", ")),
		zap.Time("queued_at", notice.QueuedAt))
	return nil
}
