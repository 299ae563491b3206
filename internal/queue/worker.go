package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// HandleExpireOrderTask moves an unpaid order to expired. Orders that were
// paid in the meantime are left alone.
func (q *Queue) HandleExpireOrderTask(ctx context.Context, task *asynq.Task) error {
	var payload ExpireOrderPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("decoding expire order payload: %v: %w", err, asynq.SkipRetry)
	}
	if payload.OrderID == "" {
		return fmt.Errorf("expire order task without order id: %w", asynq.SkipRetry)
	}

	expired, err := q.orders.ExpireIfOpen(ctx, payload.OrderID)
	if err != nil {
		return err
	}

	if expired {
		q.metrics.RecordExpiredOrder()
		q.log.Info().Str("order_id", payload.OrderID).Msg("checkout order expired")
	}
	return nil
}
