package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const expireOrderMaxRetry = 5

// Scheduler enqueues delayed checkout tasks on asynq.
type Scheduler struct {
	client *asynq.Client
}

func NewScheduler(client *asynq.Client) *Scheduler {
	return &Scheduler{client: client}
}

func NewExpireOrderTask(orderID string) (*asynq.Task, error) {
	payload, err := json.Marshal(ExpireOrderPayload{OrderID: orderID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeExpireOrder, payload), nil
}

// ScheduleOrderExpiry enqueues a task that expires orderID once after has
// passed. Scheduling the same order twice is rejected by asynq as a duplicate.
func (s *Scheduler) ScheduleOrderExpiry(ctx context.Context, orderID string, after time.Duration) error {
	task, err := NewExpireOrderTask(orderID)
	if err != nil {
		return err
	}

	_, err = s.client.EnqueueContext(ctx, task,
		asynq.ProcessIn(after),
		asynq.TaskID("expire:"+orderID),
		asynq.MaxRetry(expireOrderMaxRetry),
	)
	return err
}
