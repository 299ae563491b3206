package job

import (
	"context"
	"time"

	"github.com/maheshrc27/myblog/internal/metrics"
	"github.com/maheshrc27/myblog/internal/repository"
	"github.com/rs/zerolog"
)

const sweepTimeout = time.Minute

type SubscriptionExpiryJob struct {
	subs    repository.SubscriptionRepository
	metrics *metrics.CheckoutMetrics
	log     zerolog.Logger
	now     func() time.Time
}

func NewSubscriptionExpiryJob(
	subs repository.SubscriptionRepository,
	metrics *metrics.CheckoutMetrics,
	log zerolog.Logger) *SubscriptionExpiryJob {
	return &SubscriptionExpiryJob{
		subs:    subs,
		metrics: metrics,
		log:     log.With().Str("component", "subscription_expiry").Logger(),
		now:     time.Now,
	}
}

// DeactivateExpired clears the active flag on subscriptions whose end date has passed.
func (j *SubscriptionExpiryJob) DeactivateExpired() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	n, err := j.subs.DeactivateExpired(ctx, j.now())
	if err != nil {
		j.log.Error().Err(err).Msg("subscription sweep failed")
		return
	}

	j.metrics.RecordDeactivated(n)
	if n > 0 {
		j.log.Info().Int64("count", n).Msg("deactivated expired subscriptions")
	}
}
