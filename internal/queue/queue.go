package queue

import (
	"github.com/maheshrc27/myblog/internal/metrics"
	"github.com/maheshrc27/myblog/internal/repository"
	"github.com/rs/zerolog"
)

type Queue struct {
	orders  repository.CheckoutOrderRepository
	metrics *metrics.CheckoutMetrics
	log     zerolog.Logger
}

func NewQueue(
	orders repository.CheckoutOrderRepository,
	metrics *metrics.CheckoutMetrics,
	log zerolog.Logger) *Queue {
	return &Queue{
		orders:  orders,
		metrics: metrics,
		log:     log.With().Str("component", "queue").Logger(),
	}
}

const TaskTypeExpireOrder = "checkout:expire_order"

type ExpireOrderPayload struct {
	OrderID string `json:"order_id"`
}
