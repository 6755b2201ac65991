package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/dig"

	"delivery-analytics/internal/config"
	"delivery-analytics/internal/logx"
	"delivery-analytics/internal/metrics"
	"delivery-analytics/internal/service/events"
	"delivery-analytics/internal/transport/kafka"
)

type orderEventsRecorderIn struct {
	dig.In

	Vec *prometheus.CounterVec `name:"order_events_total"`
}

func newOrderEventsRecorder(in orderEventsRecorderIn) events.Recorder {
	return metrics.NewOrderEventRecorder(in.Vec)
}

func makeOrderEventsHandler(p *events.Processor) kafka.HandleFunc {
	return p.Handle
}

func newOrderEventsConsumer(cfg *config.Config, logger logx.Logger, h kafka.HandleFunc) (*kafka.Consumer, error) {
	k := cfg.Kafka
	return kafka.NewConsumer(logger, k.Brokers, k.GroupID, k.Topic, h)
}

func registerWorker(container *dig.Container) error {
	return provideAll(container,
		newOrderEventsRecorder,
		events.NewProcessor,
		makeOrderEventsHandler,
		newOrderEventsConsumer,
	)
}
