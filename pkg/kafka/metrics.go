package kafka

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var messagesPublished = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "storefront_kafka_messages_published_total",
		Help: "Kafka publish attempts by topic and outcome",
	},
	[]string{"topic", "outcome"},
)
