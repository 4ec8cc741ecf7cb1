package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	CustomersRegistered = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "subman_customers_registered_total",
			Help: "Customers registered since process start",
		},
	)

	ProductsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "subman_products_created_total",
			Help: "Products added to the catalog",
		},
	)

	SubscriptionOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subman_subscription_ops_total",
			Help: "Subscription mutations by operation",
		},
		[]string{"op"}, // created|extended|settings_updated
	)

	EventsPublished = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "subman_events_published_total",
			Help: "Outbox events published to Kafka",
		},
	)

	EventsArchived = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "subman_events_archived_total",
			Help: "Events archived into ClickHouse",
		},
	)
)

func MustRegister(r prometheus.Registerer) {
	r.MustRegister(
		CustomersRegistered,
		ProductsCreated,
		SubscriptionOps,
		EventsPublished,
		EventsArchived,
	)
}
