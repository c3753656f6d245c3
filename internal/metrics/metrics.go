// Package metrics collects and exposes Prometheus metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is the interface the service layer records through.
type Recorder interface {
	RecordInviteCreated()
	RecordJoin(outcome string)
	RecordStampSent(stampType string)
	RecordAccountDeleted(deletedItems int)
}

// Collector is the Prometheus-backed Recorder.
type Collector struct {
	registry        *prometheus.Registry
	invitesCreated  prometheus.Counter
	joins           *prometheus.CounterVec
	stampsSent      *prometheus.CounterVec
	accountsDeleted prometheus.Counter
	itemsDeleted    prometheus.Counter
}

func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		invitesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "futarinote_invites_created_total",
			Help: "Invite codes issued.",
		}),
		joins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "futarinote_joins_total",
			Help: "Join attempts by outcome.",
		}, []string{"outcome"}),
		stampsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "futarinote_stamps_sent_total",
			Help: "Stamps sent by type.",
		}, []string{"stamp_type"}),
		accountsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "futarinote_accounts_deleted_total",
			Help: "Accounts deleted.",
		}),
		itemsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "futarinote_deleted_items_total",
			Help: "Group-scoped records removed during account deletion.",
		}),
	}

	registry.MustRegister(
		c.invitesCreated,
		c.joins,
		c.stampsSent,
		c.accountsDeleted,
		c.itemsDeleted,
	)

	return c
}

func (c *Collector) RecordInviteCreated() {
	c.invitesCreated.Inc()
}

func (c *Collector) RecordJoin(outcome string) {
	c.joins.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordStampSent(stampType string) {
	c.stampsSent.WithLabelValues(stampType).Inc()
}

func (c *Collector) RecordAccountDeleted(deletedItems int) {
	c.accountsDeleted.Inc()
	c.itemsDeleted.Add(float64(deletedItems))
}

// Handler serves the /metrics endpoint for this collector's registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Noop discards all recordings. Used in tests.
type Noop struct{}

func (Noop) RecordInviteCreated() {}
func (Noop) RecordJoin(string) {}
func (Noop) RecordStampSent(string) {}
func (Noop) RecordAccountDeleted(int) {}
