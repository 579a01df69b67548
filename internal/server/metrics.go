package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	resultOK       = "ok"
	resultRejected = "rejected"
	resultError    = "error"
)

type metrics struct {
	registry      *prometheus.Registry
	registrations *prometheus.CounterVec
	logins        *prometheus.CounterVec
	verifications *prometheus.CounterVec
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sigild",
			Name:      "registrations_total",
			Help:      "Identity registrations by result.",
		}, []string{"result"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sigild",
			Name:      "logins_total",
			Help:      "Login attempts by result.",
		}, []string{"result"}),
		verifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sigild",
			Name:      "action_verifications_total",
			Help:      "Submitted action signature checks by result and signing mode.",
		}, []string{"result", "mode"}),
	}
	m.registry.MustRegister(m.registrations, m.logins, m.verifications)
	return m
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
