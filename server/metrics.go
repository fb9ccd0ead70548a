package server

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	linksIssued = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "secureview",
		Name:      "links_issued_total",
		Help:      "Total number of share links issued by resource kind",
	}, []string{"kind"})

	uploadsRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "secureview",
		Name:      "uploads_rejected_total",
		Help:      "Total number of rejected uploads by reason",
	}, []string{"reason"})

	gateDecisions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "secureview",
		Name:      "gate_decisions_total",
		Help:      "Total number of classified navigations by surface and result",
	}, []string{"surface", "result"})

	blobBytesServed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "secureview",
		Name:      "blob_bytes_served_total",
		Help:      "Total bytes of stored documents served",
	})
)

func init() {
	prometheus.MustRegister(linksIssued, uploadsRejected, gateDecisions, blobBytesServed)
}
