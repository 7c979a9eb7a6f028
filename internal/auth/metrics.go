package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeAllowed = "allowed"
	outcomeDenied  = "denied"
	outcomeError   = "error"
)

var (
	//nolint:gochecknoglobals
	decisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_decisions_total",
			Help: "Number of authorization decisions, differentiated by permission and outcome.",
		},
		[]string{"permission", "outcome"},
	)

	//nolint:gochecknoglobals
	rejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_token_rejections_total",
			Help: "Number of rejected bearer tokens, differentiated by reason.",
		},
		[]string{"reason"},
	)
)

// CountRejection records a rejected token.
func CountRejection(err error) {
	reason := ReasonOf(err)
	if reason == "" {
		return
	}

	rejections.WithLabelValues(string(reason)).Inc()
}
