package logger

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// MetricsNamespace prefixes every metric exported by the logger.
const MetricsNamespace = "goblogadmin"

// LevelCounter is a zerolog hook counting written log messages per level.
type LevelCounter struct {
	messages *prometheus.CounterVec
}

// Run implements zerolog.Hook.
func (h LevelCounter) Run(_ *zerolog.Event, level zerolog.Level, _ string) {
	if level == zerolog.NoLevel || level == zerolog.Disabled {
		return
	}

	h.messages.WithLabelValues(level.String()).Inc()
}

// NewLevelCounter registers goblogadmin_log_messages_total for service on reg.
// Registering the same service twice reuses the counter already registered.
func NewLevelCounter(reg prometheus.Registerer, service string) (LevelCounter, error) {
	messages := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   MetricsNamespace,
			Subsystem:   "log",
			Name:        "messages_total",
			Help:        "Number of log messages written, by level.",
			ConstLabels: prometheus.Labels{"service": service},
		},
		[]string{"level"},
	)

	if err := reg.Register(messages); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return LevelCounter{}, err //nolint:wrapcheck
		}

		existing, ok := are.ExistingCollector.(*prometheus.CounterVec)
		if !ok {
			return LevelCounter{}, err //nolint:wrapcheck
		}

		messages = existing
	}

	return LevelCounter{messages: messages}, nil
}
