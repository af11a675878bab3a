// Package metrics exposes Prometheus counters for the session operations.
package metrics

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OpSignUp       = "signup"
	OpSignIn       = "signin"
	OpSignOut      = "signout"
	OpRenewToken   = "renew_token"
	OpAuthenticate = "authenticate"
)

// Recorder counts operation outcomes. The zero value is not usable; build
// one with New.
type Recorder struct {
	registry   *prometheus.Registry
	operations *prometheus.CounterVec
	sessions   prometheus.Counter
}

func New() *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		registry: reg,
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "authkeeper",
			Name:      "operations_total",
			Help:      "Session operations by outcome.",
		}, []string{"operation", "outcome"}),
		sessions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "authkeeper",
			Name:      "clients_created_total",
			Help:      "Clients registered by successful sign-ins.",
		}),
	}
	reg.MustRegister(r.operations, r.sessions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return r
}

// Observe counts one call of op that finished with err.
func (r *Recorder) Observe(op string, err error) {
	if r == nil {
		return
	}
	r.operations.WithLabelValues(op, Outcome(err)).Inc()
	if op == OpSignIn && err == nil {
		r.sessions.Inc()
	}
}

func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Outcome folds an error into a low-cardinality label value.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, common.ErrValidation):
		return "invalid"
	case errors.Is(err, common.ErrUsernameTaken), errors.Is(err, common.ErrEmailTaken),
		errors.Is(err, common.ErrVersionConflict):
		return "conflict"
	case errors.Is(err, common.ErrInvalidCredentials), errors.Is(err, common.ErrAlreadyLoggedOut),
		errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrMissingToken):
		return "unauthorized"
	default:
		return "error"
	}
}
