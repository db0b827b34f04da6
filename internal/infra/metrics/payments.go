package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		paymentPhasesTotal,
		callbackRejectedTotal,
	)
}

var (
	paymentPhasesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_phases_total",
			Help: "Payment lifecycle phases by gateway, phase and outcome.",
		},
		[]string{"gateway", "phase", "outcome"},
	)

	callbackRejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_callback_rejected_total",
			Help: "Callbacks settled as failed before any verify call, by gateway.",
		},
		[]string{"gateway"},
	)
)

func IncPhase(gateway, phase string, succeed bool) {
	outcome := "failed"
	if succeed {
		outcome = "succeed"
	}
	paymentPhasesTotal.WithLabelValues(gateway, phase, outcome).Inc()
}

func IncCallbackRejected(gateway string) {
	callbackRejectedTotal.WithLabelValues(gateway).Inc()
}
