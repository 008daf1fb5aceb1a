package httptransport

import "expvar"

var (
	metricActionTotal       = expvar.NewInt("action_total")
	metricActionErrorsTotal = expvar.NewInt("action_errors_total")
)
