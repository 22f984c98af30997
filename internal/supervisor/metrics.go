package supervisor

import "github.com/prometheus/client_golang/prometheus"

var (
	instancesRunning = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "serbod",
			Subsystem: "supervisor",
			Name:      "instances_running",
			Help:      "Number of currently supervised server processes",
		},
	)

	startsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "serbod",
			Subsystem: "supervisor",
			Name:      "starts_total",
			Help:      "Total number of successful server starts",
		},
	)

	stopsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "serbod",
			Subsystem: "supervisor",
			Name:      "stops_total",
			Help:      "Total number of completed server stops",
		},
	)

	consoleLinesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "serbod",
			Subsystem: "supervisor",
			Name:      "console_lines_total",
			Help:      "Total console output lines captured across all servers",
		},
	)

	commandsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "serbod",
			Subsystem: "supervisor",
			Name:      "commands_total",
			Help:      "Total console commands enqueued across all servers",
		},
	)
)

func init() {
	prometheus.MustRegister(instancesRunning, startsTotal, stopsTotal, consoleLinesTotal, commandsTotal)
}
