package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "crm_assistant"

type Metrics struct {
	Registry *prometheus.Registry

	commandsTotal   *prometheus.CounterVec
	unparsedTotal   prometheus.Counter
	rulePasses      prometheus.Counter
	skippedTicks    prometheus.Counter
	ruleFirings     *prometheus.CounterVec
	ruleFailures    *prometheus.CounterVec
	actionsExecuted *prometheus.CounterVec
}

// New registers the assistant collectors on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		Registry: reg,
		commandsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "commands_total",
				Help:      "Executed assistant commands by intent and outcome",
			},
			[]string{"intent", "success"},
		),
		unparsedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "unparsed_utterances_total",
				Help:      "Utterances no intent pattern matched",
			},
		),
		rulePasses: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "automation_passes_total",
				Help:      "Completed automation evaluation passes",
			},
		),
		skippedTicks: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "automation_skipped_ticks_total",
				Help:      "Ticks skipped because a previous pass was still running",
			},
		),
		ruleFirings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "automation_rule_firings_total",
				Help:      "Rules whose trigger evaluated true",
			},
			[]string{"rule"},
		),
		ruleFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "automation_rule_failures_total",
				Help:      "Rules that failed during evaluation or execution",
			},
			[]string{"rule"},
		),
		actionsExecuted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "automation_actions_total",
				Help:      "Automation actions by type and outcome",
			},
			[]string{"action", "status"},
		),
	}

	reg.MustRegister(
		m.commandsTotal,
		m.unparsedTotal,
		m.rulePasses,
		m.skippedTicks,
		m.ruleFirings,
		m.ruleFailures,
		m.actionsExecuted,
	)
	return m
}

// Methods tolerate a nil receiver so components can run without metrics.

func (m *Metrics) CommandExecuted(intent string, success bool) {
	if m == nil {
		return
	}
	m.commandsTotal.WithLabelValues(intent, strconv.FormatBool(success)).Inc()
}

func (m *Metrics) Unparsed() {
	if m == nil {
		return
	}
	m.unparsedTotal.Inc()
}

func (m *Metrics) PassCompleted() {
	if m == nil {
		return
	}
	m.rulePasses.Inc()
}

func (m *Metrics) TickSkipped() {
	if m == nil {
		return
	}
	m.skippedTicks.Inc()
}

func (m *Metrics) RuleFired(rule string) {
	if m == nil {
		return
	}
	m.ruleFirings.WithLabelValues(rule).Inc()
}

func (m *Metrics) RuleFailed(rule string) {
	if m == nil {
		return
	}
	m.ruleFailures.WithLabelValues(rule).Inc()
}

func (m *Metrics) ActionExecuted(action, status string) {
	if m == nil {
		return
	}
	m.actionsExecuted.WithLabelValues(action, status).Inc()
}
