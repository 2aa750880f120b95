package gumball

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricsNamespace = "gumball"
	metricsSubsystem = "machine"
)

// Metrics 基于 Prometheus 的机器指标，作为 Observer 挂到机器上
type Metrics struct {
	machine string

	transitions *prometheus.CounterVec
	dispensed   *prometheus.CounterVec
	rejected    *prometheus.CounterVec
	inventory   *prometheus.GaugeVec
}

// NewMetrics 创建并注册指标，machine 作为标签区分不同机器
func NewMetrics(reg prometheus.Registerer, machine string) (*Metrics, error) {
	m := &Metrics{
		machine: machine,
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: metricsSubsystem,
				Name:      "transitions_total",
				Help:      "Total number of state transitions",
			},
			[]string{"machine", "from", "to"},
		),
		dispensed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: metricsSubsystem,
				Name:      "dispensed_total",
				Help:      "Total number of gumballs dispensed by color",
			},
			[]string{"machine", "color"},
		),
		rejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: metricsSubsystem,
				Name:      "rejected_total",
				Help:      "Total number of events not handled in the current state",
			},
			[]string{"machine", "state", "event"},
		),
		inventory: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: metricsSubsystem,
				Name:      "inventory",
				Help:      "Current number of gumballs in the machine",
			},
			[]string{"machine"},
		),
	}

	// 未补货的机器也导出库存 0
	m.inventory.WithLabelValues(machine).Set(0)

	if reg != nil {
		for _, c := range []prometheus.Collector{m.transitions, m.dispensed, m.rejected, m.inventory} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

func (m *Metrics) OnTransition(tr Transition) {
	m.transitions.WithLabelValues(m.machine, stateName(tr.From), stateName(tr.To)).Inc()
}

func (m *Metrics) OnDispense(ball Gumball, remaining int) {
	m.dispensed.WithLabelValues(m.machine, ball.Color).Inc()
	m.inventory.WithLabelValues(m.machine).Set(float64(remaining))
}

func (m *Metrics) OnRefill(_, total int) {
	m.inventory.WithLabelValues(m.machine).Set(float64(total))
}

func (m *Metrics) OnRejected(state State, event Event) {
	m.rejected.WithLabelValues(m.machine, stateName(state), string(event)).Inc()
}
