package processor

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	instructions *prometheus.CounterVec
	closedGrants prometheus.Counter
	lockedTokens *prometheus.GaugeVec
}

func NewMetrics(registerer prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		instructions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vesting_instructions_total",
			Help: "Number of executed instructions by kind and result",
		}, []string{"instruction", "result"}),
		closedGrants: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vesting_grants_closed_total",
			Help: "Number of grants closed by devesting",
		}),
		lockedTokens: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "vesting_locked_tokens",
			Help: "Tokens locked for grants per pool type",
		}, []string{"pool_type"}),
	}

	for _, c := range []prometheus.Collector{m.instructions, m.closedGrants, m.lockedTokens} {
		if err := registerer.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observe(kind Kind, err error) {
	if m == nil {
		return
	}
	m.instructions.WithLabelValues(kind.String(), resultLabel(err)).Inc()
}

func (m *Metrics) grantClosed() {
	if m == nil {
		return
	}
	m.closedGrants.Inc()
}

func (m *Metrics) setLocked(poolType string, locked uint64) {
	if m == nil {
		return
	}
	m.lockedTokens.WithLabelValues(poolType).Set(float64(locked))
}

func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	if code, ok := Code(err); ok {
		return strconv.FormatUint(uint64(code), 10)
	}
	return "error"
}
