package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/wallhelper/internal/daypart"
)

const namespace = "wallhelper"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	ticks         *prom.CounterVec
	applyDuration *prom.HistogramVec
	candidates    *prom.GaugeVec
	daypart       *prom.GaugeVec
	reloads       *prom.CounterVec
}

// NewPrometheusRecorder constructs the collectors and registers them on reg.
func NewPrometheusRecorder(reg prom.Registerer) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		ticks: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Rotation ticks by outcome",
		}, []string{"outcome"}),
		applyDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "apply_duration_seconds",
			Help:      "Duration of wallpaper command runs",
			Buckets:   prom.DefBuckets,
		}, []string{"result"}),
		candidates: prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "candidates",
			Help:      "Size of the bucket the last selection was drawn from",
		}, []string{"source"}),
		daypart: prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "daypart_active",
			Help:      "1 for the daypart resolved on the last tick, 0 otherwise",
		}, []string{"daypart"}),
		reloads: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "config_reloads_total",
			Help:      "Configuration reloads by result",
		}, []string{"result"}),
	}
	reg.MustRegister(pr.ticks, pr.applyDuration, pr.candidates, pr.daypart, pr.reloads)
	return pr
}

func resultLabel(success bool) string {
	if success {
		return "success"
	}
	return "failed"
}

func (p *PrometheusRecorder) IncTick(outcome TickOutcome) {
	if p == nil {
		return
	}
	p.ticks.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) ObserveApplyDuration(d time.Duration, success bool) {
	if p == nil {
		return
	}
	p.applyDuration.WithLabelValues(resultLabel(success)).Observe(d.Seconds())
}

// SetCandidates records the size of the bucket a selection came from. Other sources
// are reset to 0 so only the active tier reports a value.
func (p *PrometheusRecorder) SetCandidates(source string, n int) {
	if p == nil {
		return
	}
	p.candidates.Reset()
	p.candidates.WithLabelValues(source).Set(float64(n))
}

func (p *PrometheusRecorder) SetDaypart(name string) {
	if p == nil {
		return
	}
	for _, n := range daypart.All {
		v := 0.0
		if string(n) == name {
			v = 1
		}
		p.daypart.WithLabelValues(string(n)).Set(v)
	}
}

func (p *PrometheusRecorder) IncConfigReload(success bool) {
	if p == nil {
		return
	}
	p.reloads.WithLabelValues(resultLabel(success)).Inc()
}
