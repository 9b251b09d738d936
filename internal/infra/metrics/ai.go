package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		aiPromptTokens,
		aiCallsLatencyMs,
		aiErrorsTotal,
	)
}

var (
	aiPromptTokens = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_prompt_tokens_total",
			Help: "Sum of prompt tokens sent per provider/model.",
		},
		[]string{"provider", "model"},
	)

	aiCallsLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_calls_latency_ms",
			Help:    "AI call latency distribution in milliseconds.",
			Buckets: []float64{50, 100, 200, 400, 800, 1600, 3000, 5000, 10000, 30000},
		},
		[]string{"provider", "model", "success"},
	)

	aiErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_errors_total",
			Help: "Generation failures per provider and error kind.",
		},
		[]string{"provider", "kind"},
	)
)

func AddPromptTokens(provider, model string, n int) {
	if n > 0 {
		aiPromptTokens.WithLabelValues(provider, model).Add(float64(n))
	}
}

func ObserveAICall(provider, model string, ms float64, success bool) {
	s := "false"
	if success {
		s = "true"
	}
	aiCallsLatencyMs.WithLabelValues(provider, model, s).Observe(ms)
}

func IncAIError(provider, kind string) {
	aiErrorsTotal.WithLabelValues(provider, kind).Inc()
}
