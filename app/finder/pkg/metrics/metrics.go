package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ResolutionsTotal 按最终来源统计的解析次数 (llm / search / none)
	ResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finder_resolutions_total",
			Help: "Total number of recommendation resolutions by source",
		},
		[]string{"source"},
	)

	// FallbacksTotal 按原因统计的回退次数
	FallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finder_llm_fallbacks_total",
			Help: "Total number of LLM attempts that fell back to search, by reason",
		},
		[]string{"reason"},
	)

	// SearchErrorsTotal 回退搜索失败次数
	SearchErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "finder_search_errors_total",
			Help: "Total number of failed fallback searches",
		},
	)

	// ResolutionDuration 单次解析耗时
	ResolutionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "finder_resolution_duration_seconds",
			Help:    "Duration of recommendation resolutions in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"source"},
	)

	// LLMBreakerState LLM 熔断器状态: 0=closed, 1=half-open, 2=open
	LLMBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "finder_llm_breaker_state",
			Help: "State of the LLM circuit breaker (0=closed, 1=half-open, 2=open)",
		},
	)
)
