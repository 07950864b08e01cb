package handler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	rotationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "prompt_rotations_total",
		Help: "Total number of successful prompt rotations.",
	})

	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "prompt_cache_hits_total",
		Help: "Total number of current-prompt requests served from the stored record.",
	})

	exhaustionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "prompt_exhaustions_total",
		Help: "Total number of rotation attempts that found no unused active prompt.",
	})
)
