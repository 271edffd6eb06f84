package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultOK    = "ok"
	resultError = "error"
)

var (
	calculations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "betterrest_calculations_total",
		Help: "Bedtime calculations by result.",
	}, []string{"result"})

	modelLoads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "betterrest_model_loads_total",
		Help: "Sleep model load attempts by result.",
	}, []string{"result"})

	predictedSleep = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "betterrest_predicted_sleep_hours",
		Help:    "Sleep duration predicted by the model.",
		Buckets: prometheus.LinearBuckets(3, 1, 11),
	})
)
