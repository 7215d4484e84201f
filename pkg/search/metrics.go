package search

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	nodesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tacos_search_nodes_created_total",
		Help: "Number of search nodes created",
	})
	nodesExpanded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tacos_search_nodes_expanded_total",
		Help: "Number of search nodes expanded by resulting state",
	}, []string{"state"})
	nodesLabeled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tacos_search_nodes_labeled_total",
		Help: "Number of search nodes labeled by label",
	}, []string{"label"})
	buildDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tacos_search_build_duration_seconds",
		Help:    "Duration of search tree construction",
		Buckets: prometheus.DefBuckets,
	}, []string{"mode"})
)
