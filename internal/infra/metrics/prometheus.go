package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AnalysesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "safewatch_analyses_total",
		Help: "Total number of video analyses, by outcome",
	}, []string{"outcome"})

	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "safewatch_stage_duration_seconds",
		Help:    "Duration of each analysis pipeline stage",
		Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
	}, []string{"stage"})

	FramesExtractedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "safewatch_frames_extracted_total",
		Help: "Total number of frames sampled across all analyses",
	})

	ActiveAnalyses = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "safewatch_active_analyses",
		Help: "Number of analyses currently in flight",
	})

	CleanupFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "safewatch_cleanup_failures_total",
		Help: "Total number of session resources that could not be released, by kind",
	}, []string{"kind"})

	RiskClassificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "safewatch_risk_classifications_total",
		Help: "Total number of classified analyses, by risk level",
	}, []string{"level"})
)
