// Package metrics exposes prometheus collectors for the mining node.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// BlocksMined counts blocks appended to the chain (genesis excluded).
	BlocksMined = promauto.NewCounter(prometheus.CounterOpts{
		Name: "primechain_blocks_mined_total",
		Help: "Blocks mined and appended to the chain",
	})

	// RoundsFailed counts mining rounds that ended in an error.
	RoundsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "primechain_rounds_failed_total",
		Help: "Mining rounds that produced no block",
	})

	// RoundDuration observes wall-clock seconds per completed round.
	RoundDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "primechain_round_duration_seconds",
		Help:    "Wall-clock duration of completed mining rounds",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	})

	// CandidatesTested counts candidates drawn by winning workers.
	CandidatesTested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "primechain_candidates_tested_total",
		Help: "Candidates drawn by winning workers",
	})

	// GCDRejected counts candidates rejected by the coprimality filter.
	GCDRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "primechain_gcd_rejected_total",
		Help: "Candidates rejected because a factor pair was not coprime",
	})

	// HeuristicRejected counts candidates rejected by the density filter.
	HeuristicRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "primechain_heuristic_rejected_total",
		Help: "Candidates rejected by the prime-density heuristic",
	})

	// MillerRabinRejected counts candidates proven composite.
	MillerRabinRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "primechain_miller_rabin_rejected_total",
		Help: "Candidates proven composite by Miller-Rabin",
	})

	// ChainHeight tracks the chain length including genesis.
	ChainHeight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "primechain_chain_height",
		Help: "Number of blocks in the chain including genesis",
	})

	// DifficultyNLimit tracks the current factor bound.
	DifficultyNLimit = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "primechain_difficulty_n_limit",
		Help: "Current upper bound on factors b and d",
	})

	// DifficultyMinDigits tracks the current digit count for a and c.
	DifficultyMinDigits = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "primechain_difficulty_min_digits",
		Help: "Current decimal digit count for factors a and c",
	})

	// DifficultyMinProb tracks the current heuristic threshold.
	DifficultyMinProb = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "primechain_difficulty_min_prob",
		Help: "Current minimum heuristic prime-probability estimate",
	})
)

// Handler returns the HTTP handler serving the prometheus exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}
