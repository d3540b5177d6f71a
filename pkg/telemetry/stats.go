// Package telemetry aggregates per-tick flock statistics for offline
// analysis and writes them out as CSV.
package telemetry

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/flocklab/go-flocking-simulation/pkg/behavior"
	"github.com/flocklab/go-flocking-simulation/pkg/geometry"
)

// TickStats holds the aggregates of one simulation tick.
type TickStats struct {
	Tick    int     `csv:"tick"`
	SimTime float64 `csv:"sim_time"`

	CentroidX float64 `csv:"centroid_x"`
	CentroidY float64 `csv:"centroid_y"`

	// Heading distribution over normalized headings, in degrees.
	HeadingMean float64 `csv:"heading_mean"`
	HeadingStd  float64 `csv:"heading_std"`

	// Distance-to-centroid distribution ("how tight is the flock").
	SpreadMean float64 `csv:"spread_mean"`
	SpreadP90  float64 `csv:"spread_p90"`

	// Smallest pairwise agent distance; zero for a single agent.
	NearestMin float64 `csv:"nearest_min"`
}

// Sample computes the statistics of the flock's current state.
func Sample(tick int, simTime float64, f *behavior.Flock) (TickStats, error) {
	center, err := f.Centroid()
	if err != nil {
		return TickStats{}, err
	}

	agents := f.Agents()
	headings := make([]float64, len(agents))
	spread := make([]float64, len(agents))
	for i, a := range agents {
		headings[i] = geometry.NormalizeAngle(a.Heading)
		spread[i] = a.Pos.DistanceTo(center)
	}
	// stat.Quantile requires sorted input.
	sort.Float64s(spread)

	s := TickStats{
		Tick:        tick,
		SimTime:     simTime,
		CentroidX:   center.X,
		CentroidY:   center.Y,
		HeadingMean: stat.Mean(headings, nil),
		SpreadMean:  stat.Mean(spread, nil),
		SpreadP90:   stat.Quantile(0.9, stat.Empirical, spread, nil),
		NearestMin:  nearestMin(agents),
	}
	// Sample std-dev needs at least two observations.
	if len(headings) > 1 {
		s.HeadingStd = stat.StdDev(headings, nil)
	}
	return s, nil
}

// nearestMin scans all agent pairs for the smallest distance.
func nearestMin(agents []*behavior.Agent) float64 {
	if len(agents) < 2 {
		return 0
	}
	minSq := math.MaxFloat64
	for i, a := range agents {
		for _, b := range agents[i+1:] {
			if d := a.Pos.DistanceSquaredTo(b.Pos); d < minSq {
				minSq = d
			}
		}
	}
	return math.Sqrt(minSq)
}

// LogValue implements slog.LogValuer for structured logging.
func (s TickStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("tick", s.Tick),
		slog.Float64("sim_time", s.SimTime),
		slog.Float64("centroid_x", s.CentroidX),
		slog.Float64("centroid_y", s.CentroidY),
		slog.Float64("heading_mean", s.HeadingMean),
		slog.Float64("heading_std", s.HeadingStd),
		slog.Float64("spread_mean", s.SpreadMean),
		slog.Float64("spread_p90", s.SpreadP90),
		slog.Float64("nearest_min", s.NearestMin),
	)
}
