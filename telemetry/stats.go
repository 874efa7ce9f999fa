package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a tick window.
type WindowStats struct {
	WindowStartTick int64 `csv:"-"`
	WindowEndTick   int64 `csv:"window_end"`

	// Population at window end
	Population int `csv:"population"`

	// Events during window
	Births       int `csv:"births"`
	Deaths       int `csv:"deaths"`
	FoodConsumed int `csv:"food_consumed"`

	// Trait distribution (sampled at window end)
	SpeedMean float64 `csv:"speed_mean"`
	SpeedStd  float64 `csv:"speed_std"`
	SizeMean  float64 `csv:"size_mean"`
	SizeStd   float64 `csv:"size_std"`
	SightMean float64 `csv:"sight_mean"`
	SightStd  float64 `csv:"sight_std"`

	// Energy distribution (sampled at window end)
	EnergyMean float64 `csv:"energy_mean"`
	EnergyP10  float64 `csv:"energy_p10"`
	EnergyP50  float64 `csv:"energy_p50"`
	EnergyP90  float64 `csv:"energy_p90"`
}

// ComputeDistribution returns mean and standard deviation of a sample.
// Returns zeros for an empty sample.
func ComputeDistribution(values []float64) (mean, std float64) {
	if len(values) == 0 {
		return 0, 0
	}
	mean = stat.Mean(values, nil)
	if len(values) > 1 {
		std = stat.StdDev(values, nil)
	}
	return mean, std
}

// ComputePercentiles returns the mean and the 10th/50th/90th percentiles
// of a sample. Returns zeros for an empty sample.
func ComputePercentiles(values []float64) (mean, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}

	mean = stat.Mean(values, nil)

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = stat.Quantile(0.10, stat.Empirical, sorted, nil)
	p50 = stat.Quantile(0.50, stat.Empirical, sorted, nil)
	p90 = stat.Quantile(0.90, stat.Empirical, sorted, nil)
	return mean, p10, p50, p90
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"population", s.Population,
		"births", s.Births,
		"deaths", s.Deaths,
		"food_consumed", s.FoodConsumed,
		"speed_mean", s.SpeedMean,
		"speed_std", s.SpeedStd,
		"size_mean", s.SizeMean,
		"size_std", s.SizeStd,
		"sight_mean", s.SightMean,
		"sight_std", s.SightStd,
		"energy_mean", s.EnergyMean,
		"energy_p10", s.EnergyP10,
		"energy_p50", s.EnergyP50,
		"energy_p90", s.EnergyP90,
	)
}
