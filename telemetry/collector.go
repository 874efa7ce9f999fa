package telemetry

// Collector accumulates events within tick windows and produces WindowStats.
type Collector struct {
	windowTicks     int64
	windowStartTick int64

	// Event counters for current window
	births       int
	deaths       int
	foodConsumed int
}

// NewCollector creates a stats collector flushing every windowTicks ticks.
func NewCollector(windowTicks int) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &Collector{windowTicks: int64(windowTicks)}
}

// RecordBirth records a reproduction event.
func (c *Collector) RecordBirth() {
	c.births++
}

// RecordDeath records a starvation death.
func (c *Collector) RecordDeath() {
	c.deaths++
}

// RecordFoodConsumed records one food item eaten and replaced.
func (c *Collector) RecordFoodConsumed() {
	c.foodConsumed++
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int64) bool {
	return currentTick-c.windowStartTick >= c.windowTicks
}

// Flush produces a WindowStats from the counted events plus the caller's
// end-of-window samples, and resets counters for the next window.
func (c *Collector) Flush(currentTick int64, population int, speeds, sizes, sights, energies []float64) WindowStats {
	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		Population:      population,
		Births:          c.births,
		Deaths:          c.deaths,
		FoodConsumed:    c.foodConsumed,
	}

	stats.SpeedMean, stats.SpeedStd = ComputeDistribution(speeds)
	stats.SizeMean, stats.SizeStd = ComputeDistribution(sizes)
	stats.SightMean, stats.SightStd = ComputeDistribution(sights)
	stats.EnergyMean, stats.EnergyP10, stats.EnergyP50, stats.EnergyP90 = ComputePercentiles(energies)

	c.windowStartTick = currentTick
	c.births = 0
	c.deaths = 0
	c.foodConsumed = 0

	return stats
}

// WindowTicks returns the number of ticks per window.
func (c *Collector) WindowTicks() int64 {
	return c.windowTicks
}
