package sim

import (
	"context"
	"log/slog"

	"github.com/pthm-cable/selection/telemetry"
)

// emitTelemetry writes the tick's census rows to the configured sinks and
// flushes windowed statistics when the window closes. Telemetry failures
// are logged and never stop the simulation.
func (s *Sim) emitTelemetry(rows []telemetry.CensusRow) {
	if s.output != nil {
		if err := s.output.WriteCensus(rows); err != nil {
			slog.Warn("failed to write census", "tick", s.tick, "error", err)
		}
	}

	if s.store != nil {
		if err := s.store.AppendCensus(context.Background(), s.runID, rows); err != nil {
			slog.Warn("failed to append census to store", "tick", s.tick, "error", err)
		}
	}

	if !s.collector.ShouldFlush(s.tick) {
		return
	}

	speeds, sizes, sights, energies := s.sampleTraits()
	stats := s.collector.Flush(s.tick, s.population, speeds, sizes, sights, energies)

	if s.logStats {
		stats.LogStats()
	}
	if s.output != nil {
		if err := s.output.WriteStats(stats); err != nil {
			slog.Warn("failed to write stats", "tick", s.tick, "error", err)
		}
	}
}

// sampleTraits gathers trait and energy values across the living population.
func (s *Sim) sampleTraits() (speeds, sizes, sights, energies []float64) {
	speeds = make([]float64, 0, s.population)
	sizes = make([]float64, 0, s.population)
	sights = make([]float64, 0, s.population)
	energies = make([]float64, 0, s.population)

	query := s.creatureFilter.Query()
	for query.Next() {
		_, _, genome, energy, _ := query.Get()
		speeds = append(speeds, genome.Speed)
		sizes = append(sizes, genome.Size)
		sights = append(sights, genome.Sight)
		energies = append(energies, energy.Value)
	}

	return speeds, sizes, sights, energies
}

// saveRunSummary persists the session's final state when a store is wired.
func (s *Sim) saveRunSummary() {
	if s.store == nil {
		return
	}

	summary := telemetry.RunSummary{
		RunID:      s.runID,
		StartedAt:  s.startedAt,
		Seed:       s.seed,
		Ticks:      s.tick,
		Population: s.population,
	}
	if err := s.store.SaveRunSummary(context.Background(), summary); err != nil {
		slog.Warn("failed to save run summary", "run_id", s.runID, "error", err)
	}
}
