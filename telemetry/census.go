// Package telemetry collects per-tick census records and windowed
// aggregate statistics, and persists them to CSV and SQLite.
package telemetry

// CensusRow is one living creature's entry in the per-tick census.
type CensusRow struct {
	Tick       int64   `csv:"tick" json:"tick"`
	CreatureID uint32  `csv:"creature_id" json:"creature_id"`
	Speed      float64 `csv:"speed" json:"speed"`
	Size       float64 `csv:"size" json:"size"`
	Sight      float64 `csv:"sight" json:"sight"`
	Children   int     `csv:"children" json:"children"`
	HasMate    bool    `csv:"has_mate" json:"has_mate"`
}
