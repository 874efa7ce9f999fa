package telemetry

// Lineage tracks parent/offspring relationships by creature ID. Offspring
// lists are append-only back-references: the world owns the creatures, the
// tracker only records identities, and records survive the death of both
// parent and child so historical lineage stays queryable.
type Lineage struct {
	records map[uint32]*LineageRecord
}

// LineageRecord is one creature's lineage entry.
type LineageRecord struct {
	BirthTick int64

	// Parent IDs; both zero for world-init spawns.
	ParentA, ParentB uint32

	// IDs of children produced, in birth order.
	Offspring []uint32
}

// NewLineage creates an empty lineage tracker.
func NewLineage() *Lineage {
	return &Lineage{records: make(map[uint32]*LineageRecord)}
}

// Register creates a record for a newborn or world-init creature.
func (l *Lineage) Register(id uint32, birthTick int64, parentA, parentB uint32) {
	l.records[id] = &LineageRecord{
		BirthTick: birthTick,
		ParentA:   parentA,
		ParentB:   parentB,
	}
}

// RecordChild appends a child's ID to a parent's offspring list.
func (l *Lineage) RecordChild(parentID, childID uint32) {
	if r := l.records[parentID]; r != nil {
		r.Offspring = append(r.Offspring, childID)
	}
}

// Get returns a creature's record, or nil if it was never registered.
func (l *Lineage) Get(id uint32) *LineageRecord {
	return l.records[id]
}

// ChildCount returns how many children a creature has produced.
func (l *Lineage) ChildCount(id uint32) int {
	if r := l.records[id]; r != nil {
		return len(r.Offspring)
	}
	return 0
}

// Count returns the number of creatures ever registered.
func (l *Lineage) Count() int {
	return len(l.records)
}
