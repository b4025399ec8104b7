package balance

import (
	"github.com/google/uuid"

	"energy_simulator/internal/carrier"
	"energy_simulator/internal/model"
)

// StepPair holds a quantity's step-A and step-B triples side by side.
type StepPair struct {
	A carrier.RenNrenCo2
	B carrier.RenNrenCo2
}

// Result is the presentation adapter of spec.md §4.5: a structured,
// already-per-area balance ready for a text/JSON/XML formatter to render
// without further computation.
type Result struct {
	// RunID identifies one invocation of Compute, for correlating
	// repeated CLI runs across their JSON/XML output; it has no bearing
	// on the computation itself and is zero-value-safe to ignore.
	RunID uuid.UUID

	Meta model.MetaList
	KExp float32
	ARef float32

	PerCarrier map[model.Carrier]StepPair
	PerService map[model.Service]StepPair
	Overall    StepPair

	// RER and RERNren are derived from the overall step-B (export-credited)
	// balance, the figure the CTE DB-HE rating is ultimately based on.
	RER     float32
	RERNren *float32
}
