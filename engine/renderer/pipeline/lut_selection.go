package pipeline

// Indices into the seven-entry LUT set.
const (
	LutPassthrough = 0

	LutSimulationProtan = 1
	LutSimulationDeutan = 2
	LutSimulationTritan = 3

	LutCorrectionProtan = 4
	LutCorrectionDeutan = 5
	LutCorrectionTritan = 6
)

// SelectLuts maps a render mode onto the simulation and correction slots of the LUT set.
// Indices 0, 1 and 2 pick protan, deutan and tritan; anything else is passthrough for both.
// The correction slot mirrors the simulation slot only when correction is enabled.
//
// Parameters:
//   - lutIndex: the selected deficiency index
//   - correction: whether the correction LUT is applied
//
// Returns:
//   - simulation: the LUT set index bound as the simulation LUT
//   - corr: the LUT set index bound as the correction LUT
func SelectLuts(lutIndex int, correction bool) (simulation, corr int) {
	switch lutIndex {
	case 0:
		simulation = LutSimulationProtan
	case 1:
		simulation = LutSimulationDeutan
	case 2:
		simulation = LutSimulationTritan
	default:
		return LutPassthrough, LutPassthrough
	}
	if !correction {
		return simulation, LutPassthrough
	}
	return simulation, simulation + (LutCorrectionProtan - LutSimulationProtan)
}
