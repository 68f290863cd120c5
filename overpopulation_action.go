package pops

// OverpopulationMovementAction moves infected hosts out of cells that
// have crossed the overpopulation threshold. Each qualifying cell's
// leaving infected are converted to susceptible at the source
// unconditionally; the same count is converted from susceptible to
// infected at the target if the target is on-grid, or recorded as
// outside dispersers otherwise. Source decrements and target increments
// are committed in two separate passes so a cell that is both a source
// and a later target in the same step never double-counts, per
// spec.md §4.I.
type OverpopulationMovementAction struct {
	Hosts                    []*HostPool
	Pests                    *PestPool
	OverpopulationPercentage float64
	LeavingPercentage        float64
	Kernel                   DispersalKernel
}

type overpopulationMove struct {
	host                   *HostPool
	fromRow, fromCol       int
	toRow, toCol           int
	leaving                float64
	outside                bool
}

func (a *OverpopulationMovementAction) Run(step int, rng GeneratorProvider) error {
	movementRNG, err := rng.Stream(StreamOverpopulation)
	if err != nil {
		return err
	}

	var moves []overpopulationMove
	for _, h := range a.Hosts {
		rows, cols := h.Dims()
		for _, cell := range h.SuitableCells().Cells() {
			total := h.TotalHostsAt(cell.Row, cell.Col)
			if total <= 0 {
				continue
			}
			infected := h.InfectedAt(cell.Row, cell.Col)
			if infected/total < a.OverpopulationPercentage {
				continue
			}
			leaving := float64(int(infected * a.LeavingPercentage))
			if leaving <= 0 {
				continue
			}
			res := a.Kernel.Sample(cell.Row, cell.Col, movementRNG)
			outside := (Cell{Row: res.Row, Col: res.Col}).IsOutside(rows, cols)
			moves = append(moves, overpopulationMove{
				host: h, fromRow: cell.Row, fromCol: cell.Col,
				toRow: res.Row, toCol: res.Col, leaving: leaving, outside: outside,
			})
		}
	}

	for _, m := range moves {
		m.host.MoveInfectedToSusceptibleAt(m.fromRow, m.fromCol, m.leaving)
	}
	for _, m := range moves {
		if m.outside {
			for i := 0; i < int(m.leaving); i++ {
				a.Pests.AddOutside(m.toRow, m.toCol)
			}
			continue
		}
		m.host.MoveSusceptibleToInfectedAt(m.toRow, m.toCol, m.leaving)
	}
	return nil
}
