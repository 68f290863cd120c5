package pops

// SpreadAction drives kernel-based dispersal and establishment for one
// scheduled step: pull the dispersers already set in the PestPool at each
// suitable cell, route a soil-bound fraction into the reservoir (if
// active), disperse the remainder via Kernel, mark landed/outside, and
// attempt establishment through MultiHostPool. It then emits from the
// cell's own soil reservoir and attempts establishment in place. It does
// not generate dispersers from infected hosts; a cell whose PestPool count
// is zero sends nothing.
type SpreadAction struct {
	Hosts      *MultiHostPool
	Pests      *PestPool
	Rows, Cols int
	Kernel     DispersalKernel
	SoilEmitP  float64
}

func (a *SpreadAction) Run(step int, rng GeneratorProvider) error {
	movementRNG, err := rng.Stream(StreamMovement)
	if err != nil {
		return err
	}
	establishRNG, err := rng.Stream(StreamEstablishment)
	if err != nil {
		return err
	}

	for _, origin := range a.Hosts.SuitableCells() {
		count := a.Pests.DispersersFrom(origin.Row, origin.Col)
		if count <= 0 {
			continue
		}
		remaining := count
		soil := a.Pests.Soil()
		if soil != nil {
			remaining -= soil.Deposit(count, origin.Row, origin.Col)
		}
		for i := 0; i < remaining; i++ {
			res := a.Kernel.Sample(origin.Row, origin.Col, movementRNG)
			if (Cell{Row: res.Row, Col: res.Col}).IsOutside(a.Rows, a.Cols) {
				a.Pests.AddOutside(res.Row, res.Col)
				continue
			}
			a.Pests.AddLanded(res.Row, res.Col)
			if idx := a.Hosts.DisperserTo(res.Row, res.Col, establishRNG); idx >= 0 {
				a.Pests.AddEstablished(res.Row, res.Col, origin, res.Kind)
			}
		}
		if soil != nil {
			soilRNG, err := rng.Stream(StreamSoil)
			if err != nil {
				return err
			}
			emitted := soil.Emit(origin.Row, origin.Col, a.SoilEmitP, soilRNG)
			for i := 0; i < emitted; i++ {
				if idx := a.Hosts.DisperserTo(origin.Row, origin.Col, establishRNG); idx >= 0 {
					a.Pests.AddEstablished(origin.Row, origin.Col, origin, "soil")
				}
			}
		}
	}
	return nil
}
