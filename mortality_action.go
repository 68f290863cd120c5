package pops

// MortalityAction accumulates across every per-age cohort in each host's
// mortality tracker (the oldest cohort dies in full, every younger cohort
// loses Rate's fraction) and moves the total into died.
type MortalityAction struct {
	Hosts []*HostPool
	Rate  float64
}

func (a *MortalityAction) Run(step int, rng GeneratorProvider) error {
	for _, h := range a.Hosts {
		for _, cell := range h.SuitableCells().Cells() {
			h.ApplyMortalityAt(cell.Row, cell.Col, a.Rate)
		}
	}
	return nil
}
