package pops

// SurvivalRateAction applies a per-cell survival rate raster, keeping
// survival_rate*infected infected and returning the rest to susceptible.
type SurvivalRateAction struct {
	Hosts        []*HostPool
	SurvivalRate *Raster[float64]
}

func (a *SurvivalRateAction) Run(step int, rng GeneratorProvider) error {
	survivalRNG, err := rng.Stream(StreamSurvivalRate)
	if err != nil {
		return err
	}
	for _, h := range a.Hosts {
		for _, cell := range h.SuitableCells().Cells() {
			rate := a.SurvivalRate.At(cell.Row, cell.Col)
			h.RemovePercentageAt(cell.Row, cell.Col, rate, survivalRNG)
		}
	}
	return nil
}
