package pops

// LethalTemperatureAction clears infection at every suitable cell where
// the environment's temperature has dropped below the configured lethal
// threshold.
type LethalTemperatureAction struct {
	Hosts []*HostPool
	Env   *Environment
}

func (a *LethalTemperatureAction) Run(step int, rng GeneratorProvider) error {
	threshold, err := a.Env.LethalTemperatureThreshold()
	if err != nil {
		return err
	}
	lethalRNG, err := rng.Stream(StreamLethalTemperature)
	if err != nil {
		return err
	}
	for _, h := range a.Hosts {
		for _, cell := range h.SuitableCells().Cells() {
			temp, err := a.Env.TemperatureAt(cell.Row, cell.Col)
			if err != nil {
				return err
			}
			if temp < threshold {
				h.RemoveAllInfectedAt(cell.Row, cell.Col, lethalRNG)
			}
		}
	}
	return nil
}
