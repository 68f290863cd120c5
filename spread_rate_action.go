package pops

// SpreadRateAction snapshots the aggregate infection bounding box at each
// scheduled step and records the per-direction spread rate against the
// previous snapshot. The first snapshot has no previous box to compare
// against and contributes no history entry.
type SpreadRateAction struct {
	Hosts                      *MultiHostPool
	EWRes, NSRes, StepsPerYear float64

	prevBox BoundingBox
	hasPrev bool
	History []SpreadRate
}

func (a *SpreadRateAction) Run(step int, rng GeneratorProvider) error {
	box := aggregateInfectedBoundingBox(a.Hosts)
	if a.hasPrev {
		a.History = append(a.History, ComputeSpreadRate(a.prevBox, box, a.EWRes, a.NSRes, a.StepsPerYear))
	}
	a.prevBox = box
	a.hasPrev = true
	return nil
}

func aggregateInfectedBoundingBox(hosts *MultiHostPool) BoundingBox {
	n, s, e, w := -1, -1, -1, -1
	for _, cell := range hosts.SuitableCells() {
		if hosts.InfectedAt(cell.Row, cell.Col) <= 0 {
			continue
		}
		if n == -1 || cell.Row < n {
			n = cell.Row
		}
		if cell.Row > s {
			s = cell.Row
		}
		if w == -1 || cell.Col < w {
			w = cell.Col
		}
		if cell.Col > e {
			e = cell.Col
		}
	}
	if n == -1 {
		return BoundingBox{N: -1, S: -1, E: -1, W: -1}
	}
	return BoundingBox{N: n, S: s, E: e, W: w}
}
