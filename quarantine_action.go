package pops

import "math"

// QuarantineEscapeAction tracks, per cardinal direction, whether infection
// has reached or crossed the boundary of a quarantine region (the cells
// where Region is positive). Once a direction escapes it stays escaped;
// its distance is reported as NaN from that step on.
type QuarantineEscapeAction struct {
	Hosts  *MultiHostPool
	Region *Raster[int]

	regionBox    BoundingBox
	escapedStep  [4]int // index by QuarantineDirection; -1 until escaped
	History      []QuarantineEscapeRecord
}

// NewQuarantineEscapeAction computes the quarantine region's bounding box
// once, from the cells where region is positive.
func NewQuarantineEscapeAction(hosts *MultiHostPool, region *Raster[int]) *QuarantineEscapeAction {
	return &QuarantineEscapeAction{
		Hosts:       hosts,
		Region:      region,
		regionBox:   RasterBoundingBox(region),
		escapedStep: [4]int{-1, -1, -1, -1},
	}
}

func (a *QuarantineEscapeAction) Run(step int, rng GeneratorProvider) error {
	if a.regionBox.Empty() {
		return nil
	}
	minRow, maxRow, minCol, maxCol := -1, -1, -1, -1
	for _, cell := range a.Hosts.SuitableCells() {
		if a.Hosts.InfectedAt(cell.Row, cell.Col) <= 0 {
			continue
		}
		if minRow == -1 || cell.Row < minRow {
			minRow = cell.Row
		}
		if cell.Row > maxRow {
			maxRow = cell.Row
		}
		if minCol == -1 || cell.Col < minCol {
			minCol = cell.Col
		}
		if cell.Col > maxCol {
			maxCol = cell.Col
		}
	}
	if minRow == -1 {
		return nil
	}

	dirs := [4]QuarantineDirection{QuarantineN, QuarantineS, QuarantineE, QuarantineW}
	distances := [4]float64{
		float64(minRow - a.regionBox.N),
		float64(a.regionBox.S - maxRow),
		float64(a.regionBox.E - maxCol),
		float64(minCol - a.regionBox.W),
	}
	for i, dir := range dirs {
		if a.escapedStep[dir] >= 0 {
			a.History = append(a.History, QuarantineEscapeRecord{Escaped: true, Distance: math.NaN(), Dir: dir})
			continue
		}
		dist := distances[i]
		if dist <= 0 {
			a.escapedStep[dir] = step
			a.History = append(a.History, QuarantineEscapeRecord{Escaped: true, Distance: math.NaN(), Dir: dir})
			continue
		}
		a.History = append(a.History, QuarantineEscapeRecord{Escaped: false, Distance: dist, Dir: dir})
	}
	return nil
}

// EscapedAtStep returns the step index at which dir first escaped, or -1
// if it has not yet.
func (a *QuarantineEscapeAction) EscapedAtStep(dir QuarantineDirection) int {
	return a.escapedStep[dir]
}

// EscapedSteps returns the first-escape step index for every direction, in
// QuarantineN/S/E/W order, -1 where a direction has not escaped.
func (a *QuarantineEscapeAction) EscapedSteps() [4]int {
	return a.escapedStep
}
