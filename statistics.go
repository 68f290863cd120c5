package pops

import "math"

// BoundingBox is the extent of infected cells: N and W are the
// topmost row and leftmost column (smaller index = further
// north/west); S and E are the bottommost row and rightmost column
// (larger index = further south/east). An all-empty raster reports the
// sentinel {-1,-1,-1,-1}.
type BoundingBox struct {
	N, S, E, W int
}

// Empty reports whether b is the all-zero-raster sentinel.
func (b BoundingBox) Empty() bool { return b.N == -1 && b.S == -1 && b.E == -1 && b.W == -1 }

// RasterBoundingBox scans every cell of r and returns the bounding box of
// cells with a positive value, or the sentinel {-1,-1,-1,-1} if none are
// positive.
func RasterBoundingBox[T Number](r *Raster[T]) BoundingBox {
	rows, cols := r.Dims()
	n, s, e, w := -1, -1, -1, -1
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			if r.At(row, col) <= 0 {
				continue
			}
			if n == -1 || row < n {
				n = row
			}
			if row > s {
				s = row
			}
			if w == -1 || col < w {
				w = col
			}
			if col > e {
				e = col
			}
		}
	}
	if n == -1 {
		return BoundingBox{N: -1, S: -1, E: -1, W: -1}
	}
	return BoundingBox{N: n, S: s, E: e, W: w}
}

// InfectedBoundingBox is RasterBoundingBox specialized to a float64
// infected raster.
func InfectedBoundingBox(infected *Raster[float64]) BoundingBox {
	return RasterBoundingBox(infected)
}

// SpreadRate is the per-direction distance infection moved between two
// bounding-box snapshots, in resolution units per year. North and west
// rates are the negated row/col delta (since a smaller N or W index
// means the front moved further north/west); south and east rates are
// the raw delta. A direction is NaN if either box is empty.
type SpreadRate struct {
	North, South, East, West float64
}

// ComputeSpreadRate implements the formula of spec.md §4.I's
// SpreadRateAction: rate = (box_s - box_{s-1}) * resolution /
// stepsPerYear, sign-flipped for north/west.
func ComputeSpreadRate(prev, curr BoundingBox, ewRes, nsRes, stepsPerYear float64) SpreadRate {
	if prev.Empty() || curr.Empty() {
		return SpreadRate{North: math.NaN(), South: math.NaN(), East: math.NaN(), West: math.NaN()}
	}
	return SpreadRate{
		North: -float64(curr.N-prev.N) * nsRes / stepsPerYear,
		South: float64(curr.S-prev.S) * nsRes / stepsPerYear,
		East:  float64(curr.E-prev.E) * ewRes / stepsPerYear,
		West:  -float64(curr.W-prev.W) * ewRes / stepsPerYear,
	}
}

// QuarantineDirection is one of the four cardinal escape directions the
// quarantine-escape check tests.
type QuarantineDirection int

const (
	QuarantineN QuarantineDirection = iota
	QuarantineS
	QuarantineE
	QuarantineW
)

// QuarantineEscapeRecord is one run's escape outcome at a given step:
// whether infection has reached or crossed the quarantine boundary in
// direction Dir, the distance (NaN once escaped), and which direction.
type QuarantineEscapeRecord struct {
	Escaped  bool
	Distance float64
	Dir      QuarantineDirection
}

// QuarantineEscapeProbability computes, for each step index, the fraction
// of runs whose EscapedAtStep (the first step at which that run escaped,
// or -1 if it never did within the observed horizon) is <= that step
// index, across horizon steps 0..steps-1. This is Scenario 4's
// aggregation over independent runs.
func QuarantineEscapeProbability(escapedAtStep []int, steps int) []float64 {
	probs := make([]float64, steps)
	for s := 0; s < steps; s++ {
		escaped := 0
		for _, e := range escapedAtStep {
			if e >= 0 && e <= s {
				escaped++
			}
		}
		probs[s] = float64(escaped) / float64(len(escapedAtStep))
	}
	return probs
}
