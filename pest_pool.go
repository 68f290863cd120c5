package pops

import (
	"math"
	"math/rand"
)

// EstablishedRecord is one successful establishment event, kept for
// diagnostics and testing; origin is the source cell the disperser
// travelled from, kind is the dispersal kernel tag that produced it.
type EstablishedRecord struct {
	Row, Col int
	Origin   Cell
	Kind     string
}

// PestPool tracks the mobile disperser population moving between cells in
// a single step, the tallies of where they landed and established, the
// list of dispersers that left the grid entirely, and an optional soil
// reservoir for dispersers that overwinter in the substrate instead of
// dispersing immediately.
type PestPool struct {
	rows, cols int

	dispersers *Raster[int]
	landed     *Raster[int]
	established []EstablishedRecord

	outsideDispersers []Cell

	soil *SoilPool
}

// NewPestPool builds an empty pest pool over a rows x cols grid. Pass a
// non-nil soil to activate the soil reservoir.
func NewPestPool(rows, cols int, soil *SoilPool) *PestPool {
	return &PestPool{
		rows:       rows,
		cols:       cols,
		dispersers: NewRaster[int](rows, cols, 0),
		landed:     NewRaster[int](rows, cols, 0),
		soil:       soil,
	}
}

// SetDispersersAt sets the disperser count available at (i,j) for the next
// SpreadAction pass, which consumes it. Nothing in the engine derives this
// count from host state; callers set it.
func (p *PestPool) SetDispersersAt(row, col, count int) {
	p.dispersers.Set(row, col, count)
}

// DispersersFrom returns the current disperser count at (i,j) and zeros
// the cell, so each disperser is consumed exactly once per step.
func (p *PestPool) DispersersFrom(row, col int) int {
	count := p.dispersers.At(row, col)
	if count != 0 {
		p.dispersers.Set(row, col, 0)
	}
	return count
}

// AddLanded records one disperser landing at (i,j), on-grid.
func (p *PestPool) AddLanded(row, col int) {
	p.landed.Add(row, col, 1)
}

// LandedAt returns the landed tally at (i,j).
func (p *PestPool) LandedAt(row, col int) int { return p.landed.At(row, col) }

// AddEstablished records a successful establishment at (i,j) from origin,
// tagged by which kernel variant produced it.
func (p *PestPool) AddEstablished(row, col int, origin Cell, kind string) {
	p.established = append(p.established, EstablishedRecord{Row: row, Col: col, Origin: origin, Kind: kind})
}

// Established returns every establishment recorded so far, in call order.
func (p *PestPool) Established() []EstablishedRecord { return p.established }

// AddOutside records a disperser landing outside the grid, provided (i,j)
// is actually outside; it is a no-op for on-grid coordinates.
func (p *PestPool) AddOutside(row, col int) {
	if (Cell{Row: row, Col: col}).IsOutside(p.rows, p.cols) {
		p.outsideDispersers = append(p.outsideDispersers, Cell{Row: row, Col: col})
	}
}

// OutsideDispersers returns the accumulated off-grid disperser cells.
func (p *PestPool) OutsideDispersers() []Cell { return p.outsideDispersers }

// Soil returns the active soil reservoir, or nil if soils are disabled.
func (p *PestPool) Soil() *SoilPool { return p.soil }

// SoilPool is a ring of rasters, one per step of configured soil memory,
// holding dispersers that entered the soil reservoir instead of dispersing
// immediately. Rotation is a head-advance, per spec.md §9's ring-buffer
// guidance, mirroring HostPool's exposed/mortality rings.
type SoilPool struct {
	rows, cols         int
	ring               []*Raster[int]
	head               int
	toSoilPercentage   float64
}

// NewSoilPool builds a ring of length soilMemorySteps (minimum 1).
func NewSoilPool(rows, cols, soilMemorySteps int, toSoilPercentage float64) (*SoilPool, error) {
	if soilMemorySteps < 1 {
		return nil, newError(KindInvalidArgument, "NewSoilPool", "soil_memory_steps %d must be >= 1", soilMemorySteps)
	}
	if toSoilPercentage < 0 || toSoilPercentage > 1 {
		return nil, newError(KindInvalidArgument, "NewSoilPool", "to_soil_percentage %f must be in [0,1]", toSoilPercentage)
	}
	ring := make([]*Raster[int], soilMemorySteps)
	for i := range ring {
		ring[i] = NewRaster[int](rows, cols, 0)
	}
	return &SoilPool{rows: rows, cols: cols, ring: ring, toSoilPercentage: toSoilPercentage}, nil
}

func (s *SoilPool) newest() *Raster[int] {
	return s.ring[(s.head+len(s.ring)-1)%len(s.ring)]
}

// Deposit moves floor(count*to_soil_percentage) dispersers from count into
// the newest soil cohort at (i,j), returning the number actually deposited
// so the caller can disperse the remainder immediately.
func (s *SoilPool) Deposit(count, row, col int) int {
	if count <= 0 {
		return 0
	}
	toSoil := int(float64(count) * s.toSoilPercentage)
	if toSoil > 0 {
		s.newest().Add(row, col, toSoil)
	}
	return toSoil
}

// Emit draws a geometric number of dispersers to release from (i,j)'s
// soil reservoir this step, bounded by what is actually present, using the
// "soil" named RNG stream's generator. p is the success probability of the
// geometric draw (failures before the first success), so a higher p
// releases fewer dispersers; p <= 0 or p >= 1 releases none.
func (s *SoilPool) Emit(row, col int, p float64, rng *rand.Rand) int {
	total := 0
	for _, r := range s.ring {
		total += r.At(row, col)
	}
	if total <= 0 {
		return 0
	}
	released := geometricDraw(p, rng)
	if released > total {
		released = total
	}
	if released <= 0 {
		return 0
	}
	remaining := released
	for i := 0; i < len(s.ring) && remaining > 0; i++ {
		phys := (s.head + i) % len(s.ring)
		count := s.ring[phys].At(row, col)
		if count == 0 {
			continue
		}
		take := count
		if take > remaining {
			take = remaining
		}
		s.ring[phys].Add(row, col, -take)
		remaining -= take
	}
	return released - remaining
}

// StepForward rotates the soil ring by one, exposing a zeroed slot as the
// new newest cohort for the next step's deposits.
func (s *SoilPool) StepForward() {
	s.head = (s.head + 1) % len(s.ring)
	s.newest().Fill(0)
}

// geometricDraw samples a geometric count (number of Bernoulli(p) failures
// before the first success) via inverse-CDF, the standard technique when
// no library geometric sampler is in scope for integer counts.
func geometricDraw(p float64, rng *rand.Rand) int {
	if p <= 0 {
		return 0
	}
	if p >= 1 {
		return 0
	}
	u := uniform01(rng)
	return int(math.Log(u) / math.Log(1-p))
}
