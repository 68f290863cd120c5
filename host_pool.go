package pops

import (
	"math"
	"math/rand"

	rv "github.com/kentwait/randomvariate"
)

// ModelType selects whether a HostPool tracks exposed (latent) cohorts.
type ModelType int

const (
	ModelSI ModelType = iota
	ModelSEI
)

// ParseModelType parses the case-insensitive strings "SI" and "SEI".
func ParseModelType(s string) (ModelType, error) {
	switch lower(s) {
	case "si":
		return ModelSI, nil
	case "sei":
		return ModelSEI, nil
	}
	return ModelSI, newError(KindInvalidArgument, "ParseModelType", "unknown model_type %q", s)
}

// HostPool holds the full raster state for one host species: susceptible,
// a ring of exposed cohorts, infected, resistant, a ring of mortality
// cohorts, died, and the suitable-cell index, per spec.md §3/§4.E.
type HostPool struct {
	rows, cols int
	modelType  ModelType

	susceptible *Raster[float64]
	infected    *Raster[float64]
	resistant   *Raster[float64]
	died        *Raster[float64]

	exposedRing []*Raster[float64]
	exposedHead int

	mortalityRing []*Raster[float64]
	mortalityHead int

	suitableCells *SuitableCellSet

	susceptibility float64
	env            *Environment

	establishmentStochasticity bool
	deterministicProbability   float64
	useWeather                 bool
}

// HostPoolConfig groups the construction-time parameters of a HostPool.
type HostPoolConfig struct {
	ModelType                  ModelType
	LatencyPeriod              int
	MortalityTimeLag           int
	Susceptibility             float64
	Environment                *Environment
	EstablishmentStochasticity bool
	DeterministicProbability   float64
	UseWeather                 bool
}

// NewHostPool builds a HostPool from initial infected/total-host rasters.
// susceptible is derived as total_hosts - infected. The suitable-cell set
// is seeded from cells where total_hosts > 0, row-major.
func NewHostPool(totalHosts, infected *Raster[int], cfg HostPoolConfig) (*HostPool, error) {
	rows, cols := totalHosts.Dims()
	ir, ic := infected.Dims()
	if rows != ir || cols != ic {
		return nil, newError(KindShapeMismatch, "NewHostPool",
			"total_hosts (%d,%d) does not match infected (%d,%d)", rows, cols, ir, ic)
	}
	if cfg.LatencyPeriod < 0 {
		return nil, newError(KindInvalidArgument, "NewHostPool", "latency_period %d must be >= 0", cfg.LatencyPeriod)
	}
	if cfg.MortalityTimeLag < 0 {
		return nil, newError(KindInvalidArgument, "NewHostPool", "mortality_time_lag %d must be >= 0", cfg.MortalityTimeLag)
	}

	susceptible := NewRaster[float64](rows, cols, 0)
	infectedF := NewRaster[float64](rows, cols, 0)
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			t := totalHosts.At(row, col)
			i := infected.At(row, col)
			susceptible.Set(row, col, float64(t-i))
			infectedF.Set(row, col, float64(i))
		}
	}

	exposedLen := cfg.LatencyPeriod + 1
	exposedRing := make([]*Raster[float64], exposedLen)
	for i := range exposedRing {
		exposedRing[i] = NewRaster[float64](rows, cols, 0)
	}

	mortalityLen := cfg.MortalityTimeLag + 1
	mortalityRing := make([]*Raster[float64], mortalityLen)
	for i := range mortalityRing {
		mortalityRing[i] = NewRaster[float64](rows, cols, 0)
	}
	// Seed the mortality tracker's newest cohort with the initial infected
	// population so pre-existing infections are eligible for mortality.
	mortalityRing[mortalityLen-1] = infectedF.Clone()

	suitable := NewSuitableCellSet(rows, cols, func(row, col int) bool {
		return totalHosts.At(row, col) > 0
	})

	return &HostPool{
		rows: rows, cols: cols,
		modelType:                  cfg.ModelType,
		susceptible:                susceptible,
		infected:                   infectedF,
		resistant:                  NewRaster[float64](rows, cols, 0),
		died:                       NewRaster[float64](rows, cols, 0),
		exposedRing:                exposedRing,
		mortalityRing:              mortalityRing,
		suitableCells:              suitable,
		susceptibility:             cfg.Susceptibility,
		env:                        cfg.Environment,
		establishmentStochasticity: cfg.EstablishmentStochasticity,
		deterministicProbability:   cfg.DeterministicProbability,
		useWeather:                 cfg.UseWeather,
	}, nil
}

// Dims returns the (rows, cols) of the pool's rasters.
func (h *HostPool) Dims() (int, int) { return h.rows, h.cols }

// SuitableCells returns the ordered set of cells this pool iterates.
func (h *HostPool) SuitableCells() *SuitableCellSet { return h.suitableCells }

// IsOutside reports whether (row, col) falls outside this pool's grid.
func (h *HostPool) IsOutside(row, col int) bool {
	return Cell{Row: row, Col: col}.IsOutside(h.rows, h.cols)
}

// Susceptibility returns the host's relative susceptibility weight used by
// MultiHostPool's categorical host choice.
func (h *HostPool) Susceptibility() float64 { return h.susceptibility }

// TotalHostsAt satisfies Environment's totalHostsAt contract.
func (h *HostPool) TotalHostsAt(row, col int) float64 {
	return h.susceptible.At(row, col) + h.infected.At(row, col) + h.ExposedAt(row, col) + h.resistant.At(row, col)
}

func (h *HostPool) SusceptibleAt(row, col int) float64 { return h.susceptible.At(row, col) }
func (h *HostPool) InfectedAt(row, col int) float64    { return h.infected.At(row, col) }
func (h *HostPool) ResistantAt(row, col int) float64   { return h.resistant.At(row, col) }
func (h *HostPool) DiedAt(row, col int) float64        { return h.died.At(row, col) }

// ExposedAt sums every cohort in the exposed ring.
func (h *HostPool) ExposedAt(row, col int) float64 {
	var sum float64
	for _, r := range h.exposedRing {
		sum += r.At(row, col)
	}
	return sum
}

func (h *HostPool) oldestExposed() *Raster[float64] {
	return h.exposedRing[h.exposedHead]
}

func (h *HostPool) newestExposed() *Raster[float64] {
	L := len(h.exposedRing)
	return h.exposedRing[(h.exposedHead+L-1)%L]
}

func (h *HostPool) newestMortality() *Raster[float64] {
	L := len(h.mortalityRing)
	return h.mortalityRing[(h.mortalityHead+L-1)%L]
}

// EstablishmentProbabilityAt is susceptible/total_population, optionally
// multiplied by the weather coefficient.
func (h *HostPool) EstablishmentProbabilityAt(row, col int) float64 {
	total := h.env.TotalPopulationAt(row, col)
	if total == 0 {
		return 0
	}
	prob := h.susceptible.At(row, col) / total
	if h.useWeather {
		if w, err := h.env.WeatherCoefficientAt(row, col); err == nil {
			prob *= w
		}
	}
	return prob
}

// AddDisperserAt unconditionally converts one susceptible host into the
// infected compartment (SI) or the newest exposed cohort (SEI), used by
// MultiHostPool's pest mode where no per-host establishment test is run.
// It is a no-op when no susceptible host remains, preserving the
// conservation invariant rather than driving susceptible negative.
func (h *HostPool) AddDisperserAt(row, col int) {
	if h.susceptible.At(row, col) <= 0 {
		return
	}
	h.susceptible.Add(row, col, -1)
	switch h.modelType {
	case ModelSI:
		h.infected.Add(row, col, 1)
		h.newestMortality().Add(row, col, 1)
	case ModelSEI:
		h.newestExposed().Add(row, col, 1)
	}
	h.suitableCells.Add(Cell{Row: row, Col: col})
}

// DisperserTo draws a uniform and compares it to the establishment
// probability (stochastic) or to 1 - deterministic_probability
// (non-stochastic); on success it establishes one disperser and returns 1,
// otherwise 0.
func (h *HostPool) DisperserTo(row, col int, rng *rand.Rand) int {
	prob := h.EstablishmentProbabilityAt(row, col)
	tester := 1 - h.deterministicProbability
	if h.establishmentStochasticity {
		tester = rng.Float64()
	}
	if tester < prob {
		h.AddDisperserAt(row, col)
		return 1
	}
	return 0
}

// StepForward promotes the oldest exposed cohort into infected (SEI only),
// rotates the exposed ring, and rotates the mortality-tracker ring.
func (h *HostPool) StepForward(step int) {
	if h.modelType == ModelSEI {
		oldest := h.oldestExposed()
		mortalityLen := len(h.mortalityRing)
		oldest.ForEach(func(row, col int, v float64) {
			if v == 0 {
				return
			}
			h.infected.Add(row, col, v)
			if mortalityLen > 0 {
				h.newestMortality().Add(row, col, v)
			}
		})
		oldest.Fill(0)
		h.exposedHead = (h.exposedHead + 1) % len(h.exposedRing)
	}
	if len(h.mortalityRing) > 0 {
		h.mortalityHead = (h.mortalityHead + 1) % len(h.mortalityRing)
	}
}

// ApplyMortalityAt accumulates across every per-age cohort in the
// mortality tracker: the oldest cohort (age 0) dies in full, every younger
// cohort loses rate*count. The total is moved from infected into died.
func (h *HostPool) ApplyMortalityAt(row, col int, rate float64) float64 {
	L := len(h.mortalityRing)
	if L == 0 {
		return 0
	}
	var total float64
	for age := 0; age < L; age++ {
		phys := (h.mortalityHead + age) % L
		count := h.mortalityRing[phys].At(row, col)
		if count == 0 {
			continue
		}
		var contribution float64
		if age == 0 {
			contribution = count
		} else {
			contribution = rate * count
		}
		h.mortalityRing[phys].Add(row, col, -contribution)
		total += contribution
	}
	if total == 0 {
		return 0
	}
	h.infected.Add(row, col, -total)
	h.died.Add(row, col, total)
	return total
}

// ApplyTreatmentAt moves intensity*susceptible into resistant, and splits
// infected and every exposed cohort into resistant/remaining via a
// binomial draw with p = intensity.
func (h *HostPool) ApplyTreatmentAt(row, col int, intensity float64) {
	sMoved := intensity * h.susceptible.At(row, col)
	h.susceptible.Add(row, col, -sMoved)
	h.resistant.Add(row, col, sMoved)

	if count := int(math.Round(h.infected.At(row, col))); count > 0 {
		toResistant := float64(rv.Binomial(count, intensity))
		h.infected.Add(row, col, -toResistant)
		h.resistant.Add(row, col, toResistant)
	}
	for _, er := range h.exposedRing {
		count := int(math.Round(er.At(row, col)))
		if count == 0 {
			continue
		}
		toResistant := float64(rv.Binomial(count, intensity))
		er.Add(row, col, -toResistant)
		h.resistant.Add(row, col, toResistant)
	}
}

// MoveInfectedToSusceptibleAt converts count infected hosts at the cell
// into susceptible, used by OverpopulationMovementAction's source-side
// decrement (phase one of its two-phase commit).
func (h *HostPool) MoveInfectedToSusceptibleAt(row, col int, count float64) {
	if count <= 0 {
		return
	}
	h.infected.Add(row, col, -count)
	h.susceptible.Add(row, col, count)
}

// MoveSusceptibleToInfectedAt converts count susceptible hosts at the cell
// into infected, used by OverpopulationMovementAction's target-side
// increment (phase two of its two-phase commit).
func (h *HostPool) MoveSusceptibleToInfectedAt(row, col int, count float64) {
	if count <= 0 {
		return
	}
	h.susceptible.Add(row, col, -count)
	h.infected.Add(row, col, count)
}

// EndTreatmentAt returns all resistant hosts at the cell back to
// susceptible.
func (h *HostPool) EndTreatmentAt(row, col int) {
	r := h.resistant.At(row, col)
	if r == 0 {
		return
	}
	h.resistant.Set(row, col, 0)
	h.susceptible.Add(row, col, r)
}

// RemoveAllInfectedAt clears infected and every exposed cohort at the cell
// back into susceptible, used for lethal-temperature removal.
func (h *HostPool) RemoveAllInfectedAt(row, col int, _ *rand.Rand) {
	total := h.infected.At(row, col)
	h.infected.Set(row, col, 0)
	for _, er := range h.exposedRing {
		total += er.At(row, col)
		er.Set(row, col, 0)
	}
	if total != 0 {
		h.susceptible.Add(row, col, total)
	}
}

// RemovePercentageAt keeps survival_rate*infected infected and moves the
// rest to susceptible. Exposed and mortality-tracker cohorts are split
// with a binomial draw at p = survival_rate.
func (h *HostPool) RemovePercentageAt(row, col int, survivalRate float64, rng *rand.Rand) {
	infectedCount := h.infected.At(row, col)
	keep := survivalRate * infectedCount
	moved := infectedCount - keep
	if moved != 0 {
		h.infected.Set(row, col, keep)
		h.susceptible.Add(row, col, moved)
	}
	for _, er := range h.exposedRing {
		count := int(math.Round(er.At(row, col)))
		if count == 0 {
			continue
		}
		kept := float64(rv.Binomial(count, survivalRate))
		movedCount := float64(count) - kept
		if movedCount == 0 {
			continue
		}
		er.Add(row, col, -movedCount)
		h.susceptible.Add(row, col, movedCount)
	}
	for _, mr := range h.mortalityRing {
		count := int(math.Round(mr.At(row, col)))
		if count == 0 {
			continue
		}
		kept := float64(rv.Binomial(count, survivalRate))
		movedCount := float64(count) - kept
		if movedCount != 0 {
			mr.Add(row, col, -movedCount)
		}
	}
}
