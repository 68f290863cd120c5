package pops

import (
	"math"
	"math/rand"
	"testing"
)

func newTestHostPool(t *testing.T, modelType ModelType, latency, mortalityLag int) (*HostPool, *Environment) {
	t.Helper()
	total, _ := NewRasterFromRows([][]int{{10, 0}, {0, 5}})
	infected, _ := NewRasterFromRows([][]int{{2, 0}, {0, 0}})
	env := NewEnvironment(2, 2, WeatherNone)
	pool, err := NewHostPool(total, infected, HostPoolConfig{
		ModelType:        modelType,
		LatencyPeriod:    latency,
		MortalityTimeLag: mortalityLag,
		Susceptibility:   1,
		Environment:      env,
	})
	if err != nil {
		t.Fatal(err)
	}
	env.RegisterHost(pool)
	return pool, env
}

func TestNewHostPoolDerivesSusceptible(t *testing.T) {
	pool, _ := newTestHostPool(t, ModelSI, 0, 0)
	if got := pool.SusceptibleAt(0, 0); got != 8 {
		t.Errorf("got %f, want 8", got)
	}
	if got := pool.InfectedAt(0, 0); got != 2 {
		t.Errorf("got %f, want 2", got)
	}
	if got := pool.SusceptibleAt(1, 1); got != 5 {
		t.Errorf("got %f, want 5", got)
	}
}

func TestNewHostPoolShapeMismatch(t *testing.T) {
	total, _ := NewRasterFromRows([][]int{{1, 2}})
	infected, _ := NewRasterFromRows([][]int{{1, 2}, {0, 0}})
	_, err := NewHostPool(total, infected, HostPoolConfig{})
	if err == nil {
		t.Fatal("expected a shape mismatch error")
	}
}

func TestAddDisperserAtConservesTotal(t *testing.T) {
	pool, _ := newTestHostPool(t, ModelSI, 0, 0)
	before := pool.SusceptibleAt(0, 0) + pool.InfectedAt(0, 0)
	pool.AddDisperserAt(0, 0)
	after := pool.SusceptibleAt(0, 0) + pool.InfectedAt(0, 0)
	if before != after {
		t.Errorf("total at cell changed: before %f, after %f", before, after)
	}
	if pool.InfectedAt(0, 0) != 3 {
		t.Errorf("got infected %f, want 3", pool.InfectedAt(0, 0))
	}
}

func TestAddDisperserAtNoSusceptibleIsNoOp(t *testing.T) {
	pool, _ := newTestHostPool(t, ModelSI, 0, 0)
	// (0,1) has zero total hosts, so there is nothing to convert.
	pool.AddDisperserAt(0, 1)
	if pool.InfectedAt(0, 1) != 0 {
		t.Errorf("expected no-op at a cell with no susceptible hosts, got infected=%f", pool.InfectedAt(0, 1))
	}
}

func TestAddDisperserAtSEIGoesToExposed(t *testing.T) {
	pool, _ := newTestHostPool(t, ModelSEI, 2, 0)
	pool.AddDisperserAt(1, 1)
	if got := pool.ExposedAt(1, 1); got != 1 {
		t.Errorf("got exposed %f, want 1", got)
	}
	if got := pool.InfectedAt(1, 1); got != 0 {
		t.Errorf("SEI disperser should not be infected yet, got %f", got)
	}
}

func TestStepForwardPromotesOldestExposedCohort(t *testing.T) {
	pool, _ := newTestHostPool(t, ModelSEI, 1, 0)
	pool.AddDisperserAt(1, 1) // lands in the newest cohort
	if pool.ExposedAt(1, 1) != 1 {
		t.Fatalf("setup: expected exposed=1, got %f", pool.ExposedAt(1, 1))
	}
	// latency period 1 means the ring has 2 slots; the disperser needs two
	// StepForward calls to reach infected.
	pool.StepForward(0)
	if pool.InfectedAt(1, 1) != 0 {
		t.Errorf("should not be infected after only one step, got %f", pool.InfectedAt(1, 1))
	}
	pool.StepForward(1)
	if pool.InfectedAt(1, 1) != 1 {
		t.Errorf("expected infected=1 after the full latency period, got %f", pool.InfectedAt(1, 1))
	}
	if pool.ExposedAt(1, 1) != 0 {
		t.Errorf("expected exposed=0 once promoted, got %f", pool.ExposedAt(1, 1))
	}
}

func TestApplyMortalityAtMovesInfectedToDied(t *testing.T) {
	pool, _ := newTestHostPool(t, ModelSI, 0, 0)
	// mortality_time_lag=0 gives a single-slot ring seeded with the initial
	// infected count, so its age is always 0 and it dies in full.
	total := pool.ApplyMortalityAt(0, 0, 0.1)
	if total != 2 {
		t.Errorf("got %f, want 2 (the full initial infected count at age 0)", total)
	}
	if pool.InfectedAt(0, 0) != 0 {
		t.Errorf("infected should be fully moved out, got %f", pool.InfectedAt(0, 0))
	}
	if pool.DiedAt(0, 0) != 2 {
		t.Errorf("got died %f, want 2", pool.DiedAt(0, 0))
	}
}

func TestApplyMortalityAtNoCohortIsNoOp(t *testing.T) {
	pool, _ := newTestHostPool(t, ModelSI, 0, 0)
	total := pool.ApplyMortalityAt(1, 1, 0.5)
	if total != 0 {
		t.Errorf("no infected at (1,1), expected 0, got %f", total)
	}
}

func TestEstablishmentProbabilityAtZeroTotalPopulation(t *testing.T) {
	pool, _ := newTestHostPool(t, ModelSI, 0, 0)
	if got := pool.EstablishmentProbabilityAt(0, 1); got != 0 {
		t.Errorf("zero total population should report probability 0, got %f", got)
	}
}

func TestDisperserToDeterministic(t *testing.T) {
	pool, _ := newTestHostPool(t, ModelSI, 0, 0)
	rng := rand.New(rand.NewSource(1))
	// deterministic_probability 0 means tester=1, which is never < prob
	// (prob <= 1), so establishment never succeeds deterministically here
	// unless prob is exactly > 1, which cannot happen; use a probability
	// threshold of 1 to force success instead.
	pool.deterministicProbability = 1
	got := pool.DisperserTo(0, 0, rng)
	if got != 1 {
		t.Errorf("expected deterministic establishment success, got %d", got)
	}
}

func TestEndTreatmentAtReturnsResistantToSusceptible(t *testing.T) {
	pool, _ := newTestHostPool(t, ModelSI, 0, 0)
	pool.ApplyTreatmentAt(0, 0, 1.0)
	if pool.ResistantAt(0, 0) <= 0 {
		t.Fatalf("setup: expected resistant > 0 after full-intensity treatment, got %f", pool.ResistantAt(0, 0))
	}
	resistantBefore := pool.ResistantAt(0, 0)
	susceptibleBefore := pool.SusceptibleAt(0, 0)
	pool.EndTreatmentAt(0, 0)
	if pool.ResistantAt(0, 0) != 0 {
		t.Errorf("resistant should be zeroed, got %f", pool.ResistantAt(0, 0))
	}
	if got, want := pool.SusceptibleAt(0, 0), susceptibleBefore+resistantBefore; got != want {
		t.Errorf("got susceptible %f, want %f", got, want)
	}
}

func TestRemoveAllInfectedAtClearsToSusceptible(t *testing.T) {
	pool, _ := newTestHostPool(t, ModelSI, 0, 0)
	pool.RemoveAllInfectedAt(0, 0, nil)
	if pool.InfectedAt(0, 0) != 0 {
		t.Errorf("got infected %f, want 0", pool.InfectedAt(0, 0))
	}
	if pool.SusceptibleAt(0, 0) != 10 {
		t.Errorf("got susceptible %f, want 10", pool.SusceptibleAt(0, 0))
	}
}

func TestRemovePercentageAtKeepsSurvivalFraction(t *testing.T) {
	pool, _ := newTestHostPool(t, ModelSI, 0, 0)
	pool.RemovePercentageAt(0, 0, 0.25, rand.New(rand.NewSource(1)))
	if got, want := pool.InfectedAt(0, 0), 0.5; math.Abs(got-want) > 1e-9 {
		t.Errorf("got infected %f, want %f", got, want)
	}
	if got, want := pool.SusceptibleAt(0, 0), 9.5; math.Abs(got-want) > 1e-9 {
		t.Errorf("got susceptible %f, want %f", got, want)
	}
}
