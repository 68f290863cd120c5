package pops

import (
	"math"
	"math/rand"
	"testing"
)

func TestDistributionConstructorsRejectInvalidParams(t *testing.T) {
	if _, err := NewCauchy(0, -1); err == nil {
		t.Error("NewCauchy: expected error for non-positive scale")
	}
	if _, err := NewExponential(0); err == nil {
		t.Error("NewExponential: expected error for non-positive mean")
	}
	if _, err := NewWeibull(0, 1); err == nil {
		t.Error("NewWeibull: expected error for a<=0")
	}
	if _, err := NewLogNormal(0, 0); err == nil {
		t.Error("NewLogNormal: expected error for sigma<=0")
	}
	if _, err := NewNormal(0, -1); err == nil {
		t.Error("NewNormal: expected error for sigma<=0")
	}
	if _, err := NewPowerLaw(1, 1); err == nil {
		t.Error("NewPowerLaw: expected error for alpha<=1")
	}
	if _, err := NewPowerLaw(2, 0); err == nil {
		t.Error("NewPowerLaw: expected error for xmin<=0")
	}
	if _, err := NewHyperbolicSecant(0); err == nil {
		t.Error("NewHyperbolicSecant: expected error for sigma<=0")
	}
	if _, err := NewLogistic(0); err == nil {
		t.Error("NewLogistic: expected error for s<=0")
	}
	if _, err := NewExponentialPower(0, 1); err == nil {
		t.Error("NewExponentialPower: expected error for alpha<=0")
	}
	if _, err := NewGamma(0, 1); err == nil {
		t.Error("NewGamma: expected error for shape<=0")
	}
}

func TestCauchyICDFMedianIsLocation(t *testing.T) {
	dist, err := NewCauchy(5, 2)
	if err != nil {
		t.Fatal(err)
	}
	if got := dist.ICDF(0.5); math.Abs(got-5) > 1e-9 {
		t.Errorf("got %f, want 5 (the median of a Cauchy equals its location)", got)
	}
}

func TestExponentialSamplesAreNonNegative(t *testing.T) {
	dist, err := NewExponential(3)
	if err != nil {
		t.Fatal(err)
	}
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		if v := dist.Sample(rng); v < 0 {
			t.Fatalf("exponential sample %f should never be negative", v)
		}
	}
}

func TestPowerLawICDFAtXmin(t *testing.T) {
	dist, err := NewPowerLaw(2, 1.5)
	if err != nil {
		t.Fatal(err)
	}
	if got := dist.ICDF(0); math.Abs(got-1.5) > 1e-9 {
		t.Errorf("got %f, want 1.5 (ICDF(0) should equal xmin)", got)
	}
}

func TestVonMisesZeroKappaIsUniform(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	v := VonMises{Kappa: 0, Mu: 0}
	for i := 0; i < 50; i++ {
		theta := v.Sample(rng)
		if theta < -math.Pi || theta > math.Pi {
			t.Fatalf("theta %f out of (-pi, pi]", theta)
		}
	}
}

func TestVonMisesStaysInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	v := VonMises{Kappa: 4, Mu: 1.0}
	for i := 0; i < 200; i++ {
		theta := v.Sample(rng)
		if theta < -math.Pi-1e-9 || theta > math.Pi+1e-9 {
			t.Fatalf("theta %f out of (-pi, pi]", theta)
		}
	}
}

func TestNormalWithUniformFallbackStaysInBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		v := NormalWithUniformFallback(rng, 0, 100, -1, 1)
		if v < -1 || v > 1 {
			t.Fatalf("got %f, want within [-1,1]", v)
		}
	}
}
