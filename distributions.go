package pops

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat/distuv"
)

// Distribution is an inverse-CDF sampler: ICDF(u) maps a uniform draw
// u in (0,1) to a value in the distribution's support. Sample draws u from
// rng and returns ICDF(u), which is the only RNG touch point, preserving
// the single-draw-per-call discipline the reproducibility contract needs.
type Distribution interface {
	ICDF(u float64) float64
	Sample(rng *rand.Rand) float64
}

// uniform01 draws an open-interval (0,1) uniform, since several ICDFs
// (e.g. 1/u) are undefined at the closed endpoints.
func uniform01(rng *rand.Rand) float64 {
	for {
		u := rng.Float64()
		if u > 0 && u < 1 {
			return u
		}
	}
}

type icdfFunc func(u float64) float64

func (f icdfFunc) ICDF(u float64) float64 { return f(u) }
func (f icdfFunc) Sample(rng *rand.Rand) float64 {
	return f(uniform01(rng))
}

// Cauchy has no closed-form representation in the example libraries'
// distuv package, so its ICDF is the elementary closed form
// location + scale*tan(pi*(u-1/2)).
func NewCauchy(location, scale float64) (Distribution, error) {
	if scale <= 0 {
		return nil, newError(KindInvalidArgument, "NewCauchy", "scale %f must be > 0", scale)
	}
	return icdfFunc(func(u float64) float64 {
		return location + scale*math.Tan(math.Pi*(u-0.5))
	}), nil
}

// Exponential delegates its inverse CDF to distuv, parameterized by mean
// (rate = 1/mean) as specified.
func NewExponential(mean float64) (Distribution, error) {
	if mean <= 0 {
		return nil, newError(KindInvalidArgument, "NewExponential", "mean %f must be > 0", mean)
	}
	d := distuv.Exponential{Rate: 1 / mean}
	return icdfFunc(d.Quantile), nil
}

// Weibull's closed-form ICDF, b*(-ln(1-u))^(1/a), is implemented directly;
// distuv.Weibull models a different (k, lambda) convention than the
// (a, b) shape/scale pairing spec.md requires, so a hand-rolled ICDF avoids
// a parameter-mapping footgun.
func NewWeibull(a, b float64) (Distribution, error) {
	if a <= 0 || b <= 0 {
		return nil, newError(KindInvalidArgument, "NewWeibull", "a=%f b=%f must both be > 0", a, b)
	}
	return icdfFunc(func(u float64) float64 {
		return b * math.Pow(-math.Log(1-u), 1/a)
	}), nil
}

// LogNormal delegates to distuv's Quantile.
func NewLogNormal(mu, sigma float64) (Distribution, error) {
	if sigma <= 0 {
		return nil, newError(KindInvalidArgument, "NewLogNormal", "sigma %f must be > 0", sigma)
	}
	d := distuv.LogNormal{Mu: mu, Sigma: sigma}
	return icdfFunc(d.Quantile), nil
}

// Normal delegates to distuv's Quantile (inverse error function based).
func NewNormal(mu, sigma float64) (Distribution, error) {
	if sigma <= 0 {
		return nil, newError(KindInvalidArgument, "NewNormal", "sigma %f must be > 0", sigma)
	}
	d := distuv.Normal{Mu: mu, Sigma: sigma}
	return icdfFunc(d.Quantile), nil
}

// PowerLaw's ICDF xmin*(1-u)^(-1/(alpha-1)) is elementary and not exposed
// by any pack library, so it is implemented directly.
func NewPowerLaw(alpha, xmin float64) (Distribution, error) {
	if alpha <= 1 {
		return nil, newError(KindInvalidArgument, "NewPowerLaw", "alpha %f must be > 1", alpha)
	}
	if xmin <= 0 {
		return nil, newError(KindInvalidArgument, "NewPowerLaw", "xmin %f must be > 0", xmin)
	}
	return icdfFunc(func(u float64) float64 {
		return xmin * math.Pow(1-u, -1/(alpha-1))
	}), nil
}

// HyperbolicSecant's ICDF (2*sigma/pi)*ln(tan(pi*u/2)) is elementary and
// implemented directly; no pack library exposes this family.
func NewHyperbolicSecant(sigma float64) (Distribution, error) {
	if sigma <= 0 {
		return nil, newError(KindInvalidArgument, "NewHyperbolicSecant", "sigma %f must be > 0", sigma)
	}
	return icdfFunc(func(u float64) float64 {
		return (2 * sigma / math.Pi) * math.Log(math.Tan(math.Pi*u/2))
	}), nil
}

// Logistic's ICDF s*ln(u/(1-u)) is elementary and implemented directly.
func NewLogistic(s float64) (Distribution, error) {
	if s <= 0 {
		return nil, newError(KindInvalidArgument, "NewLogistic", "s %f must be > 0", s)
	}
	return icdfFunc(func(u float64) float64 {
		return s * math.Log(u/(1-u))
	}), nil
}

// ExponentialPower has no closed-form inverse CDF; it is sampled by
// inverting the (incomplete) gamma-based CDF via distuv.Gamma's Quantile
// on the transformed variable, following the generalized-normal /
// exponential-power relationship |x|^beta ~ Gamma(1/beta, alpha^beta),
// with the sign taken from the same uniform: u below 1/2 gives a negative
// value and u above 1/2 a positive one, each half rescaled to a magnitude
// quantile in (0,1). Sampling still consumes one uniform per call.
func NewExponentialPower(alpha, beta float64) (Distribution, error) {
	if alpha <= 0 || beta <= 0 {
		return nil, newError(KindInvalidArgument, "NewExponentialPower", "alpha=%f beta=%f must both be > 0", alpha, beta)
	}
	gamma := distuv.Gamma{Alpha: 1 / beta, Beta: 1 / math.Pow(alpha, beta)}
	return &exponentialPower{alpha: alpha, beta: beta, gamma: gamma}, nil
}

type exponentialPower struct {
	alpha, beta float64
	gamma       distuv.Gamma
}

func (d *exponentialPower) ICDF(u float64) float64 {
	// Fold u in (0,1) into a magnitude quantile in (0,1) and a sign.
	sign := 1.0
	m := u
	if u < 0.5 {
		sign = -1.0
		m = 1 - 2*u
	} else {
		m = 2*u - 1
	}
	mag := math.Pow(d.gamma.Quantile(m), 1/d.beta)
	return sign * mag
}

func (d *exponentialPower) Sample(rng *rand.Rand) float64 {
	return d.ICDF(uniform01(rng))
}

// Gamma delegates to distuv's Quantile, parameterized as (shape, scale)
// per spec.md (distuv uses a rate parameterization, Beta = 1/scale).
func NewGamma(shape, scale float64) (Distribution, error) {
	if shape <= 0 || scale <= 0 {
		return nil, newError(KindInvalidArgument, "NewGamma", "shape=%f scale=%f must both be > 0", shape, scale)
	}
	d := distuv.Gamma{Alpha: shape, Beta: 1 / scale}
	return icdfFunc(d.Quantile), nil
}

// VonMises samples a mean direction theta0 with concentration kappa using
// the Best & Fisher (1979) rejection algorithm, the standard approach for
// this family; it is not an inverse-CDF sampler (the von Mises CDF has no
// closed form) and is used only by the radial kernel's angle draw, which is
// explicitly a rejection-capable RNG touch point in spec.md §4.C.
type VonMises struct {
	Kappa, Mu float64
}

// Sample draws one angle in (-pi, pi] using rng, consuming a
// seed-dependent but bounded number of uniform draws (virtually always one
// rejection-loop iteration for the kappa ranges used by dispersal kernels).
func (v VonMises) Sample(rng *rand.Rand) float64 {
	wrap := func(theta float64) float64 {
		theta = math.Mod(theta+math.Pi, 2*math.Pi)
		if theta <= 0 {
			theta += 2 * math.Pi
		}
		return theta - math.Pi
	}
	if v.Kappa <= 1e-8 {
		return wrap(v.Mu + (rng.Float64()*2-1)*math.Pi)
	}
	a := 1 + math.Sqrt(1+4*v.Kappa*v.Kappa)
	b := (a - math.Sqrt(2*a)) / (2 * v.Kappa)
	r := (1 + b*b) / (2 * b)
	for {
		u1 := rng.Float64()
		z := math.Cos(math.Pi * u1)
		f := (1 + r*z) / (r + z)
		c := v.Kappa * (r - f)
		u2 := rng.Float64()
		if c*(2-c)-u2 > 0 || math.Log(c/u2)+1-c >= 0 {
			u3 := rng.Float64()
			sign := 1.0
			if u3 < 0.5 {
				sign = -1.0
			}
			return wrap(sign*math.Acos(f) + v.Mu)
		}
	}
}

// NormalWithUniformFallback draws from Normal(mu, sigma); if the draw falls
// outside [low, high] it resamples uniformly in [low, high] exactly once
// and returns that, guaranteeing the result lies in the closed interval.
func NormalWithUniformFallback(rng *rand.Rand, mu, sigma, low, high float64) float64 {
	n := distuv.Normal{Mu: mu, Sigma: sigma}
	x := n.Quantile(uniform01(rng))
	if x < low || x > high {
		return low + rng.Float64()*(high-low)
	}
	return x
}
