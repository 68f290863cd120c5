package pops

import (
	"bytes"
	"math"
)

// buildKernel constructs the DispersalKernel named by cfg, wrapping it in
// a CompositeKernel when an anthropogenic_type is configured alongside
// percent_natural_dispersal, per spec.md §6's kernel configuration.
func buildKernel(cfg *KernelConfig, ewRes, nsRes float64, rows, cols int, res Resources) (DispersalKernel, error) {
	if cfg == nil {
		return nil, newError(KindInvalidArgument, "buildKernel", "[kernel] section is required")
	}
	natural, err := buildNamedKernel(lower(cfg.Type), cfg.Param1, cfg.Param2, cfg.Kappa, cfg.Theta0,
		cfg.Direction, cfg.Radius, ewRes, nsRes, rows, cols, cfg, res)
	if err != nil {
		return nil, err
	}
	if cfg.AnthropogenicType == "" {
		return natural, nil
	}
	anthro, err := buildNamedKernel(lower(cfg.AnthropogenicType), cfg.AnthropogenicParam1, cfg.AnthropogenicParam2,
		cfg.Kappa, cfg.Theta0, cfg.Direction, cfg.Radius, ewRes, nsRes, rows, cols, cfg, res)
	if err != nil {
		return nil, err
	}
	return NewCompositeKernel(natural, anthro, 1-cfg.PercentNaturalDispersal)
}

func buildNamedKernel(kind string, p1, p2, kappa, theta0 float64, direction string, radius int,
	ewRes, nsRes float64, rows, cols int, cfg *KernelConfig, res Resources) (DispersalKernel, error) {
	switch kind {
	case "deterministic_neighbor":
		dir, err := ParseDirection(direction)
		if err != nil {
			return nil, err
		}
		return DeterministicNeighborKernel{Direction: dir}, nil
	case "deterministic":
		pdf := func(distance float64) float64 {
			if p1 <= 0 {
				return 0
			}
			return math.Exp(-distance / p1)
		}
		return NewDeterministicKernel(pdf, radius, ewRes, nsRes)
	case "uniform":
		return UniformRandomKernel{Rows: rows, Cols: cols}, nil
	case "network":
		net, err := buildNetwork(cfg, ewRes, nsRes, res)
		if err != nil {
			return nil, err
		}
		travel, err := NewExponential(cfg.NetworkTravelMean)
		if err != nil {
			return nil, err
		}
		return &NetworkDispersalKernel{Net: net, Travel: travel}, nil
	default:
		dist, err := buildRadialDistribution(kind, p1, p2)
		if err != nil {
			return nil, err
		}
		return NewRadialKernel(dist, kappa, theta0, ewRes, nsRes, kind)
	}
}

func buildRadialDistribution(kind string, p1, p2 float64) (Distribution, error) {
	switch kind {
	case "cauchy":
		return NewCauchy(p1, p2)
	case "exponential":
		return NewExponential(p1)
	case "weibull":
		return NewWeibull(p1, p2)
	case "lognormal":
		return NewLogNormal(p1, p2)
	case "normal":
		return NewNormal(p1, p2)
	case "power_law":
		return NewPowerLaw(p1, p2)
	case "hyperbolic_secant":
		return NewHyperbolicSecant(p1)
	case "logistic":
		return NewLogistic(p1)
	case "exponential_power":
		return NewExponentialPower(p1, p2)
	case "gamma":
		return NewGamma(p1, p2)
	}
	return nil, newError(KindInvalidArgument, "buildRadialDistribution", "unrecognized kernel type %q", kind)
}

// buildNetwork parses the node and segment descriptions held in res. Both
// are read fresh from the backing byte slices on every call, since Build
// may be invoked once per independent run against the same Resources.
func buildNetwork(cfg *KernelConfig, ewRes, nsRes float64, res Resources) (*Network, error) {
	if res.NetworkNodes == nil || res.NetworkSegments == nil {
		return nil, newError(KindLogicState, "buildNetwork", "network kernel requires Resources.NetworkNodes and NetworkSegments")
	}
	bbox := GeoBBox{MinX: cfg.NetworkBBoxMinX, MinY: cfg.NetworkBBoxMinY, MaxX: cfg.NetworkBBoxMaxX, MaxY: cfg.NetworkBBoxMaxY}
	nodes, err := ParseNetworkNodes(bytes.NewReader(res.NetworkNodes), bbox, ewRes, nsRes)
	if err != nil {
		return nil, err
	}
	return ParseNetworkSegments(bytes.NewReader(res.NetworkSegments), nodes, bbox, cfg.NetworkCostPerCell, ewRes, nsRes)
}

