package pops

import (
	"math/rand"
	"sort"
	"strconv"
	"strings"
)

// Stream names required by the engine. Every named stream dispatches either
// to one shared PRNG (SingleGeneratorProvider) or to its own independent
// PRNG (MultiGeneratorProvider).
const (
	StreamGeneral            = "general"
	StreamWeather            = "weather"
	StreamLethalTemperature  = "lethal_temperature"
	StreamMovement           = "movement"
	StreamOverpopulation     = "overpopulation"
	StreamSurvivalRate       = "survival_rate"
	StreamSoil               = "soil"
	StreamEstablishment      = "establishment"
)

// streamNames is the closed set of valid stream names, in a fixed order
// used to derive independent seeds from a single scalar seed.
var streamNames = []string{
	StreamGeneral,
	StreamWeather,
	StreamLethalTemperature,
	StreamMovement,
	StreamOverpopulation,
	StreamSurvivalRate,
	StreamSoil,
	StreamEstablishment,
}

func isKnownStream(name string) bool {
	for _, n := range streamNames {
		if n == name {
			return true
		}
	}
	return false
}

// GeneratorProvider hands out a mutable RNG reference for a named stream.
// The RNG provider is always passed explicitly; no operation reaches for a
// process-global PRNG, which is what makes two runs with identical seeds
// produce bit-identical rasters (the determinism contract of spec.md §8).
type GeneratorProvider interface {
	// Stream returns the *rand.Rand backing name. Fails with
	// KindInvalidArgument on an unknown stream name.
	Stream(name string) (*rand.Rand, error)
}

// SingleGeneratorProvider dispatches every named stream to one underlying
// PRNG; draws from different names interleave deterministically in call
// order, matching DefaultSingleGeneratorProvider in the original engine.
type SingleGeneratorProvider struct {
	rng *rand.Rand
}

// NewSingleGeneratorProvider seeds one PRNG shared by every stream.
func NewSingleGeneratorProvider(seed int64) *SingleGeneratorProvider {
	return &SingleGeneratorProvider{rng: rand.New(rand.NewSource(seed))}
}

func (p *SingleGeneratorProvider) Stream(name string) (*rand.Rand, error) {
	if !isKnownStream(name) {
		return nil, newError(KindInvalidArgument, "SingleGeneratorProvider.Stream",
			"unknown stream name %q", name)
	}
	return p.rng, nil
}

// MultiGeneratorProvider gives every named stream its own independent PRNG;
// drawing from one name never perturbs another name's sequence.
type MultiGeneratorProvider struct {
	streams map[string]*rand.Rand
}

// seedStride is the fixed bijection constant used to derive per-stream
// seeds from a single scalar seed: seed_i = seed + i*seedStride.
const seedStride = 1_000_003

// NewMultiGeneratorProvider derives one independent seed per stream from a
// single scalar seed via seed_i = seed + i*seedStride, where i is the
// stream's position in streamNames.
func NewMultiGeneratorProvider(seed int64) *MultiGeneratorProvider {
	streams := make(map[string]*rand.Rand, len(streamNames))
	for i, name := range streamNames {
		streams[name] = rand.New(rand.NewSource(seed + int64(i)*seedStride))
	}
	return &MultiGeneratorProvider{streams: streams}
}

// NewMultiGeneratorProviderFromSeeds builds a provider from an explicit
// name->seed mapping. Every name in the mapping must be a known stream.
func NewMultiGeneratorProviderFromSeeds(seeds map[string]int64) (*MultiGeneratorProvider, error) {
	streams := make(map[string]*rand.Rand, len(streamNames))
	for _, name := range streamNames {
		seed, ok := seeds[name]
		if !ok {
			// Unconfigured streams still get a deterministic seed derived
			// from the general seed if present, otherwise from zero, so
			// the provider never needs a process-global fallback.
			seed = seeds[StreamGeneral]
		}
		streams[name] = rand.New(rand.NewSource(seed))
	}
	for name := range seeds {
		if !isKnownStream(name) {
			return nil, newError(KindInvalidArgument, "NewMultiGeneratorProviderFromSeeds",
				"unknown stream name %q", name)
		}
	}
	return &MultiGeneratorProvider{streams: streams}, nil
}

func (p *MultiGeneratorProvider) Stream(name string) (*rand.Rand, error) {
	rng, ok := p.streams[name]
	if !ok {
		return nil, newError(KindInvalidArgument, "MultiGeneratorProvider.Stream",
			"unknown stream name %q", name)
	}
	return rng, nil
}

// ParseSeeds parses a key-value seed mapping supporting both
// "a=1,b=2" (itemSep=',', kvSep='=') and YAML-like "a:1\nb:2"
// (itemSep='\n', kvSep=':') styles. Whitespace around items and keys/values
// is trimmed. Returns a KindParseError on a malformed item.
func ParseSeeds(text string, itemSep, kvSep rune) (map[string]int64, error) {
	seeds := make(map[string]int64)
	for _, item := range strings.FieldsFunc(text, func(r rune) bool { return r == itemSep }) {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		idx := strings.IndexRune(item, kvSep)
		if idx < 0 {
			return nil, newError(KindParseError, "ParseSeeds",
				"missing separator %q in item %q", kvSep, item)
		}
		key := strings.TrimSpace(item[:idx])
		valStr := strings.TrimSpace(item[idx+1:])
		val, err := strconv.ParseInt(valStr, 10, 64)
		if err != nil {
			return nil, wrapError(KindParseError, "ParseSeeds", err)
		}
		seeds[key] = val
	}
	return seeds, nil
}

// sortedStreamNames returns a sorted copy of streamNames.
func sortedStreamNames() []string {
	out := append([]string(nil), streamNames...)
	sort.Strings(out)
	return out
}
