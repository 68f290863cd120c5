package pops

// Action is the single entry point every pipeline action implements: a
// closure over its own parameters (hosts, pests, environment, kernels,
// rates) that mutates state for one scheduled step, reading randomness
// only through the named streams of a GeneratorProvider. Model.RunStep
// dispatches a fixed set of these in the canonical order spec.md §4.J
// requires.
type Action interface {
	Run(step int, rng GeneratorProvider) error
}
