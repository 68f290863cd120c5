package pops

// StepSummary is the per-step aggregate a StepLogger records: total host
// compartment counts across the whole suitable-cell set, the number of
// dispersers that left the grid this step, and this step's spread-rate
// and quarantine-escape readings (either may be absent).
type StepSummary struct {
	Step        int
	Date        string
	Susceptible float64
	Infected    float64
	Exposed     float64
	Resistant   float64
	Died        float64
	Outside     int
	SpreadRate  *SpreadRate
	Quarantine  []QuarantineEscapeRecord
}

// StepLogger is the output contract every step-logging backend
// implements; Model.Run calls Log once per executed step.
type StepLogger interface {
	Log(summary StepSummary) error
	Close() error
}

// SummarizeHosts reduces a MultiHostPool's current state into the
// compartment totals of a StepSummary, leaving Step/Date/Outside/
// SpreadRate/Quarantine for the caller to fill in.
func SummarizeHosts(hosts *MultiHostPool) StepSummary {
	var summary StepSummary
	for _, cell := range hosts.SuitableCells() {
		for _, pool := range hosts.Pools() {
			summary.Susceptible += pool.SusceptibleAt(cell.Row, cell.Col)
			summary.Infected += pool.InfectedAt(cell.Row, cell.Col)
			summary.Exposed += pool.ExposedAt(cell.Row, cell.Col)
			summary.Resistant += pool.ResistantAt(cell.Row, cell.Col)
			summary.Died += pool.DiedAt(cell.Row, cell.Col)
		}
	}
	return summary
}
