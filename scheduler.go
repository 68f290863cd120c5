package pops

import "sort"

// ActionKind names one of the pipeline's action classes. The iota order
// has no bearing on dispatch order; Model.RunStep hard-codes the
// canonical dispatch sequence independently of this enum's declaration
// order.
type ActionKind int

const (
	ActionLethalTemperature ActionKind = iota
	ActionSurvivalRate
	ActionTreatmentApply
	ActionTreatmentEnd
	ActionSpread
	ActionOverpopulation
	ActionMortality
	ActionSpreadRate
	ActionQuarantine
	numActionKinds
)

func (k ActionKind) String() string {
	switch k {
	case ActionLethalTemperature:
		return "lethal_temperature"
	case ActionSurvivalRate:
		return "survival_rate"
	case ActionTreatmentApply:
		return "treatment_apply"
	case ActionTreatmentEnd:
		return "treatment_end"
	case ActionSpread:
		return "spread"
	case ActionOverpopulation:
		return "overpopulation"
	case ActionMortality:
		return "mortality"
	case ActionSpreadRate:
		return "spread_rate"
	case ActionQuarantine:
		return "quarantine"
	default:
		return "unknown"
	}
}

// CadenceUnit is the unit a cadence count is measured in.
type CadenceUnit int

const (
	CadenceDay CadenceUnit = iota
	CadenceWeek
	CadenceMonth
	CadenceYear
)

// ParseCadenceUnit parses the case-insensitive strings "day", "week",
// "month", "year".
func ParseCadenceUnit(s string) (CadenceUnit, error) {
	switch lower(s) {
	case "day":
		return CadenceDay, nil
	case "week":
		return CadenceWeek, nil
	case "month":
		return CadenceMonth, nil
	case "year":
		return CadenceYear, nil
	}
	return CadenceDay, newError(KindInvalidArgument, "ParseCadenceUnit", "unknown cadence unit %q", s)
}

// Cadence describes how often one action class fires: every Count Units,
// starting from the schedule's start date. A zero-value Count (or a
// missing entry in the cadence map) disables that action class entirely.
type Cadence struct {
	Unit  CadenceUnit
	Count int
}

func (c Cadence) advance(d Date) Date {
	switch c.Unit {
	case CadenceWeek:
		for i := 0; i < c.Count; i++ {
			d = d.IncreasedByWeek()
		}
	case CadenceMonth:
		for i := 0; i < c.Count; i++ {
			d = d.IncreasedByMonth()
		}
	case CadenceYear:
		for i := 0; i < c.Count; i++ {
			d = d.IncreasedByYear()
		}
	default:
		d = d.AddDays(c.Count)
	}
	return d
}

// Schedule is the immutable, precomputed ordered step list and per-step
// action bitset, derived once at construction from a start/end date and a
// cadence per action class, per spec.md §4.H.
type Schedule struct {
	steps  []Date
	active [][numActionKinds]bool
}

// BuildSchedule enumerates every action class's own trigger dates between
// start and end (inclusive), unions them into a single sorted step list,
// and marks which action classes fire on each step. An action class with
// a zero or negative Count is treated as disabled.
func BuildSchedule(start, end Date, cadences map[ActionKind]Cadence) (*Schedule, error) {
	if !start.Before(end) && !start.Equal(end) {
		return nil, newError(KindOutOfRange, "BuildSchedule", "start %s must not be after end %s", start, end)
	}
	stepSet := make(map[Date]bool)
	perAction := make(map[ActionKind]map[Date]bool)
	for kind, cad := range cadences {
		if cad.Count <= 0 {
			continue
		}
		dates := make(map[Date]bool)
		d := start
		for !end.Before(d) {
			dates[d] = true
			stepSet[d] = true
			next := cad.advance(d)
			if !next.Before(d) && !next.Equal(d) {
				d = next
				continue
			}
			break
		}
		perAction[kind] = dates
	}

	steps := make([]Date, 0, len(stepSet))
	for d := range stepSet {
		steps = append(steps, d)
	}
	sort.Slice(steps, func(i, j int) bool { return steps[i].Before(steps[j]) })

	active := make([][numActionKinds]bool, len(steps))
	for i, d := range steps {
		for kind, dates := range perAction {
			if dates[d] {
				active[i][kind] = true
			}
		}
	}
	return &Schedule{steps: steps, active: active}, nil
}

// Len returns the number of steps in the schedule.
func (s *Schedule) Len() int { return len(s.steps) }

// DateAt returns the calendar date of step index s.
func (s *Schedule) DateAt(step int) Date { return s.steps[step] }

// Scheduled reports whether kind is active at step index s.
func (s *Schedule) Scheduled(step int, kind ActionKind) bool {
	if step < 0 || step >= len(s.active) {
		return false
	}
	return s.active[step][kind]
}
