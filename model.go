package pops

// Resources bundles every raster and stream the driver has already loaded
// from disk, keyed by the path string named in the Config. Build never
// touches the filesystem itself: rasters remain an external collaborator
// loaded by the caller, per spec.md §1/§6. Network descriptions are held
// as raw bytes rather than an io.Reader so Build can be called more than
// once (multiple run instances) without exhausting a single stream.
type Resources struct {
	TotalHosts map[string]*Raster[int]
	Infected   map[string]*Raster[int]
	Float      map[string]*Raster[float64]
	Quarantine map[string]*Raster[int]

	NetworkNodes    []byte
	NetworkSegments []byte
}

// treatmentEvent pairs a single-shot calendar date with the apply/end
// action it triggers. Treatments are not cadence-driven like the other
// action kinds: each has its own bespoke start/end date, so Model matches
// them against the schedule's date at each step directly rather than
// through Schedule's per-ActionKind bitset.
type treatmentEvent struct {
	date   Date
	apply  *TreatmentApplyAction
	ending *TreatmentEndAction
}

// Model is the fully wired simulation: one run's Environment, host and
// pest state, the precomputed Schedule, every configured Action, and an
// optional output sink. Build constructs one from a validated Config plus
// its Resources; Run drives it to completion.
type Model struct {
	RNG      GeneratorProvider
	Schedule *Schedule
	Hosts    *MultiHostPool
	Pests    *PestPool
	Env      *Environment
	Logger   StepLogger

	lethalTemperature *LethalTemperatureAction
	survivalRate      *SurvivalRateAction
	spread            *SpreadAction
	overpopulation    *OverpopulationMovementAction
	mortality         []*MortalityAction
	spreadRate        *SpreadRateAction
	quarantine        *QuarantineEscapeAction

	treatments []treatmentEvent
}

// Build wires a validated Config and its already-loaded Resources into a
// runnable Model: RNG provider, Environment, HostPools, PestPool/SoilPool,
// the dispersal kernel, the precomputed Schedule, and every configured
// Action — mirroring the teacher's SingleHostConfig.NewSimulation()
// factory-method pattern.
func (c *Config) Build(res Resources) (*Model, error) {
	if !c.validated {
		return nil, newError(KindLogicState, "Config.Build", "Config.Validate must succeed before Build")
	}

	sim := c.Simulation
	rows, cols := sim.Rows, sim.Cols

	rng, err := buildGeneratorProvider(sim)
	if err != nil {
		return nil, err
	}

	weatherType, err := ParseWeatherType(c.Model.WeatherType)
	if err != nil {
		return nil, err
	}
	env := NewEnvironment(rows, cols, weatherType)
	if c.Model.WeatherPath != "" {
		w, ok := res.Float[c.Model.WeatherPath]
		if !ok {
			return nil, newError(KindLogicState, "Config.Build", "weather_coefficient_path %q not found in resources", c.Model.WeatherPath)
		}
		env.UpdateWeather(w)
	}
	if c.Model.TemperaturePath != "" {
		t, ok := res.Float[c.Model.TemperaturePath]
		if !ok {
			return nil, newError(KindLogicState, "Config.Build", "temperature_path %q not found in resources", c.Model.TemperaturePath)
		}
		env.SetTemperature(t)
	}
	if c.Model.OtherIndividualsPath != "" {
		o, ok := res.Float[c.Model.OtherIndividualsPath]
		if !ok {
			return nil, newError(KindLogicState, "Config.Build", "other_individuals_path %q not found in resources", c.Model.OtherIndividualsPath)
		}
		env.SetOtherIndividuals(o)
	}
	if c.Model.UseLethalTemperature {
		env.SetLethalTemperatureThreshold(c.Model.LethalTemperatureThresh)
	}

	pools := make([]*HostPool, 0, len(c.Model.Hosts))
	for _, hc := range c.Model.Hosts {
		total, ok := res.TotalHosts[hc.TotalHostsPath]
		if !ok {
			return nil, newError(KindLogicState, "Config.Build", "total_hosts_path %q not found in resources", hc.TotalHostsPath)
		}
		infected, ok := res.Infected[hc.InfectedPath]
		if !ok {
			return nil, newError(KindLogicState, "Config.Build", "infected_path %q not found in resources", hc.InfectedPath)
		}
		modelType, err := ParseModelType(hc.ModelType)
		if err != nil {
			return nil, err
		}
		pool, err := NewHostPool(total, infected, HostPoolConfig{
			ModelType:                  modelType,
			LatencyPeriod:              hc.LatencyPeriod,
			MortalityTimeLag:           hc.MortalityTimeLag,
			Susceptibility:             hc.Susceptibility,
			Environment:                env,
			EstablishmentStochasticity: hc.EstablishmentStochasticity,
			DeterministicProbability:   hc.DeterministicProbability,
			UseWeather:                 hc.UseWeather,
		})
		if err != nil {
			return nil, err
		}
		pools = append(pools, pool)
	}

	mode, err := ParsePestOrPathogen(c.Model.PestOrPathogen)
	if err != nil {
		return nil, err
	}
	hosts := NewMultiHostPool(env, mode, pools...)

	var soil *SoilPool
	if c.Model.UseSoil {
		soil, err = NewSoilPool(rows, cols, c.Model.SoilMemorySteps, c.Model.ToSoilPercentage)
		if err != nil {
			return nil, err
		}
	}
	pests := NewPestPool(rows, cols, soil)

	kernel, err := buildKernel(c.Kernel, sim.EWRes, sim.NSRes, rows, cols, res)
	if err != nil {
		return nil, err
	}

	start, err := parseConfigDate(sim.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := parseConfigDate(sim.EndDate)
	if err != nil {
		return nil, err
	}

	cadences := map[ActionKind]Cadence{
		ActionSpread: {Unit: CadenceDay, Count: 1},
	}
	schedCfg := c.Schedule
	if schedCfg == nil {
		schedCfg = &ScheduleConfig{}
	}
	toggle := func(kind ActionKind, on bool, cc *CadenceConfig) error {
		if !on || cc == nil {
			return nil
		}
		cad, err := cc.toCadence()
		if err != nil {
			return err
		}
		cadences[kind] = cad
		return nil
	}
	if err := toggle(ActionLethalTemperature, c.Model.UseLethalTemperature, schedCfg.LethalTemperature); err != nil {
		return nil, err
	}
	if err := toggle(ActionSurvivalRate, c.Model.UseSurvivalRate, schedCfg.SurvivalRate); err != nil {
		return nil, err
	}
	if err := toggle(ActionOverpopulation, c.Model.UseOverpopulation, schedCfg.Overpopulation); err != nil {
		return nil, err
	}
	if schedCfg.Mortality != nil {
		if err := toggle(ActionMortality, true, schedCfg.Mortality); err != nil {
			return nil, err
		}
	}
	if schedCfg.SpreadRate != nil {
		if err := toggle(ActionSpreadRate, true, schedCfg.SpreadRate); err != nil {
			return nil, err
		}
	}
	if err := toggle(ActionQuarantine, c.Model.UseQuarantine, schedCfg.Quarantine); err != nil {
		return nil, err
	}

	schedule, err := BuildSchedule(start, end, cadences)
	if err != nil {
		return nil, err
	}

	m := &Model{
		RNG:      rng,
		Schedule: schedule,
		Hosts:    hosts,
		Pests:    pests,
		Env:      env,
		spread: &SpreadAction{
			Hosts: hosts, Pests: pests, Rows: rows, Cols: cols,
			Kernel: kernel, SoilEmitP: c.Model.SoilEmitP,
		},
	}

	if c.Model.UseLethalTemperature {
		m.lethalTemperature = &LethalTemperatureAction{Hosts: pools, Env: env}
	}
	if c.Model.UseSurvivalRate {
		rate, ok := res.Float[c.Model.SurvivalRatePath]
		if !ok {
			return nil, newError(KindLogicState, "Config.Build", "survival_rate_path %q not found in resources", c.Model.SurvivalRatePath)
		}
		m.survivalRate = &SurvivalRateAction{Hosts: pools, SurvivalRate: rate}
	}
	if c.Model.UseOverpopulation {
		m.overpopulation = &OverpopulationMovementAction{
			Hosts: pools, Pests: pests,
			OverpopulationPercentage: c.Model.OverpopulationPercentage,
			LeavingPercentage:        c.Model.LeavingPercentage,
			Kernel:                   kernel,
		}
	}
	if schedCfg.Mortality != nil {
		for i, hc := range c.Model.Hosts {
			m.mortality = append(m.mortality, &MortalityAction{Hosts: []*HostPool{pools[i]}, Rate: hc.MortalityRate})
		}
	}
	if schedCfg.SpreadRate != nil {
		m.spreadRate = &SpreadRateAction{Hosts: hosts, EWRes: sim.EWRes, NSRes: sim.NSRes, StepsPerYear: sim.StepsPerYear}
	}
	if c.Model.UseQuarantine {
		region, ok := res.Quarantine[c.Model.QuarantinePath]
		if !ok {
			return nil, newError(KindLogicState, "Config.Build", "quarantine_area_path %q not found in resources", c.Model.QuarantinePath)
		}
		m.quarantine = NewQuarantineEscapeAction(hosts, region)
	}

	for _, tc := range c.Model.Treatments {
		intensity, ok := res.Float[tc.IntensityPath]
		if !ok {
			return nil, newError(KindLogicState, "Config.Build", "treatment intensity_path %q not found in resources", tc.IntensityPath)
		}
		startD, err := parseConfigDate(tc.StartDate)
		if err != nil {
			return nil, err
		}
		endD, err := parseConfigDate(tc.EndDate)
		if err != nil {
			return nil, err
		}
		m.treatments = append(m.treatments,
			treatmentEvent{date: startD, apply: &TreatmentApplyAction{Hosts: pools, Intensity: intensity}},
			treatmentEvent{date: endD, ending: &TreatmentEndAction{Hosts: pools, Intensity: intensity}},
		)
	}

	return m, nil
}

func buildGeneratorProvider(sim *SimulationConfig) (GeneratorProvider, error) {
	if sim.SingleGenerator {
		return NewSingleGeneratorProvider(sim.RandomSeed), nil
	}
	if sim.RandomSeedsRaw != "" {
		seeds, err := ParseSeeds(sim.RandomSeedsRaw, ',', '=')
		if err != nil {
			return nil, err
		}
		return NewMultiGeneratorProviderFromSeeds(seeds)
	}
	return NewMultiGeneratorProvider(sim.RandomSeed), nil
}

// RunStep dispatches the canonical action order for one scheduled step:
// lethal_temperature, survival_rate, treatment applications due this
// step, spread, overpopulation, mortality, treatment endings due this
// step, then host/soil StepForward, spread_rate and quarantine snapshots,
// and finally a log write if a Logger is attached.
func (m *Model) RunStep(step int) error {
	date := m.Schedule.DateAt(step)

	if m.lethalTemperature != nil && m.Schedule.Scheduled(step, ActionLethalTemperature) {
		if err := m.lethalTemperature.Run(step, m.RNG); err != nil {
			return err
		}
	}
	if m.survivalRate != nil && m.Schedule.Scheduled(step, ActionSurvivalRate) {
		if err := m.survivalRate.Run(step, m.RNG); err != nil {
			return err
		}
	}
	for _, t := range m.treatments {
		if t.apply != nil && t.date.Equal(date) {
			if err := t.apply.Run(step, m.RNG); err != nil {
				return err
			}
		}
	}
	if m.Schedule.Scheduled(step, ActionSpread) {
		if err := m.spread.Run(step, m.RNG); err != nil {
			return err
		}
	}
	if m.overpopulation != nil && m.Schedule.Scheduled(step, ActionOverpopulation) {
		if err := m.overpopulation.Run(step, m.RNG); err != nil {
			return err
		}
	}
	if m.mortality != nil && m.Schedule.Scheduled(step, ActionMortality) {
		for _, ma := range m.mortality {
			if err := ma.Run(step, m.RNG); err != nil {
				return err
			}
		}
	}
	for _, t := range m.treatments {
		if t.ending != nil && t.date.Equal(date) {
			if err := t.ending.Run(step, m.RNG); err != nil {
				return err
			}
		}
	}

	m.Hosts.StepForward(step)
	if m.Pests.Soil() != nil {
		m.Pests.Soil().StepForward()
	}

	if m.spreadRate != nil && m.Schedule.Scheduled(step, ActionSpreadRate) {
		if err := m.spreadRate.Run(step, m.RNG); err != nil {
			return err
		}
	}
	if m.quarantine != nil && m.Schedule.Scheduled(step, ActionQuarantine) {
		if err := m.quarantine.Run(step, m.RNG); err != nil {
			return err
		}
	}

	if m.Logger != nil {
		summary := SummarizeHosts(m.Hosts)
		summary.Step = step
		summary.Date = date.String()
		summary.Outside = len(m.Pests.OutsideDispersers())
		if m.spreadRate != nil && len(m.spreadRate.History) > 0 {
			sr := m.spreadRate.History[len(m.spreadRate.History)-1]
			summary.SpreadRate = &sr
		}
		if m.quarantine != nil && len(m.quarantine.History) >= 4 {
			summary.Quarantine = m.quarantine.History[len(m.quarantine.History)-4:]
		}
		if err := m.Logger.Log(summary); err != nil {
			return err
		}
	}
	return nil
}

// QuarantineAction returns the run's quarantine-escape action, or nil if
// quarantine tracking is disabled, so a multi-run driver can aggregate
// escape probabilities across independent Models with QuarantineEscapeProbability.
func (m *Model) QuarantineAction() *QuarantineEscapeAction {
	return m.quarantine
}

// Run drives every step of the precomputed Schedule in order.
func (m *Model) Run() error {
	for step := 0; step < m.Schedule.Len(); step++ {
		if err := m.RunStep(step); err != nil {
			return err
		}
	}
	return nil
}
