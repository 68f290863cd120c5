package pops

import (
	"github.com/BurntSushi/toml"
)

// Config is the root TOML document describing one simulation run: grid
// geometry, host/pest model parameters, dispersal kernels, the action
// schedule, and output destinations. LoadConfig decodes a file into one of
// these; Validate must be called before Build.
type Config struct {
	Simulation *SimulationConfig `toml:"simulation"`
	Model      *ModelConfig      `toml:"model"`
	Kernel     *KernelConfig     `toml:"kernel"`
	Schedule   *ScheduleConfig   `toml:"schedule"`
	Output     *OutputConfig     `toml:"output"`

	validated bool
}

// SimulationConfig holds the grid geometry, resolution and the random
// seed(s) driving every named stream.
type SimulationConfig struct {
	Rows           int    `toml:"rows"`
	Cols           int    `toml:"cols"`
	EWRes          float64 `toml:"ew_res"`
	NSRes          float64 `toml:"ns_res"`
	StepsPerYear   float64 `toml:"steps_per_year"`
	StartDate      string `toml:"start_date"` // "YYYY-MM-DD"
	EndDate        string `toml:"end_date"`
	RandomSeed     int64  `toml:"random_seed"`
	RandomSeedsRaw string `toml:"random_seeds"` // "name=seed,name=seed", overrides random_seed per stream
	SingleGenerator bool  `toml:"single_generator"`
}

// Validate checks grid geometry and resolutions are positive and that the
// date range parses.
func (c *SimulationConfig) Validate() error {
	if c.Rows <= 0 || c.Cols <= 0 {
		return newError(KindInvalidArgument, "SimulationConfig.Validate", "rows=%d cols=%d must both be > 0", c.Rows, c.Cols)
	}
	if c.EWRes <= 0 || c.NSRes <= 0 {
		return newError(KindInvalidArgument, "SimulationConfig.Validate", "ew_res=%f ns_res=%f must both be > 0", c.EWRes, c.NSRes)
	}
	if c.StepsPerYear <= 0 {
		return newError(KindInvalidArgument, "SimulationConfig.Validate", "steps_per_year %f must be > 0", c.StepsPerYear)
	}
	if _, err := parseConfigDate(c.StartDate); err != nil {
		return err
	}
	if _, err := parseConfigDate(c.EndDate); err != nil {
		return err
	}
	return nil
}

func parseConfigDate(s string) (Date, error) {
	if len(s) != 10 || s[4] != '-' || s[7] != '-' {
		return Date{}, newError(KindParseError, "parseConfigDate", "expected YYYY-MM-DD, got %q", s)
	}
	year, okY := atoiStrict(s[0:4])
	month, okM := atoiStrict(s[5:7])
	day, okD := atoiStrict(s[8:10])
	if !okY || !okM || !okD {
		return Date{}, newError(KindParseError, "parseConfigDate", "expected YYYY-MM-DD, got %q", s)
	}
	return NewDate(year, month, day)
}

func atoiStrict(s string) (int, bool) {
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}

// HostSpeciesConfig describes one host species raster set and its
// epidemiological parameters.
type HostSpeciesConfig struct {
	Name                       string  `toml:"name"`
	ModelType                  string  `toml:"model_type"` // SI, SEI
	TotalHostsPath             string  `toml:"total_hosts_path"`
	InfectedPath               string  `toml:"infected_path"`
	Susceptibility             float64 `toml:"susceptibility"`
	LatencyPeriod              int     `toml:"latency_period"`
	MortalityTimeLag           int     `toml:"mortality_time_lag"`
	MortalityRate              float64 `toml:"mortality_rate"`
	EstablishmentStochasticity bool    `toml:"establishment_stochasticity"`
	DeterministicProbability   float64 `toml:"deterministic_probability"`
	UseWeather                 bool    `toml:"use_weather"`
}

func (c *HostSpeciesConfig) Validate() error {
	if _, err := ParseModelType(c.ModelType); err != nil {
		return err
	}
	if c.Susceptibility < 0 {
		return newError(KindInvalidArgument, "HostSpeciesConfig.Validate", "susceptibility %f must be >= 0", c.Susceptibility)
	}
	if c.LatencyPeriod < 0 || c.MortalityTimeLag < 0 {
		return newError(KindInvalidArgument, "HostSpeciesConfig.Validate",
			"latency_period=%d mortality_time_lag=%d must both be >= 0", c.LatencyPeriod, c.MortalityTimeLag)
	}
	if c.MortalityRate < 0 || c.MortalityRate > 1 {
		return newError(KindInvalidArgument, "HostSpeciesConfig.Validate", "mortality_rate %f must be in [0,1]", c.MortalityRate)
	}
	return nil
}

// ModelConfig groups host composition, pest/pathogen mode, and the
// overpopulation/quarantine/weather feature toggles.
type ModelConfig struct {
	Hosts             []*HostSpeciesConfig `toml:"host"`
	PestOrPathogen    string               `toml:"pest_or_pathogen"`
	WeatherType       string               `toml:"weather_type"`
	WeatherPath       string               `toml:"weather_coefficient_path"`
	TemperaturePath   string               `toml:"temperature_path"`
	OtherIndividualsPath string            `toml:"other_individuals_path"`

	UseLethalTemperature   bool    `toml:"use_lethal_temperature"`
	LethalTemperatureThresh float64 `toml:"lethal_temperature_threshold"`

	UseOverpopulation        bool    `toml:"use_overpopulation_movements"`
	OverpopulationPercentage float64 `toml:"overpopulation_percentage"`
	LeavingPercentage        float64 `toml:"leaving_percentage"`

	UseSurvivalRate  bool    `toml:"use_survival_rate"`
	SurvivalRatePath string  `toml:"survival_rate_path"`

	UseSoil          bool    `toml:"use_soil"`
	SoilMemorySteps  int     `toml:"soil_memory_steps"`
	ToSoilPercentage float64 `toml:"to_soil_percentage"`
	SoilEmitP        float64 `toml:"soil_emission_probability"`

	UseQuarantine bool   `toml:"use_quarantine"`
	QuarantinePath string `toml:"quarantine_area_path"`

	Treatments []*TreatmentConfig `toml:"treatment"`
}

// TreatmentConfig describes one scheduled treatment application.
type TreatmentConfig struct {
	IntensityPath string `toml:"intensity_path"`
	StartDate     string `toml:"start_date"`
	EndDate       string `toml:"end_date"`
}

func (c *ModelConfig) Validate() error {
	if len(c.Hosts) == 0 {
		return newError(KindInvalidArgument, "ModelConfig.Validate", "at least one [[model.host]] entry is required")
	}
	for i, h := range c.Hosts {
		if err := h.Validate(); err != nil {
			return wrapError(KindInvalidArgument, "ModelConfig.Validate", err)
		}
		_ = i
	}
	if _, err := ParsePestOrPathogen(c.PestOrPathogen); err != nil {
		return err
	}
	if _, err := ParseWeatherType(c.WeatherType); err != nil {
		return err
	}
	if c.UseOverpopulation {
		if c.OverpopulationPercentage < 0 || c.OverpopulationPercentage > 1 {
			return newError(KindInvalidArgument, "ModelConfig.Validate",
				"overpopulation_percentage %f must be in [0,1]", c.OverpopulationPercentage)
		}
		if c.LeavingPercentage < 0 || c.LeavingPercentage > 1 {
			return newError(KindInvalidArgument, "ModelConfig.Validate",
				"leaving_percentage %f must be in [0,1]", c.LeavingPercentage)
		}
	}
	if c.UseSoil {
		if c.SoilMemorySteps < 1 {
			return newError(KindInvalidArgument, "ModelConfig.Validate", "soil_memory_steps %d must be >= 1", c.SoilMemorySteps)
		}
		if c.ToSoilPercentage < 0 || c.ToSoilPercentage > 1 {
			return newError(KindInvalidArgument, "ModelConfig.Validate", "to_soil_percentage %f must be in [0,1]", c.ToSoilPercentage)
		}
	}
	for _, t := range c.Treatments {
		if _, err := parseConfigDate(t.StartDate); err != nil {
			return err
		}
		if _, err := parseConfigDate(t.EndDate); err != nil {
			return err
		}
	}
	return nil
}

// KernelConfig selects and parameterizes the dispersal kernel used by
// spread and overpopulation movement.
type KernelConfig struct {
	Type   string  `toml:"type"` // cauchy, exponential, weibull, lognormal, normal, power_law,
	                              // hyperbolic_secant, logistic, exponential_power, gamma,
	                              // deterministic_neighbor, deterministic, uniform, network
	                              // (a composite kernel is built by setting anthropogenic_type)
	Param1 float64 `toml:"param_1"`
	Param2 float64 `toml:"param_2"`
	Kappa  float64 `toml:"kappa"`
	Theta0 float64 `toml:"theta0"`
	Direction string `toml:"direction"` // deterministic_neighbor only

	Radius int `toml:"radius"` // deterministic only

	AnthropogenicType   string  `toml:"anthropogenic_type"`
	AnthropogenicParam1 float64 `toml:"anthropogenic_param_1"`
	AnthropogenicParam2 float64 `toml:"anthropogenic_param_2"`
	PercentNaturalDispersal float64 `toml:"percent_natural_dispersal"`

	NetworkNodesPath    string  `toml:"network_nodes_path"`
	NetworkSegmentsPath string  `toml:"network_segments_path"`
	NetworkCostPerCell  float64 `toml:"network_cost_per_cell"`
	NetworkTravelMean   float64 `toml:"network_travel_mean"`
	NetworkBBoxMinX     float64 `toml:"network_bbox_min_x"`
	NetworkBBoxMinY     float64 `toml:"network_bbox_min_y"`
	NetworkBBoxMaxX     float64 `toml:"network_bbox_max_x"`
	NetworkBBoxMaxY     float64 `toml:"network_bbox_max_y"`
}

var kernelTypes = map[string]bool{
	"cauchy": true, "exponential": true, "weibull": true, "lognormal": true,
	"normal": true, "power_law": true, "hyperbolic_secant": true, "logistic": true,
	"exponential_power": true, "gamma": true, "deterministic_neighbor": true,
	"deterministic": true, "uniform": true, "network": true,
}

func (c *KernelConfig) Validate() error {
	if c == nil {
		return nil
	}
	if !kernelTypes[lower(c.Type)] {
		return newError(KindInvalidArgument, "KernelConfig.Validate", "unrecognized kernel type %q", c.Type)
	}
	if c.Type == "deterministic_neighbor" {
		if _, err := ParseDirection(c.Direction); err != nil {
			return err
		}
	}
	if c.PercentNaturalDispersal < 0 || c.PercentNaturalDispersal > 1 {
		return newError(KindInvalidArgument, "KernelConfig.Validate",
			"percent_natural_dispersal %f must be in [0,1]", c.PercentNaturalDispersal)
	}
	return nil
}

// ScheduleConfig groups one Cadence per action kind that has a schedule
// (spread always runs daily; mortality and spread_rate run when their
// section is present, while lethal_temperature, survival_rate,
// overpopulation and quarantine also need their use_* switch in [model];
// a cadence whose count is zero or less never fires).
type ScheduleConfig struct {
	LethalTemperature *CadenceConfig `toml:"lethal_temperature"`
	SurvivalRate      *CadenceConfig `toml:"survival_rate"`
	Overpopulation    *CadenceConfig `toml:"overpopulation"`
	Mortality         *CadenceConfig `toml:"mortality"`
	SpreadRate        *CadenceConfig `toml:"spread_rate"`
	Quarantine        *CadenceConfig `toml:"quarantine"`
}

// CadenceConfig is the TOML shape of a Cadence: a unit name and a count.
type CadenceConfig struct {
	Unit  string `toml:"unit"`
	Count int    `toml:"count"`
}

func (c *CadenceConfig) toCadence() (Cadence, error) {
	if c == nil {
		return Cadence{}, nil
	}
	unit, err := ParseCadenceUnit(c.Unit)
	if err != nil {
		return Cadence{}, err
	}
	return Cadence{Unit: unit, Count: c.Count}, nil
}

func (c *ScheduleConfig) Validate() error {
	if c == nil {
		return nil
	}
	for _, cc := range []*CadenceConfig{c.LethalTemperature, c.SurvivalRate, c.Overpopulation, c.Mortality, c.SpreadRate, c.Quarantine} {
		if cc == nil {
			continue
		}
		if _, err := cc.toCadence(); err != nil {
			return err
		}
	}
	return nil
}

// OutputConfig selects the step-logging backend(s) and their destinations.
type OutputConfig struct {
	CSVBasePath    string `toml:"csv_base_path"`
	SQLitePath     string `toml:"sqlite_path"`
	LogEveryNSteps int    `toml:"log_every_n_steps"`
}

func (c *OutputConfig) Validate() error {
	if c == nil {
		return nil
	}
	if c.LogEveryNSteps < 0 {
		return newError(KindInvalidArgument, "OutputConfig.Validate", "log_every_n_steps %d must be >= 0", c.LogEveryNSteps)
	}
	return nil
}

// LoadConfig decodes a TOML file at path into a Config, following the
// same toml.DecodeFile entry point the engine has always used for its
// configuration files.
func LoadConfig(path string) (*Config, error) {
	cfg := new(Config)
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, wrapError(KindParseError, "LoadConfig", err)
	}
	return cfg, nil
}

// Validate cascades into every nested section present, mirroring the
// engine's validated-config-before-use convention: Build refuses to run
// against a Config that has not been validated.
func (c *Config) Validate() error {
	if c.Simulation == nil {
		return newError(KindInvalidArgument, "Config.Validate", "[simulation] section is required")
	}
	if err := c.Simulation.Validate(); err != nil {
		return err
	}
	if c.Model == nil {
		return newError(KindInvalidArgument, "Config.Validate", "[model] section is required")
	}
	if err := c.Model.Validate(); err != nil {
		return err
	}
	if err := c.Kernel.Validate(); err != nil {
		return err
	}
	if err := c.Schedule.Validate(); err != nil {
		return err
	}
	if err := c.Output.Validate(); err != nil {
		return err
	}
	c.validated = true
	return nil
}
