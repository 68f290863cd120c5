package pops

// WeatherType selects how the weather coefficient raster is applied.
type WeatherType int

const (
	WeatherNone WeatherType = iota
	WeatherDeterministic
	WeatherProbabilistic
)

// ParseWeatherType parses the case-insensitive strings "deterministic",
// "probabilistic", "none", and the empty string (-> WeatherNone).
func ParseWeatherType(s string) (WeatherType, error) {
	switch lower(s) {
	case "deterministic":
		return WeatherDeterministic, nil
	case "probabilistic":
		return WeatherProbabilistic, nil
	case "none", "":
		return WeatherNone, nil
	}
	return WeatherNone, newError(KindInvalidArgument, "ParseWeatherType", "unknown weather type %q", s)
}

func lower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// totalHostsAt is the subset of the HostPool contract Environment needs to
// compute total population per cell without depending on the full pool
// type (host_index is identity by registration order, not by pointer
// dereference, which keeps Environment decoupled from HostPool internals).
type totalHostsAt interface {
	TotalHostsAt(row, col int) float64
}

// Environment owns the weather coefficient raster and a registry of
// non-owning host pool references, and computes total population per cell
// as other_individuals + sum of every registered host's total hosts.
type Environment struct {
	weather            *Raster[float64]
	weatherType        WeatherType
	temperature        *Raster[float64]
	lethalTempThresh   float64
	hasLethalTempThresh bool
	otherIndividuals   *Raster[float64]
	hosts              []totalHostsAt
	hostIndex          map[totalHostsAt]int
}

// NewEnvironment builds an Environment over a rows x cols grid with no
// other-individuals population (zero raster) unless SetOtherIndividuals is
// called.
func NewEnvironment(rows, cols int, weatherType WeatherType) *Environment {
	return &Environment{
		weatherType:      weatherType,
		otherIndividuals: NewRaster[float64](rows, cols, 0),
		hostIndex:        make(map[totalHostsAt]int),
	}
}

// UpdateWeather replaces the current weather coefficient field.
func (e *Environment) UpdateWeather(raster *Raster[float64]) {
	e.weather = raster
}

// WeatherCoefficientAt returns the weather coefficient at (row, col).
// Fails with KindLogicState if the weather field was never set.
func (e *Environment) WeatherCoefficientAt(row, col int) (float64, error) {
	if e.weather == nil {
		return 0, newError(KindLogicState, "Environment.WeatherCoefficientAt", "weather coefficient was never set")
	}
	return e.weather.At(row, col), nil
}

// SetTemperature replaces the current temperature field, used by
// LethalTemperatureAction.
func (e *Environment) SetTemperature(raster *Raster[float64]) {
	e.temperature = raster
}

// TemperatureAt returns the temperature at (row, col). Fails with
// KindLogicState if temperature was never set.
func (e *Environment) TemperatureAt(row, col int) (float64, error) {
	if e.temperature == nil {
		return 0, newError(KindLogicState, "Environment.TemperatureAt", "temperature was never set")
	}
	return e.temperature.At(row, col), nil
}

// SetLethalTemperatureThreshold sets the threshold below which
// LethalTemperatureAction clears infection at a cell.
func (e *Environment) SetLethalTemperatureThreshold(threshold float64) {
	e.lethalTempThresh = threshold
	e.hasLethalTempThresh = true
}

// LethalTemperatureThreshold returns the configured threshold. Fails with
// KindLogicState if it was never set.
func (e *Environment) LethalTemperatureThreshold() (float64, error) {
	if !e.hasLethalTempThresh {
		return 0, newError(KindLogicState, "Environment.LethalTemperatureThreshold", "threshold was never set")
	}
	return e.lethalTempThresh, nil
}

// SetOtherIndividuals sets the non-host population raster contributing to
// total_population_at.
func (e *Environment) SetOtherIndividuals(raster *Raster[float64]) {
	e.otherIndividuals = raster
}

// RegisterHost adds host to the registry and returns its index (also
// obtainable later via HostIndex), implementing host_index as a stable
// array index rather than by pointer identity, per the arena
// re-architecture in spec.md §9.
func (e *Environment) RegisterHost(host totalHostsAt) int {
	idx := len(e.hosts)
	e.hosts = append(e.hosts, host)
	e.hostIndex[host] = idx
	return idx
}

// HostIndex returns the registration-order index of host, or -1 if it was
// never registered.
func (e *Environment) HostIndex(host totalHostsAt) int {
	if idx, ok := e.hostIndex[host]; ok {
		return idx
	}
	return -1
}

// TotalPopulationAt is other_individuals(i,j) + sum over every registered
// host's total_hosts_at(i,j).
func (e *Environment) TotalPopulationAt(row, col int) float64 {
	sum := e.otherIndividuals.At(row, col)
	for _, h := range e.hosts {
		sum += h.TotalHostsAt(row, col)
	}
	return sum
}
