package pops

import "testing"

func TestParseWeatherType(t *testing.T) {
	cases := map[string]WeatherType{
		"deterministic":  WeatherDeterministic,
		"PROBABILISTIC":  WeatherProbabilistic,
		"none":           WeatherNone,
		"":               WeatherNone,
	}
	for s, want := range cases {
		got, err := ParseWeatherType(s)
		if err != nil {
			t.Fatalf("%q: unexpected error %v", s, err)
		}
		if got != want {
			t.Errorf("%q: got %v, want %v", s, got, want)
		}
	}
	if _, err := ParseWeatherType("bogus"); err == nil {
		t.Error("expected error for an unknown weather type")
	}
}

func TestWeatherCoefficientAtErrorsWhenUnset(t *testing.T) {
	env := NewEnvironment(2, 2, WeatherDeterministic)
	if _, err := env.WeatherCoefficientAt(0, 0); err == nil {
		t.Error("expected error when weather was never set")
	}
	env.UpdateWeather(NewRaster(2, 2, 0.5))
	v, err := env.WeatherCoefficientAt(0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if v != 0.5 {
		t.Errorf("got %f, want 0.5", v)
	}
}

func TestTemperatureAtErrorsWhenUnset(t *testing.T) {
	env := NewEnvironment(1, 1, WeatherNone)
	if _, err := env.TemperatureAt(0, 0); err == nil {
		t.Error("expected error when temperature was never set")
	}
}

func TestLethalTemperatureThresholdErrorsWhenUnset(t *testing.T) {
	env := NewEnvironment(1, 1, WeatherNone)
	if _, err := env.LethalTemperatureThreshold(); err == nil {
		t.Error("expected error when threshold was never set")
	}
	env.SetLethalTemperatureThreshold(-2)
	got, err := env.LethalTemperatureThreshold()
	if err != nil {
		t.Fatal(err)
	}
	if got != -2 {
		t.Errorf("got %f, want -2", got)
	}
}

type fakeHostPopulation struct{ total float64 }

func (f fakeHostPopulation) TotalHostsAt(row, col int) float64 { return f.total }

func TestTotalPopulationAtSumsOtherIndividualsAndHosts(t *testing.T) {
	env := NewEnvironment(1, 1, WeatherNone)
	env.SetOtherIndividuals(NewRaster(1, 1, 3))
	a := fakeHostPopulation{total: 10}
	b := fakeHostPopulation{total: 5}
	env.RegisterHost(a)
	env.RegisterHost(b)
	if got := env.TotalPopulationAt(0, 0); got != 18 {
		t.Errorf("got %f, want 18 (3 + 10 + 5)", got)
	}
}

func TestRegisterHostReturnsRegistrationOrderIndex(t *testing.T) {
	env := NewEnvironment(1, 1, WeatherNone)
	a := fakeHostPopulation{total: 1}
	b := fakeHostPopulation{total: 2}
	if idx := env.RegisterHost(a); idx != 0 {
		t.Errorf("got index %d, want 0", idx)
	}
	if idx := env.RegisterHost(b); idx != 1 {
		t.Errorf("got index %d, want 1", idx)
	}
	if env.HostIndex(a) != 0 || env.HostIndex(b) != 1 {
		t.Errorf("HostIndex mismatch: a=%d b=%d", env.HostIndex(a), env.HostIndex(b))
	}
}

func TestHostIndexUnregisteredIsNegativeOne(t *testing.T) {
	env := NewEnvironment(1, 1, WeatherNone)
	other := fakeHostPopulation{total: 1}
	if idx := env.HostIndex(other); idx != -1 {
		t.Errorf("got %d, want -1 for an unregistered host", idx)
	}
}
