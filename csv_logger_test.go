package pops

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAppendToFileCreatesAndAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	if err := AppendToFile(path, []byte("a\n")); err != nil {
		t.Fatal(err)
	}
	if err := AppendToFile(path, []byte("b\n")); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "a\nb\n" {
		t.Errorf("got %q, want %q", got, "a\nb\n")
	}
}

func TestCSVStepLoggerSetBasePathDerivesArtifactPaths(t *testing.T) {
	l := NewCSVStepLogger(filepath.Join(t.TempDir(), "run"), 2)
	if !strings.HasSuffix(l.stepPath, ".002.steps.csv") {
		t.Errorf("got step path %q, want suffix .002.steps.csv", l.stepPath)
	}
	if !strings.HasSuffix(l.outsidePath, ".002.outside.csv") {
		t.Errorf("got outside path %q, want suffix .002.outside.csv", l.outsidePath)
	}
	if !strings.HasSuffix(l.spreadRatePath, ".002.spread_rate.csv") {
		t.Errorf("got spread_rate path %q, want suffix .002.spread_rate.csv", l.spreadRatePath)
	}
	if !strings.HasSuffix(l.quarantinePath, ".002.quarantine.csv") {
		t.Errorf("got quarantine path %q, want suffix .002.quarantine.csv", l.quarantinePath)
	}
}

func TestCSVStepLoggerLogWritesStepRow(t *testing.T) {
	base := filepath.Join(t.TempDir(), "run")
	l := NewCSVStepLogger(base, 0)
	summary := StepSummary{Step: 3, Date: "2024-01-04", Susceptible: 1, Infected: 2, Exposed: 0, Resistant: 0, Died: 0, Outside: 1}
	if err := l.Log(summary); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(l.stepPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(got), "3,2024-01-04,") {
		t.Errorf("got %q, missing the expected step/date prefix", got)
	}
}

func TestCSVStepLoggerLogSkipsAbsentSpreadRateAndQuarantine(t *testing.T) {
	base := filepath.Join(t.TempDir(), "run")
	l := NewCSVStepLogger(base, 0)
	if err := l.Log(StepSummary{Step: 0, Date: "2024-01-01"}); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(l.spreadRatePath); err == nil {
		t.Error("spread_rate.csv should not be created when SpreadRate is nil")
	}
	if _, err := os.Stat(l.quarantinePath); err == nil {
		t.Error("quarantine.csv should not be created when Quarantine is empty")
	}
}

func TestCSVStepLoggerLogWritesSpreadRateAndQuarantineWhenPresent(t *testing.T) {
	base := filepath.Join(t.TempDir(), "run")
	l := NewCSVStepLogger(base, 0)
	sr := SpreadRate{North: 1, South: 2, East: 3, West: 4}
	summary := StepSummary{
		Step: 1, Date: "2024-01-02",
		SpreadRate: &sr,
		Quarantine: []QuarantineEscapeRecord{{Escaped: true, Dir: QuarantineN}},
	}
	if err := l.Log(summary); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(l.spreadRatePath); err != nil {
		t.Error("expected spread_rate.csv to be created")
	}
	if _, err := os.Stat(l.quarantinePath); err != nil {
		t.Error("expected quarantine.csv to be created")
	}
}

func TestCSVStepLoggerLogOutsideDispersersSkipsEmpty(t *testing.T) {
	base := filepath.Join(t.TempDir(), "run")
	l := NewCSVStepLogger(base, 0)
	if err := l.LogOutsideDispersers(0, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(l.outsidePath); err == nil {
		t.Error("outside.csv should not be created for an empty cell list")
	}
}

func TestCSVStepLoggerLogOutsideDispersersWritesRows(t *testing.T) {
	base := filepath.Join(t.TempDir(), "run")
	l := NewCSVStepLogger(base, 0)
	if err := l.LogOutsideDispersers(5, []Cell{{Row: 1, Col: 2}, {Row: 3, Col: 4}}); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(l.outsidePath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(got), "5,1,2\n") || !strings.Contains(string(got), "5,3,4\n") {
		t.Errorf("got %q, missing expected rows", got)
	}
}
