package pops

import (
	"path/filepath"
	"testing"
)

func TestNewSQLiteStepLoggerCreatesTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.sqlite")
	l, err := NewSQLiteStepLogger(path, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()

	var name string
	row := l.db.QueryRow("select name from sqlite_master where type='table' and name=?", l.tableName("Step"))
	if err := row.Scan(&name); err != nil {
		t.Fatalf("Step table was not created: %v", err)
	}
}

func TestSQLiteStepLoggerLogInsertsStepRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.sqlite")
	l, err := NewSQLiteStepLogger(path, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()

	if err := l.Log(StepSummary{Step: 2, Date: "2024-01-03", Susceptible: 5, Infected: 1}); err != nil {
		t.Fatal(err)
	}
	var step int
	var date string
	row := l.db.QueryRow("select step, date from "+l.tableName("Step")+" where step = ?", 2)
	if err := row.Scan(&step, &date); err != nil {
		t.Fatal(err)
	}
	if step != 2 || date != "2024-01-03" {
		t.Errorf("got (%d, %s), want (2, 2024-01-03)", step, date)
	}
}

func TestSQLiteStepLoggerLogInsertsSpreadRateAndQuarantineWhenPresent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.sqlite")
	l, err := NewSQLiteStepLogger(path, 1)
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()

	sr := SpreadRate{North: 1, South: 2, East: 3, West: 4}
	summary := StepSummary{
		Step: 0, Date: "2024-01-01",
		SpreadRate: &sr,
		Quarantine: []QuarantineEscapeRecord{{Escaped: true, Dir: QuarantineS}},
	}
	if err := l.Log(summary); err != nil {
		t.Fatal(err)
	}
	var count int
	if err := l.db.QueryRow("select count(*) from " + l.tableName("SpreadRate")).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("got %d SpreadRate rows, want 1", count)
	}
	if err := l.db.QueryRow("select count(*) from " + l.tableName("Quarantine")).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("got %d Quarantine rows, want 1", count)
	}
}

func TestSQLiteStepLoggerLogOutsideDispersers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.sqlite")
	l, err := NewSQLiteStepLogger(path, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()

	if err := l.LogOutsideDispersers(3, []Cell{{Row: 0, Col: 1}, {Row: 2, Col: 2}}); err != nil {
		t.Fatal(err)
	}
	var count int
	if err := l.db.QueryRow("select count(*) from " + l.tableName("OutsideDisperser") + " where step = 3").Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("got %d outside-disperser rows, want 2", count)
	}
}

func TestTableNameSuffixesInstanceID(t *testing.T) {
	l := &SQLiteStepLogger{instanceID: 7}
	if got := l.tableName("Step"); got != "Step007" {
		t.Errorf("got %q, want Step007", got)
	}
}
