package pops

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStepLogger persists per-step summaries to a SQLite database, one
// table per artifact suffixed with the run instance index, following the
// teacher's SQLiteLogger newTable-closure convention in Init.
type SQLiteStepLogger struct {
	path       string
	instanceID int

	db        *sql.DB
	stepStmt  *sql.Stmt
	srStmt    *sql.Stmt
	qStmt     *sql.Stmt
	outStmt   *sql.Stmt
}

// NewSQLiteStepLogger opens (creating if absent) the database at path and
// prepares its tables for run instance i.
func NewSQLiteStepLogger(path string, i int) (*SQLiteStepLogger, error) {
	l := &SQLiteStepLogger{path: path, instanceID: i}
	if err := l.init(); err != nil {
		return nil, err
	}
	return l, nil
}

func openSQLiteDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, wrapError(KindLogicState, "openSQLiteDB", err)
	}
	return db, nil
}

func (l *SQLiteStepLogger) tableName(base string) string {
	return fmt.Sprintf("%s%03d", base, l.instanceID)
}

// init creates one table per artifact, dropping any existing rows for
// this instance, exactly as the teacher's Init does for each genotype
// artifact database.
func (l *SQLiteStepLogger) init() error {
	db, err := openSQLiteDB(l.path)
	if err != nil {
		return err
	}
	l.db = db

	newTable := func(name, cols string) error {
		full := l.tableName(name)
		stmt := fmt.Sprintf("create table if not exists %s %s; delete from %s;", full, cols, full)
		if _, err := db.Exec(stmt); err != nil {
			return wrapError(KindLogicState, "SQLiteStepLogger.init", fmt.Errorf("%q: %s", err, stmt))
		}
		return nil
	}

	if err := newTable("Step", "(id integer not null primary key, step int, date text, susceptible real, infected real, exposed real, resistant real, died real, outside int)"); err != nil {
		return err
	}
	if err := newTable("SpreadRate", "(id integer not null primary key, step int, date text, north real, south real, east real, west real)"); err != nil {
		return err
	}
	if err := newTable("Quarantine", "(id integer not null primary key, step int, date text, direction int, escaped int, distance real)"); err != nil {
		return err
	}
	if err := newTable("OutsideDisperser", "(id integer not null primary key, step int, row int, col int)"); err != nil {
		return err
	}

	l.stepStmt, err = db.Prepare("insert into " + l.tableName("Step") + "(step, date, susceptible, infected, exposed, resistant, died, outside) values(?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return wrapError(KindLogicState, "SQLiteStepLogger.init", err)
	}
	l.srStmt, err = db.Prepare("insert into " + l.tableName("SpreadRate") + "(step, date, north, south, east, west) values(?, ?, ?, ?, ?, ?)")
	if err != nil {
		return wrapError(KindLogicState, "SQLiteStepLogger.init", err)
	}
	l.qStmt, err = db.Prepare("insert into " + l.tableName("Quarantine") + "(step, date, direction, escaped, distance) values(?, ?, ?, ?, ?)")
	if err != nil {
		return wrapError(KindLogicState, "SQLiteStepLogger.init", err)
	}
	l.outStmt, err = db.Prepare("insert into " + l.tableName("OutsideDisperser") + "(step, row, col) values(?, ?, ?)")
	if err != nil {
		return wrapError(KindLogicState, "SQLiteStepLogger.init", err)
	}
	return nil
}

// Log inserts one row into Step, and into SpreadRate/Quarantine when this
// step carries those readings.
func (l *SQLiteStepLogger) Log(s StepSummary) error {
	if _, err := l.stepStmt.Exec(s.Step, s.Date, s.Susceptible, s.Infected, s.Exposed, s.Resistant, s.Died, s.Outside); err != nil {
		return wrapError(KindLogicState, "SQLiteStepLogger.Log", err)
	}
	if s.SpreadRate != nil {
		sr := s.SpreadRate
		if _, err := l.srStmt.Exec(s.Step, s.Date, sr.North, sr.South, sr.East, sr.West); err != nil {
			return wrapError(KindLogicState, "SQLiteStepLogger.Log", err)
		}
	}
	for _, rec := range s.Quarantine {
		escaped := 0
		if rec.Escaped {
			escaped = 1
		}
		if _, err := l.qStmt.Exec(s.Step, s.Date, int(rec.Dir), escaped, rec.Distance); err != nil {
			return wrapError(KindLogicState, "SQLiteStepLogger.Log", err)
		}
	}
	return nil
}

// LogOutsideDispersers inserts one row per off-grid disperser cell.
func (l *SQLiteStepLogger) LogOutsideDispersers(step int, cells []Cell) error {
	for _, c := range cells {
		if _, err := l.outStmt.Exec(step, c.Row, c.Col); err != nil {
			return wrapError(KindLogicState, "SQLiteStepLogger.LogOutsideDispersers", err)
		}
	}
	return nil
}

// Close releases the prepared statements and the database handle.
func (l *SQLiteStepLogger) Close() error {
	for _, stmt := range []*sql.Stmt{l.stepStmt, l.srStmt, l.qStmt, l.outStmt} {
		if stmt != nil {
			stmt.Close()
		}
	}
	if l.db != nil {
		return l.db.Close()
	}
	return nil
}
