package pops

import (
	"bytes"
	"fmt"
	"os"
	"strings"
)

// CSVStepLogger writes per-step summaries as comma-delimited files,
// one file per run instance, following the teacher's CSVLogger
// SetBasePath/AppendToFile convention.
type CSVStepLogger struct {
	stepPath       string
	outsidePath    string
	spreadRatePath string
	quarantinePath string
}

// NewCSVStepLogger derives every output path from basepath for instance i.
func NewCSVStepLogger(basepath string, i int) *CSVStepLogger {
	l := new(CSVStepLogger)
	l.SetBasePath(basepath, i)
	return l
}

// SetBasePath derives the per-artifact file paths from basepath, suffixing
// each with the run instance index and an artifact tag.
func (l *CSVStepLogger) SetBasePath(basepath string, i int) {
	if info, err := os.Stat(basepath); err == nil && info.IsDir() {
		basepath += fmt.Sprintf("run.%03d", i)
	}
	trimmed := strings.TrimSuffix(basepath, ".")
	l.stepPath = trimmed + fmt.Sprintf(".%03d.%s.csv", i, "steps")
	l.outsidePath = trimmed + fmt.Sprintf(".%03d.%s.csv", i, "outside")
	l.spreadRatePath = trimmed + fmt.Sprintf(".%03d.%s.csv", i, "spread_rate")
	l.quarantinePath = trimmed + fmt.Sprintf(".%03d.%s.csv", i, "quarantine")
}

// Log appends one row per artifact table this step contributes to.
func (l *CSVStepLogger) Log(s StepSummary) error {
	const stepTemplate = "%d,%s,%f,%f,%f,%f,%f,%d\n"
	var stepBuf bytes.Buffer
	stepBuf.WriteString(fmt.Sprintf(stepTemplate,
		s.Step, s.Date, s.Susceptible, s.Infected, s.Exposed, s.Resistant, s.Died, s.Outside))
	if err := AppendToFile(l.stepPath, stepBuf.Bytes()); err != nil {
		return err
	}

	if s.SpreadRate != nil {
		const srTemplate = "%d,%s,%f,%f,%f,%f\n"
		var srBuf bytes.Buffer
		srBuf.WriteString(fmt.Sprintf(srTemplate,
			s.Step, s.Date, s.SpreadRate.North, s.SpreadRate.South, s.SpreadRate.East, s.SpreadRate.West))
		if err := AppendToFile(l.spreadRatePath, srBuf.Bytes()); err != nil {
			return err
		}
	}

	if len(s.Quarantine) > 0 {
		const qTemplate = "%d,%s,%d,%t,%f\n"
		var qBuf bytes.Buffer
		for _, rec := range s.Quarantine {
			qBuf.WriteString(fmt.Sprintf(qTemplate, s.Step, s.Date, int(rec.Dir), rec.Escaped, rec.Distance))
		}
		if err := AppendToFile(l.quarantinePath, qBuf.Bytes()); err != nil {
			return err
		}
	}

	return nil
}

// Close is a no-op: AppendToFile opens and closes the destination file on
// every write, matching the teacher's CSVLogger.
func (l *CSVStepLogger) Close() error { return nil }

// LogOutsideDispersers appends one row per off-grid disperser observed so
// far; called separately from Log since outside dispersers accumulate
// across the whole run rather than resetting each step.
func (l *CSVStepLogger) LogOutsideDispersers(step int, cells []Cell) error {
	if len(cells) == 0 {
		return nil
	}
	const template = "%d,%d,%d\n"
	var b bytes.Buffer
	for _, c := range cells {
		b.WriteString(fmt.Sprintf(template, step, c.Row, c.Col))
	}
	return AppendToFile(l.outsidePath, b.Bytes())
}

// AppendToFile opens path for append (creating it if necessary), writes b,
// and fsyncs before closing, matching the teacher's AppendToFile helper.
func AppendToFile(path string, b []byte) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return wrapError(KindLogicState, "AppendToFile", err)
	}
	defer f.Close()

	if _, err := f.Write(b); err != nil {
		return wrapError(KindLogicState, "AppendToFile", err)
	}
	return f.Sync()
}
