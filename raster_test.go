package pops

import (
	"math"
	"testing"
)

func TestNewRasterFromRowsShapeMismatch(t *testing.T) {
	_, err := NewRasterFromRows([][]int{{1, 2}, {3}})
	if err == nil {
		t.Fatal("expected a shape mismatch error")
	}
	if e, ok := err.(*Error); !ok || e.Kind != KindShapeMismatch {
		t.Errorf("got %v, want KindShapeMismatch", err)
	}
}

func TestRasterAtSetAdd(t *testing.T) {
	r := NewRaster(2, 2, 0)
	r.Set(0, 1, 5)
	if got := r.At(0, 1); got != 5 {
		t.Errorf("got %d, want 5", got)
	}
	if got := r.Add(0, 1, 3); got != 8 {
		t.Errorf("got %d, want 8", got)
	}
	if got := r.At(0, 1); got != 8 {
		t.Errorf("got %d, want 8", got)
	}
}

func TestRasterDividedByZeroSentinel(t *testing.T) {
	a, _ := NewRasterFromRows([][]int{{10, 10}})
	b, _ := NewRasterFromRows([][]int{{2, 0}})
	q, err := a.DividedBy(b)
	if err != nil {
		t.Fatal(err)
	}
	if got := q.At(0, 0); got != 5 {
		t.Errorf("got %d, want 5", got)
	}
	if got := q.At(0, 1); got != 0 {
		t.Errorf("int divide by zero sentinel: got %d, want 0", got)
	}

	fa, _ := NewRasterFromRows([][]float64{{10, 10}})
	fb, _ := NewRasterFromRows([][]float64{{2, 0}})
	fq, err := fa.DividedBy(fb)
	if err != nil {
		t.Fatal(err)
	}
	if !math.IsNaN(fq.At(0, 1)) {
		t.Errorf("float divide by zero sentinel: got %v, want NaN", fq.At(0, 1))
	}
}

func TestRasterPlusMinusTimesShapeMismatch(t *testing.T) {
	a := NewRaster(2, 2, 1)
	b := NewRaster(3, 3, 1)
	if _, err := a.Plus(b); err == nil {
		t.Fatal("expected shape mismatch on Plus")
	}
	if _, err := a.Minus(b); err == nil {
		t.Fatal("expected shape mismatch on Minus")
	}
	if _, err := a.Times(b); err == nil {
		t.Fatal("expected shape mismatch on Times")
	}
}

func TestRasterEqualAndClone(t *testing.T) {
	a, _ := NewRasterFromRows([][]int{{1, 2}, {3, 4}})
	b := a.Clone()
	if !a.Equal(b) {
		t.Fatal("clone should be equal to original")
	}
	b.Set(0, 0, 99)
	if a.Equal(b) {
		t.Fatal("mutating the clone should not affect the original")
	}
	if a.At(0, 0) != 1 {
		t.Errorf("original mutated: got %d, want 1", a.At(0, 0))
	}
}

func TestRasterFillAndForEach(t *testing.T) {
	r := NewRaster(2, 2, 0)
	r.Fill(7)
	count := 0
	r.ForEach(func(row, col int, v int) {
		count++
		if v != 7 {
			t.Errorf("(%d,%d) = %d, want 7", row, col, v)
		}
	})
	if count != 4 {
		t.Errorf("visited %d cells, want 4", count)
	}
}
