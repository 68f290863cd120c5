package pops

import "math"

// Number is the set of element types a Raster can hold: integer host/pest
// counts, or floating point coefficients (weather, survival rate, ...).
type Number interface {
	~int | ~float64
}

// Raster is a dense, row-major rows x cols grid of numeric cells. Its shape
// is immutable after construction; individual cell values mutate freely.
// Division by zero is not a trapped error: it returns a defined sentinel
// (zero for integer rasters, NaN for floating point rasters) so that
// callers explicitly guard cells where the denominator raster is zero,
// exactly as HostPool guards total_population == 0 before computing an
// establishment probability.
type Raster[T Number] struct {
	rows, cols int
	data       []T
}

// NewRaster allocates a rows x cols raster with every cell set to fill.
func NewRaster[T Number](rows, cols int, fill T) *Raster[T] {
	data := make([]T, rows*cols)
	if fill != 0 {
		for i := range data {
			data[i] = fill
		}
	}
	return &Raster[T]{rows: rows, cols: cols, data: data}
}

// NewRasterFromRows builds a raster from nested literal rows, e.g. the
// {{16, 0}, {0, 0}} notation used throughout the reference test scenarios.
// Every row must have the same length or an *Error of KindShapeMismatch is
// returned.
func NewRasterFromRows[T Number](rows [][]T) (*Raster[T], error) {
	if len(rows) == 0 {
		return &Raster[T]{}, nil
	}
	cols := len(rows[0])
	data := make([]T, 0, len(rows)*cols)
	for i, row := range rows {
		if len(row) != cols {
			return nil, newError(KindShapeMismatch, "NewRasterFromRows",
				"row %d has %d columns, expected %d", i, len(row), cols)
		}
		data = append(data, row...)
	}
	return &Raster[T]{rows: len(rows), cols: cols, data: data}, nil
}

// Dims returns the (rows, cols) of the raster.
func (r *Raster[T]) Dims() (int, int) {
	return r.rows, r.cols
}

func (r *Raster[T]) index(row, col int) int {
	return row*r.cols + col
}

// At returns the value at (row, col). It panics on an out-of-bounds index,
// matching plain slice-indexing semantics; callers that admit off-grid
// indices must check Cell.IsOutside first.
func (r *Raster[T]) At(row, col int) T {
	return r.data[r.index(row, col)]
}

// Set assigns the value at (row, col).
func (r *Raster[T]) Set(row, col int, v T) {
	r.data[r.index(row, col)] = v
}

// Add increments the cell at (row, col) by delta and returns the new value.
func (r *Raster[T]) Add(row, col int, delta T) T {
	i := r.index(row, col)
	r.data[i] += delta
	return r.data[i]
}

func (r *Raster[T]) sameShape(other *Raster[T]) bool {
	return r.rows == other.rows && r.cols == other.cols
}

func elementWise[T Number](op string, a, b *Raster[T], f func(a, b T) T) (*Raster[T], error) {
	if !a.sameShape(b) {
		return nil, newError(KindShapeMismatch, op,
			"shape (%d,%d) does not match (%d,%d)", a.rows, a.cols, b.rows, b.cols)
	}
	out := &Raster[T]{rows: a.rows, cols: a.cols, data: make([]T, len(a.data))}
	for i := range a.data {
		out.data[i] = f(a.data[i], b.data[i])
	}
	return out, nil
}

// Plus returns the element-wise sum of r and other.
func (r *Raster[T]) Plus(other *Raster[T]) (*Raster[T], error) {
	return elementWise("Raster.Plus", r, other, func(a, b T) T { return a + b })
}

// Minus returns the element-wise difference r - other.
func (r *Raster[T]) Minus(other *Raster[T]) (*Raster[T], error) {
	return elementWise("Raster.Minus", r, other, func(a, b T) T { return a - b })
}

// Times returns the element-wise product of r and other.
func (r *Raster[T]) Times(other *Raster[T]) (*Raster[T], error) {
	return elementWise("Raster.Times", r, other, func(a, b T) T { return a * b })
}

// divSentinel is the value returned for x/0 in place of raising.
func divSentinel[T Number]() T {
	var zero T
	switch any(zero).(type) {
	case float64:
		return any(math.NaN()).(T)
	default:
		return zero
	}
}

// DividedBy returns the element-wise quotient r / other. Cells where other
// is zero receive the type's divide-by-zero sentinel rather than raising.
func (r *Raster[T]) DividedBy(other *Raster[T]) (*Raster[T], error) {
	return elementWise("Raster.DividedBy", r, other, func(a, b T) T {
		if b == 0 {
			return divSentinel[T]()
		}
		return a / b
	})
}

// AddScalar returns r with v added to every cell.
func (r *Raster[T]) AddScalar(v T) *Raster[T] {
	out := &Raster[T]{rows: r.rows, cols: r.cols, data: make([]T, len(r.data))}
	for i, x := range r.data {
		out.data[i] = x + v
	}
	return out
}

// MulScalar returns r with every cell multiplied by v.
func (r *Raster[T]) MulScalar(v T) *Raster[T] {
	out := &Raster[T]{rows: r.rows, cols: r.cols, data: make([]T, len(r.data))}
	for i, x := range r.data {
		out.data[i] = x * v
	}
	return out
}

// Equal reports whether r and other have the same shape and cell values.
func (r *Raster[T]) Equal(other *Raster[T]) bool {
	if other == nil || !r.sameShape(other) {
		return false
	}
	for i := range r.data {
		if r.data[i] != other.data[i] {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of r.
func (r *Raster[T]) Clone() *Raster[T] {
	data := make([]T, len(r.data))
	copy(data, r.data)
	return &Raster[T]{rows: r.rows, cols: r.cols, data: data}
}

// Fill overwrites every cell with v.
func (r *Raster[T]) Fill(v T) {
	for i := range r.data {
		r.data[i] = v
	}
}

// ForEach visits every (row, col, value) in row-major order.
func (r *Raster[T]) ForEach(f func(row, col int, v T)) {
	for row := 0; row < r.rows; row++ {
		for col := 0; col < r.cols; col++ {
			f(row, col, r.data[r.index(row, col)])
		}
	}
}
