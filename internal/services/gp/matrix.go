package gp

import (
	"errors"
	"fmt"
)

// ErrSingularMatrix is returned when Gauss-Jordan elimination finds no
// usable pivot. Callers must treat the whole evaluation as failed rather
// than use a partially inverted matrix.
var ErrSingularMatrix = errors.New("gp: singular matrix")

// Matrix is a dense row-major float64 matrix.
type Matrix struct {
	rows, cols int
	data       []float64
}

// NewMatrix allocates a zeroed rows x cols matrix.
func NewMatrix(rows, cols int) *Matrix {
	return &Matrix{rows: rows, cols: cols, data: make([]float64, rows*cols)}
}

// Identity builds an n x n identity matrix.
func Identity(n int) *Matrix {
	m := NewMatrix(n, n)
	for i := 0; i < n; i++ {
		m.data[i*n+i] = 1
	}
	return m
}

// Rows returns the row count.
func (m *Matrix) Rows() int { return m.rows }

// Cols returns the column count.
func (m *Matrix) Cols() int { return m.cols }

// At returns the element at (r, c).
func (m *Matrix) At(r, c int) float64 { return m.data[r*m.cols+c] }

// Set assigns the element at (r, c).
func (m *Matrix) Set(r, c int, v float64) { m.data[r*m.cols+c] = v }

// Clone returns a deep copy.
func (m *Matrix) Clone() *Matrix {
	out := NewMatrix(m.rows, m.cols)
	copy(out.data, m.data)
	return out
}

// Mul returns m * other.
func (m *Matrix) Mul(other *Matrix) (*Matrix, error) {
	if m.cols != other.rows {
		return nil, fmt.Errorf("gp: dimension mismatch %dx%d * %dx%d", m.rows, m.cols, other.rows, other.cols)
	}
	out := NewMatrix(m.rows, other.cols)
	for i := 0; i < m.rows; i++ {
		for k := 0; k < m.cols; k++ {
			a := m.data[i*m.cols+k]
			if a == 0 {
				continue
			}
			for j := 0; j < other.cols; j++ {
				out.data[i*out.cols+j] += a * other.data[k*other.cols+j]
			}
		}
	}
	return out, nil
}

// MulVec returns m * v for a column vector v.
func (m *Matrix) MulVec(v []float64) ([]float64, error) {
	if m.cols != len(v) {
		return nil, fmt.Errorf("gp: dimension mismatch %dx%d * %d", m.rows, m.cols, len(v))
	}
	out := make([]float64, m.rows)
	for i := 0; i < m.rows; i++ {
		var sum float64
		for j := 0; j < m.cols; j++ {
			sum += m.data[i*m.cols+j] * v[j]
		}
		out[i] = sum
	}
	return out, nil
}

// Inverse inverts a square matrix by Gauss-Jordan elimination with partial
// pivoting via row swap. The pivoting order is part of the numeric contract:
// when the diagonal entry is zero the first nonzero entry below it is
// swapped in; if none exists the matrix is singular.
func (m *Matrix) Inverse() (*Matrix, error) {
	if m.rows != m.cols {
		return nil, fmt.Errorf("gp: cannot invert %dx%d matrix", m.rows, m.cols)
	}
	n := m.rows
	a := m.Clone()
	inv := Identity(n)

	for col := 0; col < n; col++ {
		// pivot selection: keep the diagonal if nonzero, otherwise swap up
		// the first nonzero row below it
		pivotRow := col
		if a.At(pivotRow, col) == 0 {
			found := false
			for r := col + 1; r < n; r++ {
				if a.At(r, col) != 0 {
					pivotRow = r
					found = true
					break
				}
			}
			if !found {
				return nil, ErrSingularMatrix
			}
		}
		if pivotRow != col {
			a.swapRows(col, pivotRow)
			inv.swapRows(col, pivotRow)
		}

		pivot := a.At(col, col)
		for j := 0; j < n; j++ {
			a.Set(col, j, a.At(col, j)/pivot)
			inv.Set(col, j, inv.At(col, j)/pivot)
		}

		for r := 0; r < n; r++ {
			if r == col {
				continue
			}
			factor := a.At(r, col)
			if factor == 0 {
				continue
			}
			for j := 0; j < n; j++ {
				a.Set(r, j, a.At(r, j)-factor*a.At(col, j))
				inv.Set(r, j, inv.At(r, j)-factor*inv.At(col, j))
			}
		}
	}
	return inv, nil
}

func (m *Matrix) swapRows(r1, r2 int) {
	for j := 0; j < m.cols; j++ {
		m.data[r1*m.cols+j], m.data[r2*m.cols+j] = m.data[r2*m.cols+j], m.data[r1*m.cols+j]
	}
}
