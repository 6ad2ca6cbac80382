package gp

import (
	"errors"
	"math"
	"testing"
)

func TestInverseRoundTrip(t *testing.T) {
	// Regularized RBF kernel, the exact shape the detector inverts.
	n := 30
	l := float64(n)
	k := NewMatrix(n, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := rbf(float64(i), float64(j), l)
			if i == j {
				v += 0.125 * 0.125
			}
			k.Set(i, j, v)
		}
	}

	inv, err := k.Inverse()
	if err != nil {
		t.Fatalf("inverse: %v", err)
	}
	prod, err := k.Mul(inv)
	if err != nil {
		t.Fatalf("mul: %v", err)
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			want := 0.0
			if i == j {
				want = 1.0
			}
			if math.Abs(prod.At(i, j)-want) > 1e-6 {
				t.Fatalf("K*K^-1 not identity at (%d,%d): %v", i, j, prod.At(i, j))
			}
		}
	}
}

func TestInverseSingular(t *testing.T) {
	m := NewMatrix(2, 2)
	m.Set(0, 0, 1)
	m.Set(0, 1, 1)
	m.Set(1, 0, 1)
	m.Set(1, 1, 1)
	if _, err := m.Inverse(); !errors.Is(err, ErrSingularMatrix) {
		t.Fatalf("expected ErrSingularMatrix, got %v", err)
	}
}

func TestInversePivotSwap(t *testing.T) {
	// Zero on the diagonal forces the row-swap pivot path.
	m := NewMatrix(2, 2)
	m.Set(0, 1, 1)
	m.Set(1, 0, 1)
	inv, err := m.Inverse()
	if err != nil {
		t.Fatalf("inverse: %v", err)
	}
	if inv.At(0, 1) != 1 || inv.At(1, 0) != 1 || inv.At(0, 0) != 0 || inv.At(1, 1) != 0 {
		t.Fatalf("permutation matrix should invert to itself")
	}
}

func TestMulDimensionMismatch(t *testing.T) {
	a := NewMatrix(2, 3)
	b := NewMatrix(2, 3)
	if _, err := a.Mul(b); err == nil {
		t.Fatalf("expected dimension error")
	}
}
