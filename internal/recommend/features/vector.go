// CineCompass - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecompass

package features

import "math"

// SparseVector is a sparse row over a Vocabulary.
// Indices are strictly increasing and aligned with Values.
type SparseVector struct {
	Indices []int
	Values  []float64
}

// Len returns the number of non-zero entries.
func (v SparseVector) Len() int { return len(v.Indices) }

// IsZero reports whether the vector has no non-zero entries.
func (v SparseVector) IsZero() bool {
	for _, x := range v.Values {
		if x != 0 {
			return false
		}
	}
	return true
}

// Dot returns the inner product with o.
func (v SparseVector) Dot(o SparseVector) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(v.Indices) && j < len(o.Indices) {
		switch {
		case v.Indices[i] == o.Indices[j]:
			sum += v.Values[i] * o.Values[j]
			i++
			j++
		case v.Indices[i] < o.Indices[j]:
			i++
		default:
			j++
		}
	}
	return sum
}

// Norm returns the L2 norm.
func (v SparseVector) Norm() float64 {
	var sum float64
	for _, x := range v.Values {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// AddTo accumulates w*v into the dense slice dst.
func (v SparseVector) AddTo(dst []float64, w float64) {
	for k, idx := range v.Indices {
		dst[idx] += w * v.Values[k]
	}
}

// FromDense compresses d into a SparseVector, dropping zeros.
func FromDense(d []float64) SparseVector {
	var v SparseVector
	for i, x := range d {
		if x != 0 {
			v.Indices = append(v.Indices, i)
			v.Values = append(v.Values, x)
		}
	}
	return v
}

// Normalized returns v scaled to unit L2 norm, or v unchanged when zero.
func (v SparseVector) Normalized() SparseVector {
	n := v.Norm()
	if n == 0 {
		return v
	}
	out := SparseVector{Indices: v.Indices, Values: make([]float64, len(v.Values))}
	for i, x := range v.Values {
		out.Values[i] = x / n
	}
	return out
}
