package embedding

import "math"

// Dot computes the dot product of a and b with float64 accumulation.
// When the lengths differ, only the overlapping prefix is used; the
// extra dimensions are ignored rather than treated as an error.
func Dot(a, b Vector) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	// Four accumulators keep the loop pipelined without losing the
	// float64 precision of the running sums.
	var sum0, sum1, sum2, sum3 float64
	i := 0
	for ; i <= n-4; i += 4 {
		sum0 += float64(a[i]) * float64(b[i])
		sum1 += float64(a[i+1]) * float64(b[i+1])
		sum2 += float64(a[i+2]) * float64(b[i+2])
		sum3 += float64(a[i+3]) * float64(b[i+3])
	}
	for ; i < n; i++ {
		sum0 += float64(a[i]) * float64(b[i])
	}

	return sum0 + sum1 + sum2 + sum3
}

// Normalize returns a unit-length copy of v. A zero-magnitude vector is
// returned as an unchanged copy instead of dividing by zero.
func Normalize(v Vector) Vector {
	out := make(Vector, len(v))

	var sumSquares float64
	for _, x := range v {
		sumSquares += float64(x) * float64(x)
	}
	if sumSquares == 0 {
		copy(out, v)
		return out
	}

	inv := 1.0 / math.Sqrt(sumSquares)
	for i, x := range v {
		out[i] = float32(float64(x) * inv)
	}
	return out
}

// CosineSimilarity returns the cosine of the angle between a and b,
// between -1 and 1. Inputs need not be normalized.
func CosineSimilarity(a, b Vector) float64 {
	return Dot(Normalize(a), Normalize(b))
}
