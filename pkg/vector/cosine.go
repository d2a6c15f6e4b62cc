package vector

import "math"

// Cosine returns the cosine similarity of two vectors: their dot product
// divided by the product of their norms. If either vector has zero norm the
// similarity is defined as 0.0 rather than NaN. Vectors of different lengths
// are compared over the shorter prefix.
func Cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
