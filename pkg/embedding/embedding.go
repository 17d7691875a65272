// Package embedding defines embedding vector types and the vector math
// used by the grouping engine.
package embedding

// Type identifies the model or scheme that produced a vector, e.g.
// "text-embedding-3-small". The engine never interprets it; it travels
// with the vector so callers can keep mixed sources apart.
type Type string

// Vector is a dense embedding vector. All vectors handled by one grouper
// are expected to share a dimensionality; this is not validated (see Dot).
type Vector []float32

// Embedding pairs a vector with the type tag of the scheme that produced it.
type Embedding struct {
	Type  Type   `json:"type"`
	Value Vector `json:"value"`
}
