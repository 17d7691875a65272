package grouping

import (
	"github.com/thebtf/grouper/pkg/embedding"
)

// Node is one embedded item tracked by a Grouper. Value is an opaque
// payload carried through clustering untouched. Identity is the pointer
// itself: the *Node handed to AddNode is the handle used for RemoveNode
// and GetClusterForNode.
type Node[T any] struct {
	Value     T
	Embedding embedding.Embedding
}

// NewNode wraps a payload and its embedding into a Node.
func NewNode[T any](value T, emb embedding.Embedding) *Node[T] {
	return &Node[T]{Value: value, Embedding: emb}
}

// Cluster is a snapshot of one group of nodes. The engine never mutates
// a Cluster in place; any membership change produces a replacement value
// under the same ID.
type Cluster[T any] struct {
	ID       string
	Nodes    []*Node[T]
	Centroid embedding.Vector
}

// clone returns a copy whose Nodes and Centroid slices are detached from
// engine state.
func (c *Cluster[T]) clone() *Cluster[T] {
	nodes := make([]*Node[T], len(c.Nodes))
	copy(nodes, c.Nodes)
	centroid := make(embedding.Vector, len(c.Centroid))
	copy(centroid, c.Centroid)
	return &Cluster[T]{ID: c.ID, Nodes: nodes, Centroid: centroid}
}

// centroidOf returns the unit-normalized arithmetic mean of the raw
// member embeddings. Dimensionality follows the first member; shorter
// members contribute only the dimensions they have.
func centroidOf[T any](nodes []*Node[T]) embedding.Vector {
	if len(nodes) == 0 {
		return nil
	}

	dims := len(nodes[0].Embedding.Value)
	sums := make([]float64, dims)
	for _, n := range nodes {
		v := n.Embedding.Value
		limit := dims
		if len(v) < limit {
			limit = len(v)
		}
		for i := 0; i < limit; i++ {
			sums[i] += float64(v[i])
		}
	}

	mean := make(embedding.Vector, dims)
	inv := 1.0 / float64(len(nodes))
	for i, s := range sums {
		mean[i] = float32(s * inv)
	}
	return embedding.Normalize(mean)
}
