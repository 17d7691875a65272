// Package synthetic generates labeled embedding fixtures for exercising
// the grouping engine.
package synthetic

import (
	"math/rand"

	"github.com/thebtf/grouper/pkg/embedding"
)

// Config controls blob generation. Zero-valued fields fall back to the
// Default values.
type Config struct {
	Dims         int
	Blobs        int
	NodesPerBlob int
	// Noise is the standard deviation of the gaussian jitter added to
	// every dimension of a blob center.
	Noise float64
	Seed  int64
}

// Default returns the generation parameters used for zero-valued fields.
func Default() Config {
	return Config{
		Dims:         64,
		Blobs:        4,
		NodesPerBlob: 50,
		Noise:        0.05,
		Seed:         1,
	}
}

func (c Config) withDefaults() Config {
	def := Default()
	if c.Dims <= 0 {
		c.Dims = def.Dims
	}
	if c.Blobs <= 0 {
		c.Blobs = def.Blobs
	}
	if c.NodesPerBlob <= 0 {
		c.NodesPerBlob = def.NodesPerBlob
	}
	if c.Noise <= 0 {
		c.Noise = def.Noise
	}
	if c.Seed == 0 {
		c.Seed = def.Seed
	}
	return c
}

// Point is one generated vector together with the blob it was drawn from.
// The blob label is ground truth for measuring clustering quality.
type Point struct {
	Blob   int
	Vector embedding.Vector
}

// Blobs draws NodesPerBlob points around each of Blobs centers, in blob
// order. The same Config always yields the same points.
func Blobs(cfg Config) []Point {
	cfg = cfg.withDefaults()
	rng := rand.New(rand.NewSource(cfg.Seed))

	centers := make([]embedding.Vector, cfg.Blobs)
	for b := range centers {
		centers[b] = blobCenter(rng, b, cfg.Dims)
	}

	points := make([]Point, 0, cfg.Blobs*cfg.NodesPerBlob)
	for b, center := range centers {
		for i := 0; i < cfg.NodesPerBlob; i++ {
			v := make(embedding.Vector, cfg.Dims)
			for d := range v {
				v[d] = center[d] + float32(rng.NormFloat64()*cfg.Noise)
			}
			points = append(points, Point{Blob: b, Vector: v})
		}
	}
	return points
}

// blobCenter places the first centers on unit axes, which keeps small
// configurations exactly orthogonal; centers beyond the dimensionality
// fall back to random unit directions.
func blobCenter(rng *rand.Rand, blob, dims int) embedding.Vector {
	v := make(embedding.Vector, dims)
	if blob < dims {
		v[blob] = 1
		return v
	}
	for d := range v {
		v[d] = float32(rng.NormFloat64())
	}
	return embedding.Normalize(v)
}
