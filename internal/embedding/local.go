package embedding

import (
	"context"
	"hash/fnv"
	"math"
)

// LocalBackend is a deterministic, dependency-free Embedder: it hashes byte
// 3-grams into a fixed-size vector and L2-normalizes the result. It is
// always available (no network, no model weights) and is the default when
// config.MemoryConfig.EmbeddingProvider is unset.
type LocalBackend struct {
	dim int
}

// NewLocalBackend constructs a LocalBackend producing Dim-length vectors.
func NewLocalBackend() *LocalBackend {
	return &LocalBackend{dim: Dim}
}

func (l *LocalBackend) Name() string { return "local-hash" }

func (l *LocalBackend) EmbedOne(_ context.Context, text string) (Vec, error) {
	return l.embed(text), nil
}

func (l *LocalBackend) EmbedMany(_ context.Context, texts []string) ([]Vec, error) {
	out := make([]Vec, len(texts))
	for i, t := range texts {
		out[i] = l.embed(t)
	}
	return out, nil
}

func (l *LocalBackend) embed(s string) Vec {
	v := make(Vec, l.dim)
	if len(s) == 0 {
		return v
	}
	b := []byte(s)
	if len(b) < 3 {
		hashInto(b, v)
	} else {
		for i := 0; i <= len(b)-3; i++ {
			hashInto(b[i:i+3], v)
		}
	}
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum > 0 {
		inv := float32(1.0 / math.Sqrt(sum))
		for i := range v {
			v[i] *= inv
		}
	}
	return v
}

func hashInto(gram []byte, v []float32) {
	h := fnv.New64a()
	_, _ = h.Write(gram)
	hv := h.Sum64()
	idx := int(hv % uint64(len(v)))
	w := float32(int32(hv>>32)) / float32(1<<31)
	v[idx] += w
}
