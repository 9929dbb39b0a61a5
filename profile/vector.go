package profile

import (
	"math"

	"github.com/cespare/xxhash/v2"
)

// DefaultVectorDim is the width of coauthor vectors stored for similarity
// search.
const DefaultVectorDim = 256

// CoauthorVector hashes the coauthor names into a dim-wide signed
// incidence vector and L2-normalizes it. Names are compared by their
// NormalizeName key, so spelling variants land in the same bucket. With no
// names the zero vector is returned.
func CoauthorVector(names []string, dim int) []float32 {
	if dim <= 0 {
		dim = DefaultVectorDim
	}
	vec := make([]float32, dim)
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		key := NormalizeName(n)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		h := xxhash.Sum64String(key)
		v := float32(1)
		if h>>63 == 1 {
			v = -1
		}
		vec[h%uint64(dim)] += v
	}

	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return vec
	}
	inv := float32(1 / math.Sqrt(sum))
	for i := range vec {
		vec[i] *= inv
	}
	return vec
}
