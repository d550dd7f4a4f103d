package quantization

import (
	"fmt"

	"github.com/hupe1980/vecflow/distance"
)

// ProductQuantizer encodes vectors against a trained PQ codebook.
//
// The codebook is flat, laid out as [M][K][D/M] with K = 2^numBits, and is
// addressed with SubVectorCentroids. Codes are one byte per sub-vector.
//
// Example: 128-dim vector with M=8 subvectors → 8 uint8 codes = 8 bytes (64x compression vs float32)
type ProductQuantizer struct {
	numSubVectors int  // M: number of subvectors
	numBits       uint // bits per code, K = 2^numBits
	dimension     int  // D: original vector dimension
	subvectorDim  int  // D/M: dimensions per subvector
	codebook      []float32
	metric        distance.Metric
	dist          distance.Func
}

// NewProductQuantizer creates a quantizer over codebook.
// Parameters:
//   - codebook: NumCentroids(numBits)*dimension values, [M][K][D/M]
//   - dimension: Vector dimensionality (must be divisible by numSubVectors)
//   - numSubVectors: Number of subvectors (M, typically 8, 16, or 32)
//   - numBits: Bits per code, 1 to 8
func NewProductQuantizer(codebook []float32, dimension, numSubVectors int, numBits uint, metric distance.Metric) (*ProductQuantizer, error) {
	if numSubVectors <= 0 || dimension <= 0 || dimension%numSubVectors != 0 {
		return nil, &InvalidSubvectorCountError{Dimension: dimension, NumSubVectors: numSubVectors}
	}
	if numBits == 0 || numBits > 8 {
		return nil, fmt.Errorf("%w: num_bits must be in [1, 8] for uint8 codes, got %d", ErrInvalidInput, numBits)
	}
	if want := NumCentroids(numBits) * dimension; len(codebook) != want {
		return nil, fmt.Errorf("%w: codebook has %d values, want %d", ErrInvalidInput, len(codebook), want)
	}

	dist, err := distance.Provider(metric)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	return &ProductQuantizer{
		numSubVectors: numSubVectors,
		numBits:       numBits,
		dimension:     dimension,
		subvectorDim:  dimension / numSubVectors,
		codebook:      codebook,
		metric:        metric,
		dist:          dist,
	}, nil
}

// NumSubVectors returns M.
func (pq *ProductQuantizer) NumSubVectors() int { return pq.numSubVectors }

// NumCentroids returns K.
func (pq *ProductQuantizer) NumCentroids() int { return NumCentroids(pq.numBits) }

// Dimension returns D.
func (pq *ProductQuantizer) Dimension() int { return pq.dimension }

// Metric returns the distance metric.
func (pq *ProductQuantizer) Metric() distance.Metric { return pq.metric }

func (pq *ProductQuantizer) centroids(m int) []float32 {
	return SubVectorCentroids(pq.codebook, pq.numBits, pq.dimension, pq.numSubVectors, m)
}

// nearest returns the index of the centroid closest to sub.
func (pq *ProductQuantizer) nearest(sub, centroids []float32) byte {
	best, bestDist := 0, pq.dist(sub, centroids[:pq.subvectorDim])
	for c := 1; c < len(centroids)/pq.subvectorDim; c++ {
		if d := pq.dist(sub, centroids[c*pq.subvectorDim:(c+1)*pq.subvectorDim]); d < bestDist {
			best, bestDist = c, d
		}
	}
	return byte(best)
}

// Encode quantizes a vector into PQ codes.
// Returns M uint8 codes (one per subvector).
func (pq *ProductQuantizer) Encode(vec []float32) ([]byte, error) {
	if err := pq.checkDimension(vec); err != nil {
		return nil, err
	}

	codes := make([]byte, pq.numSubVectors)
	for m := range pq.numSubVectors {
		start := m * pq.subvectorDim
		codes[m] = pq.nearest(vec[start:start+pq.subvectorDim], pq.centroids(m))
	}
	return codes, nil
}

// EncodeBatch quantizes a row-major batch of vectors. The result holds M
// codes per vector, in input order.
func (pq *ProductQuantizer) EncodeBatch(values []float32) ([]byte, error) {
	subs, err := DivideToSubvectors(values, pq.dimension, pq.numSubVectors)
	if err != nil {
		return nil, err
	}

	n := len(values) / pq.dimension
	codes := make([]byte, n*pq.numSubVectors)
	for m, sub := range subs {
		centroids := pq.centroids(m)
		for i := range n {
			codes[i*pq.numSubVectors+m] = pq.nearest(sub[i*pq.subvectorDim:(i+1)*pq.subvectorDim], centroids)
		}
	}
	return codes, nil
}

// Decode reconstructs an approximate vector from PQ codes.
func (pq *ProductQuantizer) Decode(codes []byte) ([]float32, error) {
	if err := pq.checkCodes(codes); err != nil {
		return nil, err
	}

	reconstructed := make([]float32, pq.dimension)
	for m, code := range codes {
		c := int(code) * pq.subvectorDim
		copy(reconstructed[m*pq.subvectorDim:], pq.centroids(m)[c:c+pq.subvectorDim])
	}
	return reconstructed, nil
}

// DistanceTable computes the distance from every query sub-vector to every
// centroid of its sub-vector codebook, laid out as [M][K].
func (pq *ProductQuantizer) DistanceTable(query []float32) ([]float32, error) {
	if err := pq.checkDimension(query); err != nil {
		return nil, err
	}

	k := pq.NumCentroids()
	table := make([]float32, pq.numSubVectors*k)
	for m := range pq.numSubVectors {
		sub := query[m*pq.subvectorDim : (m+1)*pq.subvectorDim]
		centroids := pq.centroids(m)
		for c := range k {
			table[m*k+c] = pq.dist(sub, centroids[c*pq.subvectorDim:(c+1)*pq.subvectorDim])
		}
	}
	return table, nil
}

// TableDistance sums the distance table entries selected by codes. table
// must come from DistanceTable and codes must hold M codes.
func (pq *ProductQuantizer) TableDistance(table []float32, codes []byte) float32 {
	k := pq.NumCentroids()

	var d float32
	for m, code := range codes {
		d += table[m*k+int(code)]
	}
	return d
}

// AsymmetricDistance computes the distance between a full-precision query
// and a PQ-encoded vector (ADC).
func (pq *ProductQuantizer) AsymmetricDistance(query []float32, codes []byte) (float32, error) {
	if err := pq.checkDimension(query); err != nil {
		return 0, err
	}
	if err := pq.checkCodes(codes); err != nil {
		return 0, err
	}

	var d float32
	for m, code := range codes {
		c := int(code) * pq.subvectorDim
		d += pq.dist(query[m*pq.subvectorDim:(m+1)*pq.subvectorDim], pq.centroids(m)[c:c+pq.subvectorDim])
	}
	return d, nil
}

func (pq *ProductQuantizer) checkDimension(vec []float32) error {
	if len(vec) != pq.dimension {
		return fmt.Errorf("%w: vector dimension mismatch: got %d, want %d", ErrInvalidInput, len(vec), pq.dimension)
	}
	return nil
}

func (pq *ProductQuantizer) checkCodes(codes []byte) error {
	if len(codes) != pq.numSubVectors {
		return fmt.Errorf("%w: invalid code length: got %d, want %d", ErrInvalidInput, len(codes), pq.numSubVectors)
	}
	return nil
}

// BytesPerVector returns the compressed size per vector in bytes.
func (pq *ProductQuantizer) BytesPerVector() int {
	return pq.numSubVectors // One uint8 per subvector
}

// CompressionRatio returns the theoretical compression ratio.
func (pq *ProductQuantizer) CompressionRatio() float64 {
	originalBytes := pq.dimension * 4 // float32 = 4 bytes
	return float64(originalBytes) / float64(pq.numSubVectors)
}
