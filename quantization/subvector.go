package quantization

import (
	"errors"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow/float16"
)

var (
	// ErrInvalidInput is the class of all argument validation errors.
	ErrInvalidInput = errors.New("invalid input")

	// ErrSubVectorIndexOutOfRange is returned by CheckedSubVectorCentroids.
	ErrSubVectorIndexOutOfRange = errors.New("sub-vector index out of range")
)

// InvalidSubvectorCountError reports a sub-vector count that does not
// divide the vector dimension.
type InvalidSubvectorCountError struct {
	Dimension     int
	NumSubVectors int
}

func (e *InvalidSubvectorCountError) Error() string {
	return fmt.Sprintf("num_sub_vectors must divide vector dimension %d, but got %d", e.Dimension, e.NumSubVectors)
}

// Is reports ErrInvalidInput as a match.
func (e *InvalidSubvectorCountError) Is(target error) bool { return target == ErrInvalidInput }

// Element is a vector element type.
type Element interface {
	float16.Num | float32 | float64
}

// DivideToSubvectors splits a row-major batch of vectors into m buffers.
//
// values holds N vectors of dimension values each. Buffer j holds the j-th
// sub-vector (dimension/m values) of every vector, concatenated in input
// order, so every buffer has N*dimension/m values.
func DivideToSubvectors[T Element](values []T, dimension, m int) ([][]T, error) {
	if m <= 0 || dimension <= 0 || dimension%m != 0 {
		return nil, &InvalidSubvectorCountError{Dimension: dimension, NumSubVectors: m}
	}
	if len(values)%dimension != 0 {
		return nil, fmt.Errorf("%w: %d values is not a multiple of dimension %d", ErrInvalidInput, len(values), dimension)
	}

	subDim := dimension / m
	n := len(values) / dimension

	out := make([][]T, m)
	for j := range out {
		out[j] = make([]T, 0, n*subDim)
	}

	for v := 0; v < n; v++ {
		vec := values[v*dimension : (v+1)*dimension]
		for j := range m {
			out[j] = append(out[j], vec[j*subDim:(j+1)*subDim]...)
		}
	}
	return out, nil
}

// NumCentroids returns the number of centroids per sub-vector for numBits
// bits per code.
func NumCentroids(numBits uint) int {
	return 1 << numBits
}

// SubVectorCentroids returns the centroids of sub-vector idx in a flat
// codebook laid out as [numSubVectors][NumCentroids(numBits)][dimension/numSubVectors].
//
// The result aliases the codebook. idx is not validated; an index past the
// end of the codebook panics even when the backing array has spare
// capacity. Use CheckedSubVectorCentroids for untrusted indices.
func SubVectorCentroids[T any](codebook []T, numBits uint, dimension, numSubVectors, idx int) []T {
	width := NumCentroids(numBits) * (dimension / numSubVectors)
	lo, hi := idx*width, (idx+1)*width
	codebook = codebook[:len(codebook):len(codebook)]
	return codebook[lo:hi:hi]
}

// CheckedSubVectorCentroids is SubVectorCentroids with validation.
func CheckedSubVectorCentroids[T any](codebook []T, numBits uint, dimension, numSubVectors, idx int) ([]T, error) {
	if numSubVectors <= 0 || dimension%numSubVectors != 0 {
		return nil, &InvalidSubvectorCountError{Dimension: dimension, NumSubVectors: numSubVectors}
	}
	if idx < 0 || idx >= numSubVectors {
		return nil, fmt.Errorf("%w: sub_vector idx: %d, num_sub_vectors: %d", ErrSubVectorIndexOutOfRange, idx, numSubVectors)
	}
	if want := NumCentroids(numBits) * dimension; len(codebook) < want {
		return nil, fmt.Errorf("%w: codebook has %d values, need %d", ErrInvalidInput, len(codebook), want)
	}
	return SubVectorCentroids(codebook, numBits, dimension, numSubVectors, idx), nil
}
