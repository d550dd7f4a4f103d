package quantization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/vecflow/distance"
	"github.com/hupe1980/vecflow/testutil"
)

// gridCodebook builds a codebook whose centroid c of every sub-vector has
// all coordinates equal to c.
func gridCodebook(dimension, numSubVectors int, numBits uint) []float32 {
	k := NumCentroids(numBits)
	subDim := dimension / numSubVectors

	codebook := make([]float32, 0, k*dimension)
	for range numSubVectors {
		for c := range k {
			for range subDim {
				codebook = append(codebook, float32(c))
			}
		}
	}
	return codebook
}

func TestNewProductQuantizer_Validation(t *testing.T) {
	_, err := NewProductQuantizer(make([]float32, 4*30), 30, 4, 2, distance.MetricL2)
	var countErr *InvalidSubvectorCountError
	require.ErrorAs(t, err, &countErr)

	_, err = NewProductQuantizer(nil, 8, 4, 9, distance.MetricL2)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = NewProductQuantizer(make([]float32, 10), 8, 4, 2, distance.MetricL2)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = NewProductQuantizer(gridCodebook(8, 4, 2), 8, 4, 2, distance.Metric(9))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestProductQuantizer_EncodeDecode(t *testing.T) {
	const dim, m, bits = 8, 4, 2
	pq, err := NewProductQuantizer(gridCodebook(dim, m, bits), dim, m, bits, distance.MetricL2)
	require.NoError(t, err)

	assert.Equal(t, 4, pq.NumCentroids())
	assert.Equal(t, m, pq.BytesPerVector())
	assert.InDelta(t, 8.0, pq.CompressionRatio(), 1e-9)

	vec := []float32{0.1, -0.2, 1.2, 0.9, 2.6, 3.0, 9, 7}
	codes, err := pq.Encode(vec)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 1, 3, 3}, codes)

	decoded, err := pq.Decode(codes)
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 0, 1, 1, 3, 3, 3, 3}, decoded)
}

func TestProductQuantizer_InvalidLengths(t *testing.T) {
	const dim, m, bits = 8, 4, 2
	pq, err := NewProductQuantizer(gridCodebook(dim, m, bits), dim, m, bits, distance.MetricL2)
	require.NoError(t, err)

	vec := make([]float32, dim)
	codes := make([]byte, m)

	_, err = pq.Encode(vec[:4])
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = pq.Decode(codes[:2])
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = pq.DistanceTable(vec[:dim-1])
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = pq.AsymmetricDistance(vec, codes[:1])
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = pq.AsymmetricDistance(vec[:1], codes)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestProductQuantizer_EncodeBatch(t *testing.T) {
	const dim, m, bits = 16, 4, 3
	pq, err := NewProductQuantizer(gridCodebook(dim, m, bits), dim, m, bits, distance.MetricL2)
	require.NoError(t, err)

	vectors := testutil.NewRNG(1).UniformVectors(20, dim)
	for _, v := range vectors {
		for i := range v {
			v[i] *= 7
		}
	}

	codes, err := pq.EncodeBatch(testutil.Flatten(vectors))
	require.NoError(t, err)
	require.Len(t, codes, 20*m)

	for i, v := range vectors {
		want, err := pq.Encode(v)
		require.NoError(t, err)
		assert.Equal(t, want, codes[i*m:(i+1)*m], "vector %d", i)
	}

	_, err = pq.EncodeBatch(make([]float32, dim+1))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestProductQuantizer_Distances(t *testing.T) {
	for _, metric := range []distance.Metric{distance.MetricL2, distance.MetricDot} {
		t.Run(metric.String(), func(t *testing.T) {
			const dim, m, bits = 8, 2, 2
			pq, err := NewProductQuantizer(gridCodebook(dim, m, bits), dim, m, bits, metric)
			require.NoError(t, err)
			assert.Equal(t, metric, pq.Metric())

			query := []float32{0.5, 1, 1.5, 2, 2.5, 3, 0, 1}
			table, err := pq.DistanceTable(query)
			require.NoError(t, err)
			require.Len(t, table, m*pq.NumCentroids())

			dist, err := distance.Provider(metric)
			require.NoError(t, err)

			rng := testutil.NewRNG(3)
			for range 10 {
				vec := make([]float32, dim)
				rng.FillUniform(vec)
				for i := range vec {
					vec[i] *= 3
				}
				codes, err := pq.Encode(vec)
				require.NoError(t, err)

				adc, err := pq.AsymmetricDistance(query, codes)
				require.NoError(t, err)
				assert.InDelta(t, adc, pq.TableDistance(table, codes), 1e-4)

				decoded, err := pq.Decode(codes)
				require.NoError(t, err)
				assert.InDelta(t, dist(query, decoded), adc, 1e-4)
			}
		})
	}
}
