// Package quantization implements the sub-vector layout of product
// quantization (PQ).
//
// A D-dimensional vector is split into m contiguous sub-vectors of D/m
// values each. A PQ codebook holds 2^numBits centroids per sub-vector,
// stored flat as [m][2^numBits][D/m]:
//
//	centroids := quantization.SubVectorCentroids(codebook, 8, 128, 16, j)
//	// len(centroids) == 256 * 8, centroid c of sub-vector j is
//	// centroids[c*8 : (c+1)*8]
//
// DivideToSubvectors transposes a batch of vectors into one buffer per
// sub-vector, which is the layout codebook training and batch encoding
// consume. It copies every value and belongs on the build path.
//
// ProductQuantizer encodes, decodes and scores vectors against an
// already-trained codebook. Training is not part of this package.
package quantization
