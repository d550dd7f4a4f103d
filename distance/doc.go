// Package distance provides the vector distance functions used by product
// quantization distance tables.
//
// # Supported Metrics
//
//   - MetricL2: Squared Euclidean distance (default)
//   - MetricDot: Negated dot product, so that smaller is closer
//
// # Usage
//
//	dist := distance.SquaredL2(a, b)
//	fn, _ := distance.Provider(distance.MetricDot)
package distance
