// Package distance provides the vector primitives used across the codebook
// builder: dot product, squared L2 distance, and L2 normalization.
//
// Normalization clamps row norms to NormEpsilon, so near-zero vectors are
// mapped to a bounded (if not meaningful) unit vector rather than NaN/Inf.
//
// # Supported Metrics
//
//   - MetricL2: Squared Euclidean distance (default, used for clustering and
//     nearest-entry lookup)
//   - MetricDot: Negated dot product (inner product)
package distance
