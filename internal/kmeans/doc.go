// Package kmeans implements mini-batch k-means clustering for codebook
// learning.
//
// The trainer is built for large cluster counts (up to 65,536 entries):
// initialization is random rather than k-means++, whose O(n*k) seeding cost
// is infeasible at that scale, and each epoch touches the data one bounded
// batch at a time.
package kmeans
