// Package pca reduces vector dimensionality via principal component
// analysis: mean-center, thin SVD, project onto the leading right-singular
// vectors.
package pca
