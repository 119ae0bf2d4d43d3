// Package corpus parses text corpora of pretrained word vectors
// (GloVe/fastText format) into a row-major float32 matrix.
//
// Parsing is best-effort: header lines and malformed rows are skipped and
// counted, never fatal. Only a fully empty corpus is an error.
package corpus
