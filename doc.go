// Package codebook builds fixed-size vector-quantization codebooks from
// corpora of pretrained word vectors.
//
// The pipeline loads a text corpus (GloVe/fastText format), optionally
// PCA-reduces the vectors to the codebook dimension, L2-normalizes them,
// clusters them into up to 65,536 centroids with mini-batch k-means, and
// persists the re-normalized centroid matrix in a compact binary format
// ("VXCB") for a downstream inference system to consume as a read-only
// nearest-centroid lookup table.
//
// # Quick Start
//
//	p, err := codebook.New("glove.6B.300d.txt", "codebook.bin",
//	    codebook.WithEntryCount(4096),
//	    codebook.WithLogLevel(slog.LevelInfo),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	cb, stats, err := p.Run(ctx)
//
// A consumer loads the file back and quantizes vectors against it:
//
//	cb, err := codebook.Load("codebook.bin", codebook.DefaultDim)
//	id, entry, err := cb.Quantize(query)
//
// # Determinism
//
// Clustering uses an explicit seeded generator: a fixed seed, input and
// configuration reproduce the exact same codebook. Changing the batch size
// or epoch cap is expected to change the result.
//
// # Publishing
//
// A finished codebook can be pushed to object storage (S3, MinIO, local
// directory) via WithPublish and the blobstore package.
package codebook
