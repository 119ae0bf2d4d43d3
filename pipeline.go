package codebook

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vecquant/codebook/distance"
	"github.com/vecquant/codebook/internal/corpus"
	"github.com/vecquant/codebook/internal/kmeans"
	"github.com/vecquant/codebook/internal/pca"
)

// Pipeline builds a codebook from a text corpus of pretrained word vectors:
// load, reduce (PCA), normalize, cluster, normalize the centroids, persist.
type Pipeline struct {
	corpusPath string
	outputPath string
	opts       options
}

// RunStats is the accounting of one pipeline run.
type RunStats struct {
	VectorsLoaded     int
	LinesSkipped      int
	SourceDim         int
	ExplainedVariance float64
	Epochs            int
	Converged         bool
	Inertia           float64

	LoadDuration    time.Duration
	ReduceDuration  time.Duration
	ClusterDuration time.Duration
	SaveDuration    time.Duration
}

// New creates a Pipeline reading from corpusPath and writing the codebook
// to outputPath. Configuration failures are reported here, before any
// corpus data is read.
func New(corpusPath, outputPath string, optFns ...Option) (*Pipeline, error) {
	o := applyOptions(optFns)

	if o.entryCount < 1 {
		return nil, fmt.Errorf("invalid entry count: %d", o.entryCount)
	}
	if o.entryCount > Capacity {
		return nil, &ErrCapacityExceeded{Requested: o.entryCount}
	}
	if o.targetDim < 1 {
		return nil, fmt.Errorf("invalid target dimension: %d", o.targetDim)
	}
	if o.batchSize < 1 {
		return nil, fmt.Errorf("invalid batch size: %d", o.batchSize)
	}
	if o.maxIter < 1 {
		return nil, fmt.Errorf("invalid epoch cap: %d", o.maxIter)
	}

	return &Pipeline{
		corpusPath: corpusPath,
		outputPath: outputPath,
		opts:       o,
	}, nil
}

// Run executes the pipeline. The stages run strictly in sequence; each one
// fully consumes its input before the next starts. Structural failures are
// detected before the clustering stage so a bad configuration never pays
// for an expensive run.
func (p *Pipeline) Run(ctx context.Context) (*Codebook, *RunStats, error) {
	o := p.opts
	log := o.logger
	stats := &RunStats{}

	// Stage 1: load.
	start := time.Now()
	res, err := corpus.Load(p.corpusPath, o.maxVocab)
	if err != nil {
		return nil, nil, translateError(err)
	}
	stats.LoadDuration = time.Since(start)
	stats.VectorsLoaded = res.Rows
	stats.LinesSkipped = res.Skipped
	stats.SourceDim = res.Dim
	log.LogLoad(ctx, p.corpusPath, res.Rows, res.Dim, res.Skipped, stats.LoadDuration)
	o.metrics.RecordLoad(res.Rows, res.Skipped, stats.LoadDuration)

	// Eager validation, before any expensive stage.
	if res.Rows < o.entryCount {
		return nil, nil, &ErrInsufficientData{Need: o.entryCount, Got: res.Rows}
	}
	if o.skipReduction && res.Dim != o.targetDim {
		return nil, nil, &ErrDimensionMismatch{Expected: o.targetDim, Actual: res.Dim}
	}

	data := res.Data
	dim := res.Dim

	// Stage 2: reduce.
	stats.ExplainedVariance = 1
	if !o.skipReduction {
		start = time.Now()
		reduced, err := pca.Reduce(data, res.Rows, dim, o.targetDim)
		if err != nil {
			return nil, nil, translateErrorDims(err, dim, o.targetDim)
		}
		stats.ReduceDuration = time.Since(start)
		stats.ExplainedVariance = reduced.ExplainedVariance
		data, dim = reduced.Data, reduced.Dim
		log.LogReduce(ctx, res.Dim, dim, reduced.ExplainedVariance, stats.ReduceDuration)
		o.metrics.RecordReduce(reduced.ExplainedVariance, stats.ReduceDuration)
	}

	// Stage 3: normalize inputs.
	distance.NormalizeRowsInPlace(data, dim)

	// Stage 4: cluster.
	start = time.Now()
	result, err := kmeans.MiniBatch(ctx, data, dim, kmeans.Config{
		K:          o.entryCount,
		BatchSize:  o.batchSize,
		MaxIter:    o.maxIter,
		Seed:       o.seed,
		CheckEvery: o.checkEvery,
		MinEpochs:  o.minEpochs,
		Tol:        o.tol,
	}, func(epoch int, inertia float64) {
		log.LogClusterCheck(ctx, epoch, inertia)
	})
	if err != nil {
		return nil, nil, translateError(err)
	}
	stats.ClusterDuration = time.Since(start)
	stats.Epochs = result.Epochs
	stats.Converged = result.Converged
	stats.Inertia = result.Inertia
	log.LogCluster(ctx, o.entryCount, result.Epochs, result.Converged, result.Inertia, stats.ClusterDuration)
	o.metrics.RecordCluster(result.Epochs, result.Converged, result.Inertia, stats.ClusterDuration)

	// Stage 5: normalize centroids. Downstream consumers rely on unit-norm
	// entries.
	distance.NormalizeRowsInPlace(result.Centroids, dim)

	cb, err := NewCodebook(result.Centroids, o.entryCount, dim)
	if err != nil {
		return nil, nil, err
	}

	// Stage 6: persist.
	start = time.Now()
	err = cb.Save(p.outputPath, o.targetDim)
	stats.SaveDuration = time.Since(start)
	log.LogSave(ctx, p.outputPath, cb.Entries(), cb.Dim(), err)
	o.metrics.RecordSave(cb.Size(), stats.SaveDuration, err)
	if err != nil {
		return nil, nil, err
	}

	if o.store != nil {
		if err := p.publish(ctx, cb); err != nil {
			return nil, nil, err
		}
	}

	return cb, stats, nil
}

// publish uploads the serialized codebook to the configured blob store.
func (p *Pipeline) publish(ctx context.Context, cb *Codebook) error {
	var buf bytes.Buffer
	buf.Grow(int(cb.Size()))
	if err := cb.Write(&buf, p.opts.targetDim); err != nil {
		return err
	}
	err := p.opts.store.Put(ctx, p.opts.storeName, &buf, cb.Size())
	p.opts.logger.LogPublish(ctx, p.opts.storeName, cb.Size(), err)
	return err
}

// translateError maps internal-package errors onto the public taxonomy.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, corpus.ErrEmpty) {
		return fmt.Errorf("%w: %w", ErrCorpusEmpty, err)
	}
	var insufficient *kmeans.ErrInsufficientData
	if errors.As(err, &insufficient) {
		return &ErrInsufficientData{Need: insufficient.Need, Got: insufficient.Got, cause: err}
	}
	return err
}

// translateErrorDims is translateError for reduction failures, which need
// the source and target dimensions the internal sentinel does not carry.
func translateErrorDims(err error, from, to int) error {
	if errors.Is(err, pca.ErrTargetTooLarge) {
		return &ErrInvalidReduction{From: from, To: to}
	}
	return translateError(err)
}
