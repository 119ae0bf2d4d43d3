package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/vecquant/codebook"
)

func main() {
	dir, err := os.MkdirTemp("", "codebook-demo")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	size := 20000
	dim := 32
	targetDim := 16
	entries := 256

	corpusPath := filepath.Join(dir, "vectors.txt")
	if err := writeCorpus(corpusPath, size, dim); err != nil {
		log.Fatal(err)
	}

	outputPath := filepath.Join(dir, "codebook.bin")

	fmt.Println("--- Build ---")
	fmt.Println("Vectors:", size)
	fmt.Println("Dimension:", dim, "->", targetDim)
	fmt.Println("Entries:", entries)

	start := time.Now()

	metrics := &codebook.BasicMetricsCollector{}

	p, err := codebook.New(corpusPath, outputPath,
		codebook.WithEntryCount(entries),
		codebook.WithTargetDim(targetDim),
		codebook.WithBatchSize(1024),
		codebook.WithMaxIter(60),
		codebook.WithLogLevel(slog.LevelInfo),
		codebook.WithMetrics(metrics),
	)
	if err != nil {
		log.Fatal(err)
	}

	cb, stats, err := p.Run(context.Background())
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Seconds: %.2f\n", time.Since(start).Seconds())
	fmt.Printf("Explained variance: %.3f\n", stats.ExplainedVariance)
	fmt.Printf("Epochs: %d (converged=%t)\n\n", stats.Epochs, stats.Converged)

	fmt.Println("--- Metrics ---")
	fmt.Println("Rows loaded:", metrics.LoadRows.Load())
	fmt.Println("Cluster time:", time.Duration(metrics.ClusterNanos.Load()))
	fmt.Println("Codebook bytes:", metrics.SaveBytes.Load())
	fmt.Println()

	fmt.Println("--- Quantize ---")
	query := make([]float32, targetDim)
	rng := rand.New(rand.NewSource(4711))
	for i := range query {
		query[i] = float32(rng.NormFloat64())
	}

	id, entry, err := cb.Quantize(query)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("Entry id:", id)
	fmt.Println("Entry[:4]:", entry[:4])
}

func writeCorpus(path string, n, dim int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	rng := rand.New(rand.NewSource(4711))
	for i := 0; i < n; i++ {
		fmt.Fprintf(f, "w%d", i)
		for j := 0; j < dim; j++ {
			fmt.Fprintf(f, " %g", rng.NormFloat64())
		}
		fmt.Fprintln(f)
	}
	return nil
}
