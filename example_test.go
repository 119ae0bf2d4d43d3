package codebook_test

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/vecquant/codebook"
)

// Example_quantize demonstrates nearest-entry lookup against a codebook.
func Example_quantize() {
	cb, err := codebook.NewCodebook([]float32{
		1, 0,
		0, 1,
		-1, 0,
	}, 3, 2)
	if err != nil {
		log.Fatal(err)
	}

	id, entry, err := cb.Quantize([]float32{0.9, 0.1})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("id=%d entry=%v\n", id, entry)
	// Output: id=0 entry=[1 0]
}

// Example_pipeline builds a small codebook from a word-vector corpus file.
func Example_pipeline() {
	dir, err := os.MkdirTemp("", "codebook-example")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	// A toy corpus: "token v1 v2 v3" per line.
	corpusPath := filepath.Join(dir, "vectors.txt")
	f, err := os.Create(corpusPath)
	if err != nil {
		log.Fatal(err)
	}
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 64; i++ {
		fmt.Fprintf(f, "w%d %g %g %g\n", i, rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64())
	}
	f.Close()

	outputPath := filepath.Join(dir, "codebook.bin")
	p, err := codebook.New(corpusPath, outputPath,
		codebook.WithEntryCount(8),
		codebook.WithTargetDim(3),
		codebook.WithBatchSize(16),
		codebook.WithMaxIter(20),
		codebook.WithSkipReduction(),
		codebook.WithSeed(42),
	)
	if err != nil {
		log.Fatal(err)
	}

	cb, _, err := p.Run(context.Background())
	if err != nil {
		log.Fatal(err)
	}

	loaded, err := codebook.Load(outputPath, 3)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("built %dx%d, loaded %dx%d\n", cb.Entries(), cb.Dim(), loaded.Entries(), loaded.Dim())
	// Output: built 8x3, loaded 8x3
}
