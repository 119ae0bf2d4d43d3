// Command codebook builds and inspects vector-quantization codebooks.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vecquant/codebook"
	s3store "github.com/vecquant/codebook/blobstore/s3"
)

var rootCmd = &cobra.Command{
	Use:           "codebook",
	Short:         "Build vector-quantization codebooks from pretrained embeddings",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	buildEmbeddings string
	buildOutput     string
	buildEntries    int
	buildDim        int
	buildMaxVocab   int
	buildBatchSize  int
	buildMaxIter    int
	buildNoPCA      bool
	buildSeed       int64
	buildLogLevel   string
	buildLogJSON    bool
	buildBucket     string
	buildKey        string
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Cluster a word-vector corpus into a codebook file",
	Long: `Build reads a text corpus of pretrained word vectors ("token v1 v2 ..."
per line, optionally gzip/zstd/lz4-compressed), reduces it to the target
dimension with PCA, L2-normalizes, clusters with mini-batch k-means and
writes the resulting codebook in binary format.

Runs with identical inputs, configuration and seed are reproducible.`,
	RunE: runBuild,
}

var (
	inspectDim int
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <codebook-file>",
	Short: "Print header information for a codebook file",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func init() {
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(inspectCmd)

	buildCmd.Flags().StringVar(&buildEmbeddings, "embeddings", "", "path to the word-vector corpus (required)")
	buildCmd.Flags().StringVar(&buildOutput, "output", "codebook.bin", "output path for the codebook file")
	buildCmd.Flags().IntVarP(&buildEntries, "entries", "k", codebook.DefaultEntryCount, "number of codebook entries")
	buildCmd.Flags().IntVar(&buildDim, "dim", codebook.DefaultDim, "codebook dimension")
	buildCmd.Flags().IntVar(&buildMaxVocab, "max-vocab", 0, "cap on corpus lines consumed (0 = all)")
	buildCmd.Flags().IntVar(&buildBatchSize, "batch-size", codebook.DefaultBatchSize, "mini-batch size")
	buildCmd.Flags().IntVar(&buildMaxIter, "max-iter", codebook.DefaultMaxIter, "maximum clustering epochs")
	buildCmd.Flags().BoolVar(&buildNoPCA, "no-pca", false, "skip dimensionality reduction (corpus dim must equal --dim)")
	buildCmd.Flags().Int64Var(&buildSeed, "seed", codebook.DefaultSeed, "random seed")
	buildCmd.Flags().StringVar(&buildLogLevel, "log-level", "info", "log level (debug, info, warn, error)")
	buildCmd.Flags().BoolVar(&buildLogJSON, "log-json", false, "emit JSON logs")
	buildCmd.Flags().StringVar(&buildBucket, "publish-bucket", "", "S3 bucket to publish the codebook to")
	buildCmd.Flags().StringVar(&buildKey, "publish-key", "", "object key for the published codebook")
	buildCmd.MarkFlagRequired("embeddings")

	inspectCmd.Flags().IntVar(&inspectDim, "dim", codebook.DefaultDim, "expected codebook dimension")
}

func runBuild(cmd *cobra.Command, args []string) error {
	level, err := parseLevel(buildLogLevel)
	if err != nil {
		return err
	}
	logger := codebook.NewTextLogger(level)
	if buildLogJSON {
		logger = codebook.NewJSONLogger(level)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := []codebook.Option{
		codebook.WithEntryCount(buildEntries),
		codebook.WithTargetDim(buildDim),
		codebook.WithBatchSize(buildBatchSize),
		codebook.WithMaxIter(buildMaxIter),
		codebook.WithMaxVocab(buildMaxVocab),
		codebook.WithSeed(buildSeed),
		codebook.WithLogger(logger),
	}
	if buildNoPCA {
		opts = append(opts, codebook.WithSkipReduction())
	}
	if buildBucket != "" {
		key := buildKey
		if key == "" {
			key = "codebook.bin"
		}
		store, err := s3store.New(ctx, buildBucket, "")
		if err != nil {
			return fmt.Errorf("publish target: %w", err)
		}
		opts = append(opts, codebook.WithPublish(store, key))
	}

	p, err := codebook.New(buildEmbeddings, buildOutput, opts...)
	if err != nil {
		return err
	}

	start := time.Now()
	cb, stats, err := p.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(),
		"built %d x %d codebook in %s (%d vectors, %d epochs, converged=%t) -> %s\n",
		cb.Entries(), cb.Dim(), time.Since(start).Round(time.Millisecond),
		stats.VectorsLoaded, stats.Epochs, stats.Converged, buildOutput)
	return nil
}

func runInspect(cmd *cobra.Command, args []string) error {
	cb, err := codebook.Load(args[0], inspectDim)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "entries: %d\ndim:     %d\nsize:    %d bytes\n",
		cb.Entries(), cb.Dim(), cb.Size())
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level: %q", s)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
