package corpus

import (
	"bufio"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// ErrEmpty is returned when no vectors could be parsed from the corpus.
var ErrEmpty = errors.New("corpus: no vectors parsed")

// maxLineBytes bounds a single corpus line. FastText dumps can carry
// multi-megabyte lines at high dimensions.
const maxLineBytes = 16 << 20

// Result holds the parsed corpus as a row-major float32 matrix.
type Result struct {
	Data []float32 // Rows*Dim values, row-major
	Rows int
	Dim  int // inferred from the first successfully parsed line

	// Skipped counts lines dropped during parsing (headers, malformed
	// numeric fields, rows whose width differs from the inferred Dim).
	Skipped int
}

// Load reads a text corpus of tagged vectors from path.
//
// Each line has the form "token v1 v2 ... vN" (space-separated). Lines with
// fewer than 3 fields are treated as headers and skipped; lines whose
// numeric fields fail to parse are skipped without aborting the read.
//
// Compressed corpora are decompressed transparently based on the file
// extension: .gz, .zst/.zstd and .lz4 are supported.
//
// maxVocab, if positive, caps the number of lines consumed (parsed or not);
// reading stops as soon as the cap is reached. Pass 0 to read everything.
func Load(path string, maxVocab int) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, closer, err := decompressed(f, path)
	if err != nil {
		return nil, err
	}
	if closer != nil {
		defer closer()
	}

	return Parse(r, maxVocab)
}

// Parse reads a corpus from r. See Load for the line format and cap semantics.
func Parse(r io.Reader, maxVocab int) (*Result, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)

	res := &Result{}
	lines := 0
	for sc.Scan() {
		if maxVocab > 0 && lines >= maxVocab {
			break
		}
		lines++

		fields := strings.Fields(sc.Text())
		if len(fields) < 3 {
			// Header line (fastText dumps open with "count dim").
			res.Skipped++
			continue
		}

		vals := fields[1:]
		if res.Dim != 0 && len(vals) != res.Dim {
			res.Skipped++
			continue
		}

		row := make([]float32, len(vals))
		ok := true
		for i, s := range vals {
			v, err := strconv.ParseFloat(s, 32)
			if err != nil {
				ok = false
				break
			}
			row[i] = float32(v)
		}
		if !ok {
			res.Skipped++
			continue
		}

		if res.Dim == 0 {
			res.Dim = len(row)
		}
		res.Data = append(res.Data, row...)
		res.Rows++
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if res.Rows == 0 {
		return nil, ErrEmpty
	}
	return res, nil
}

// decompressed wraps f in a decompressing reader chosen by file extension.
// The returned closer releases decoder resources and must be called after
// reading completes; it is nil for plain files.
func decompressed(f *os.File, path string) (io.Reader, func(), error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, nil, err
		}
		return zr, func() { zr.Close() }, nil
	case ".zst", ".zstd":
		zr, err := zstd.NewReader(f)
		if err != nil {
			return nil, nil, err
		}
		return zr, zr.Close, nil
	case ".lz4":
		return lz4.NewReader(f), nil, nil
	default:
		return f, nil, nil
	}
}
