package codebook

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/vecquant/codebook/distance"
)

const (
	// Magic identifies a codebook binary file.
	Magic = "VXCB"

	// FormatVersion is the current binary format version.
	FormatVersion = 1

	// Capacity is the hard ceiling on codebook entries (2^16, addressable
	// by a u16 entry id).
	Capacity = 65536

	// DefaultDim is the codebook dimension consumed downstream.
	DefaultDim = 256

	headerSize = 16
)

// Codebook is a frozen matrix of centroid vectors, addressable by entry id.
//
// Binary format (all integers little-endian):
//
//	offset 0:  4 bytes  magic "VXCB"
//	offset 4:  4 bytes  u32 version = 1
//	offset 8:  4 bytes  u32 entry_count
//	offset 12: 4 bytes  u32 dim
//	offset 16: entry_count * dim * 4 bytes, row-major f32
type Codebook struct {
	data    []float32 // entries * dim, row-major
	entries int
	dim     int
}

// NewCodebook wraps a row-major matrix in a Codebook.
// The matrix is not copied; the caller must not mutate it afterwards.
func NewCodebook(data []float32, entries, dim int) (*Codebook, error) {
	if entries <= 0 || dim <= 0 {
		return nil, fmt.Errorf("invalid codebook shape: %d x %d", entries, dim)
	}
	if entries > Capacity {
		return nil, &ErrCapacityExceeded{Requested: entries}
	}
	if len(data) != entries*dim {
		return nil, fmt.Errorf("codebook data has %d values, want %d", len(data), entries*dim)
	}
	return &Codebook{data: data, entries: entries, dim: dim}, nil
}

// Entries returns the number of codebook entries.
func (cb *Codebook) Entries() int { return cb.entries }

// Dim returns the entry dimension.
func (cb *Codebook) Dim() int { return cb.dim }

// Lookup returns the entry vector for the given id.
// The returned slice aliases the codebook and must not be mutated.
func (cb *Codebook) Lookup(id int) ([]float32, bool) {
	if id < 0 || id >= cb.entries {
		return nil, false
	}
	return cb.data[id*cb.dim : (id+1)*cb.dim], true
}

// Quantize returns the id and vector of the entry nearest to q by squared
// L2 distance. The returned slice aliases the codebook.
func (cb *Codebook) Quantize(q []float32) (int, []float32, error) {
	if len(q) != cb.dim {
		return 0, nil, &ErrDimensionMismatch{Expected: cb.dim, Actual: len(q)}
	}
	best := 0
	minDist := float32(math.MaxFloat32)
	for j := 0; j < cb.entries; j++ {
		d := distance.SquaredL2(q, cb.data[j*cb.dim:(j+1)*cb.dim])
		if d < minDist {
			minDist = d
			best = j
		}
	}
	entry, _ := cb.Lookup(best)
	return best, entry, nil
}

// Write serializes the codebook in binary format. dim is the configured
// codebook dimension; writing a matrix of any other width fails with
// ErrDimensionMismatch before any bytes are emitted.
func (cb *Codebook) Write(w io.Writer, dim int) error {
	if cb.dim != dim {
		return &ErrDimensionMismatch{Expected: dim, Actual: cb.dim}
	}

	header := make([]byte, headerSize)
	copy(header[0:4], Magic)
	binary.LittleEndian.PutUint32(header[4:8], FormatVersion)
	binary.LittleEndian.PutUint32(header[8:12], uint32(cb.entries))
	binary.LittleEndian.PutUint32(header[12:16], uint32(cb.dim))
	if _, err := w.Write(header); err != nil {
		return err
	}

	row := make([]byte, cb.dim*4)
	for i := 0; i < cb.entries; i++ {
		for j := 0; j < cb.dim; j++ {
			bits := math.Float32bits(cb.data[i*cb.dim+j])
			binary.LittleEndian.PutUint32(row[j*4:], bits)
		}
		if _, err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// Save writes the codebook to path. The file is written to a temporary
// sibling and renamed into place, so a crashed run never leaves a partial
// codebook at the target path.
func (cb *Codebook) Save(path string, dim int) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	bw := bufio.NewWriter(tmp)
	if err := cb.Write(bw, dim); err != nil {
		tmp.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Size returns the serialized size in bytes.
func (cb *Codebook) Size() int64 {
	return headerSize + int64(cb.entries)*int64(cb.dim)*4
}

// Read deserializes a codebook. dim is the dimension the caller expects;
// a file declaring any other dimension fails with ErrDimensionMismatch.
func Read(r io.Reader, dim int) (*Codebook, error) {
	header := make([]byte, headerSize)
	if n, err := io.ReadFull(r, header); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, &ErrTruncated{Expected: headerSize, Actual: int64(n)}
		}
		return nil, err
	}

	if string(header[0:4]) != Magic {
		e := &ErrBadMagic{}
		copy(e.Got[:], header[0:4])
		return nil, e
	}
	if v := binary.LittleEndian.Uint32(header[4:8]); v != FormatVersion {
		return nil, fmt.Errorf("unsupported codebook format version: %d", v)
	}
	entries := int(binary.LittleEndian.Uint32(header[8:12]))
	fileDim := int(binary.LittleEndian.Uint32(header[12:16]))
	if fileDim != dim {
		return nil, &ErrDimensionMismatch{Expected: dim, Actual: fileDim}
	}
	if entries <= 0 || entries > Capacity {
		return nil, fmt.Errorf("invalid entry count: %d", entries)
	}

	payloadLen := int64(entries) * int64(dim) * 4
	payload := make([]byte, payloadLen)
	if n, err := io.ReadFull(r, payload); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, &ErrTruncated{Expected: payloadLen, Actual: int64(n)}
		}
		return nil, err
	}

	data := make([]float32, entries*dim)
	for i := range data {
		data[i] = math.Float32frombits(binary.LittleEndian.Uint32(payload[i*4:]))
	}
	return &Codebook{data: data, entries: entries, dim: dim}, nil
}

// Load reads a codebook file from path. See Read for the validation rules.
func Load(path string, dim int) (*Codebook, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(bufio.NewReader(f), dim)
}
