package flat

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/custodia-labs/docquery/internal/core/domain"
)

// Index file layout, all integers little-endian:
//
//	bytes 0..3   magic "DQV1"
//	bytes 4..7   int32 vector dimension
//	bytes 8..15  int64 vector count
//	bytes 16..   count*dim float32 components, row-major in id order
//
// Id order in the payload is what makes the format self-describing: the
// i-th row is vector id i, so a decoded index reproduces the exact id
// assignment of the index that was encoded.

const (
	indexMagic      = "DQV1"
	indexHeaderSize = 4 + 4 + 8
)

func encodeIndex(ix *Index) []byte {
	count := len(ix.vectors)
	buf := make([]byte, indexHeaderSize+count*ix.dim*4)

	copy(buf[0:4], indexMagic)
	binary.LittleEndian.PutUint32(buf[4:8], uint32(ix.dim))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(count))

	off := indexHeaderSize
	for _, vec := range ix.vectors {
		for _, v := range vec {
			binary.LittleEndian.PutUint32(buf[off:off+4], math.Float32bits(v))
			off += 4
		}
	}
	return buf
}

func decodeIndex(data []byte) (*Index, error) {
	if len(data) < indexHeaderSize {
		return nil, fmt.Errorf("%w: index file truncated at %d bytes", domain.ErrStorage, len(data))
	}
	if string(data[0:4]) != indexMagic {
		return nil, fmt.Errorf("%w: bad index magic %q", domain.ErrStorage, data[0:4])
	}

	dim := int(int32(binary.LittleEndian.Uint32(data[4:8])))
	count := int64(binary.LittleEndian.Uint64(data[8:16]))
	if dim <= 0 {
		return nil, fmt.Errorf("%w: invalid index dimension %d", domain.ErrStorage, dim)
	}
	if count < 0 {
		return nil, fmt.Errorf("%w: invalid vector count %d", domain.ErrStorage, count)
	}

	want := int64(indexHeaderSize) + count*int64(dim)*4
	if int64(len(data)) != want {
		return nil, fmt.Errorf("%w: index file has %d bytes, header implies %d",
			domain.ErrStorage, len(data), want)
	}

	ix := NewIndex(dim)
	ix.vectors = make([][]float32, 0, count)
	off := indexHeaderSize
	for i := int64(0); i < count; i++ {
		vec := make([]float32, dim)
		for j := 0; j < dim; j++ {
			vec[j] = math.Float32frombits(binary.LittleEndian.Uint32(data[off : off+4]))
			off += 4
		}
		ix.vectors = append(ix.vectors, vec)
	}
	return ix, nil
}

// writeIndexFile persists an index atomically: encode to a temporary file
// in the same directory, then rename over the target. A crash mid-write
// leaves either the previous file or no file, never a torn one.
func writeIndexFile(path string, ix *Index) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create index directory: %v", domain.ErrStorage, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: create temp index file: %v", domain.ErrStorage, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(encodeIndex(ix)); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: write index file: %v", domain.ErrStorage, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: close index file: %v", domain.ErrStorage, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: rename index file: %v", domain.ErrStorage, err)
	}
	return nil
}

func readIndexFile(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: read index file: %v", domain.ErrStorage, err)
	}
	return decodeIndex(data)
}
