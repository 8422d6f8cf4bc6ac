package reader

import (
	"bufio"
	"compress/bzip2"
	"compress/gzip"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

var ErrNotOSM = errors.New("file is not .osm format")

// Compression of an input file, selected by the file suffix.
type Compression int

const (
	None Compression = iota
	GZIP
	BZIP2
)

// CompressionFor returns the compression for .osm, .osm.gz and .osm.bz2
// files, and ErrNotOSM for all other paths.
func CompressionFor(path string) (Compression, error) {
	switch {
	case strings.HasSuffix(path, ".osm.gz"):
		return GZIP, nil
	case strings.HasSuffix(path, ".osm.bz2"):
		return BZIP2, nil
	case strings.HasSuffix(path, ".osm"):
		return None, nil
	}
	return None, ErrNotOSM
}

// fileReader embeds bufio.Reader so that the parser can peek into the
// input without adding another buffer.
type fileReader struct {
	*bufio.Reader
	closers []io.Closer
}

func (r *fileReader) Close() error {
	var err error
	for _, c := range r.closers {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// Open opens an OSM XML file and returns a buffered reader for the
// decompressed content.
func Open(path string) (io.ReadCloser, error) {
	compression, err := CompressionFor(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	r, err := newReader(f, compression)
	if err != nil {
		f.Close()
		return nil, err
	}
	r.closers = append(r.closers, f)
	return r, nil
}

// NewReader returns a buffered reader that decompresses r.
// Close does not close r.
func NewReader(r io.Reader, compression Compression) (io.ReadCloser, error) {
	fr, err := newReader(r, compression)
	if err != nil {
		return nil, err
	}
	return fr, nil
}

func newReader(r io.Reader, compression Compression) (*fileReader, error) {
	fr := &fileReader{}
	switch compression {
	case GZIP:
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, errors.Wrap(err, "initializing gzip reader")
		}
		fr.closers = append(fr.closers, gz)
		r = gz
	case BZIP2:
		r = bzip2.NewReader(r)
	}
	fr.Reader = bufio.NewReaderSize(r, 64*1024)
	return fr, nil
}
