package reader

import (
	"bytes"
	"compress/gzip"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
)

const osmData = `<osm version="0.6"><node id="1" lat="1" lon="2"/></osm>`

func TestCompressionFor(t *testing.T) {
	for _, tc := range []struct {
		path string
		c    Compression
		err  error
	}{
		{"planet.osm", None, nil},
		{"/data/extract.osm.gz", GZIP, nil},
		{"extract.osm.bz2", BZIP2, nil},
		{"extract.pbf", None, ErrNotOSM},
		{"extract.osm.xz", None, ErrNotOSM},
		{"extract.gz", None, ErrNotOSM},
		{"extract.OSM", None, ErrNotOSM},
	} {
		c, err := CompressionFor(tc.path)
		if err != tc.err || c != tc.c {
			t.Errorf("%s: got %v %v, want %v %v", tc.path, c, err, tc.c, tc.err)
		}
	}
}

func TestOpenPlain(t *testing.T) {
	dir, err := ioutil.TempDir("", "osmxml_reader")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "test.osm")
	if err := ioutil.WriteFile(path, []byte(osmData), 0644); err != nil {
		t.Fatal(err)
	}
	r, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	data, err := ioutil.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != osmData {
		t.Error(string(data))
	}
}

func TestOpenGzip(t *testing.T) {
	dir, err := ioutil.TempDir("", "osmxml_reader")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	buf := &bytes.Buffer{}
	gz := gzip.NewWriter(buf)
	gz.Write([]byte(osmData))
	gz.Close()

	path := filepath.Join(dir, "test.osm.gz")
	if err := ioutil.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
	r, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	data, err := ioutil.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != osmData {
		t.Error(string(data))
	}
	if err := r.Close(); err != nil {
		t.Error(err)
	}
}

func TestOpenInvalidGzip(t *testing.T) {
	dir, err := ioutil.TempDir("", "osmxml_reader")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "test.osm.gz")
	if err := ioutil.WriteFile(path, []byte(osmData), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(path); err == nil {
		t.Fatal("expected gzip error")
	}
}

func TestOpenNotOSM(t *testing.T) {
	_, err := Open("does-not-matter.pbf")
	if err != ErrNotOSM {
		t.Fatal(err)
	}
	if err.Error() != "file is not .osm format" {
		t.Error(err)
	}
}
