package dataset

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Load reads a dataset from a .json or .json.gz file. An empty or
// placeholder metadata name is replaced with the file basename.
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset %s: %w", path, err)
	}
	defer f.Close()

	var r = io.Reader(f)
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("reading gzip dataset %s: %w", path, err)
		}
		defer gz.Close()
		r = gz
	}

	var ds Dataset
	if err := json.NewDecoder(r).Decode(&ds); err != nil {
		return nil, fmt.Errorf("decoding dataset %s: %w", path, err)
	}

	if ds.Meta.Name == "" || ds.Meta.Name == "<unknown>" {
		ds.Meta.Name = baseName(path)
	}
	return &ds, nil
}

// Write saves the dataset to path, which must end with .json or .json.gz;
// the latter is gzip-compressed at the best compression level. A missing
// metadata name defaults to the file basename.
func Write(path string, ds *Dataset) error {
	if !strings.HasSuffix(path, ".json") && !strings.HasSuffix(path, ".json.gz") {
		return fmt.Errorf("dataset path should end with .json or .json.gz, got %s", path)
	}

	if ds.Meta.Name == "" || ds.Meta.Name == "<unknown>" {
		ds.Meta.Name = baseName(path)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	var gz *gzip.Writer
	var w = io.Writer(f)
	if strings.HasSuffix(path, ".gz") {
		gz, err = gzip.NewWriterLevel(f, gzip.BestCompression)
		if err != nil {
			f.Close()
			return fmt.Errorf("creating gzip writer: %w", err)
		}
		w = gz
	}

	if err := json.NewEncoder(w).Encode(ds); err != nil {
		if gz != nil {
			gz.Close()
		}
		f.Close()
		return fmt.Errorf("encoding dataset %s: %w", path, err)
	}

	// gzip buffers until Close; a failed flush here means a truncated file,
	// so both Close errors must surface.
	if gz != nil {
		if err := gz.Close(); err != nil {
			f.Close()
			return fmt.Errorf("writing dataset %s: %w", path, err)
		}
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing dataset %s: %w", path, err)
	}
	return nil
}

// baseName strips the directory and the .json/.json.gz extension.
func baseName(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, ".gz")
	name = strings.TrimSuffix(name, ".json")
	return name
}
