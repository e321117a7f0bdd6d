// Package fs provides file-based storage for scraped datasets.
package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/mrtoronto/patscan"
)

// Ensure DatasetStore implements patscan.DatasetStore at compile time.
var _ patscan.DatasetStore = (*DatasetStore)(nil)

// DatasetStore implements patscan.DatasetStore as a single JSON file.
// Saves write a sibling temporary file and rename it over the target, so a
// crash leaves either the old or the new dataset on disk.
type DatasetStore struct {
	path string
}

// NewDatasetStore creates a DatasetStore for the file at path.
func NewDatasetStore(path string) *DatasetStore {
	return &DatasetStore{path: path}
}

// DatasetPath returns path with a .json extension appended when it has none.
func DatasetPath(path string) string {
	if filepath.Ext(path) == "" {
		return path + ".json"
	}
	return path
}

func (s *DatasetStore) Load(ctx context.Context) (patscan.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return patscan.Dataset{}, nil
	} else if err != nil {
		return patscan.Dataset{}, patscan.Errorf(patscan.EINVALID, "reading dataset %s: %v", s.path, err)
	}

	d := patscan.Dataset{}
	if err := json.Unmarshal(data, &d); err != nil {
		return patscan.Dataset{}, patscan.Errorf(patscan.EINVALID, "decoding dataset %s: %v", s.path, err)
	}
	if d == nil {
		// The file held JSON null.
		d = patscan.Dataset{}
	}
	d.Normalize()
	return d, nil
}

func (s *DatasetStore) Save(ctx context.Context, d patscan.Dataset) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := Encode(d)
	if err != nil {
		return err
	}

	if current, err := os.ReadFile(s.path); err == nil && xxhash.Sum64(current) == xxhash.Sum64(data) {
		return nil
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	tmp := fmt.Sprintf("%s.%s.tmp", s.path, uuid.NewString())
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// Encode renders d as the persisted JSON document: keys in ascending order,
// four-space indentation, HTML characters unescaped and a trailing newline.
func Encode(d patscan.Dataset) ([]byte, error) {
	if d == nil {
		d = patscan.Dataset{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(d); err != nil {
		return nil, patscan.Errorf(patscan.EINTERNAL, "encoding dataset: %v", err)
	}
	return buf.Bytes(), nil
}
