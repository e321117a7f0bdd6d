package patscan

import (
	"context"
	"sort"
)

// Dataset maps record keys to records.
type Dataset map[string]*PatentRecord

// Keys returns the dataset keys in ascending order.
func (d Dataset) Keys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Satisfied returns a predicate reporting whether a reference is already
// covered: the record under its key, or any record for the same page, has a
// document number.
func (d Dataset) Satisfied() func(key, pageReference string) bool {
	pages := make(map[string]struct{})
	for _, r := range d {
		if r.Complete() {
			pages[r.PageReference] = struct{}{}
		}
	}
	return func(key, pageReference string) bool {
		if d[key].Complete() {
			return true
		}
		_, ok := pages[pageReference]
		return ok
	}
}

// Merge adds the records of batch whose key is not yet present and whose
// document number is set. It returns the added keys in ascending order.
func (d Dataset) Merge(batch Dataset) []string {
	var added []string
	for _, k := range batch.Keys() {
		if _, ok := d[k]; ok {
			continue
		}
		rec := batch[k]
		if !rec.Complete() {
			continue
		}
		d[k] = rec
		added = append(added, k)
	}
	return added
}

// Normalize restores record invariants after decoding and drops nil entries.
func (d Dataset) Normalize() {
	for k, r := range d {
		if r == nil {
			delete(d, k)
			continue
		}
		r.normalize()
	}
}

// DatasetStore persists a dataset as a whole.
type DatasetStore interface {
	// Load returns the persisted dataset. A missing dataset is empty and not
	// an error. An unreadable dataset is returned empty together with an
	// EINVALID error that callers may treat as a warning.
	Load(ctx context.Context) (Dataset, error)

	// Save replaces the persisted dataset. Save is all-or-nothing.
	Save(ctx context.Context, d Dataset) error
}

// DumpWriter stores diagnostic copies of documents whose claims were not found.
type DumpWriter interface {
	WriteDump(ctx context.Context, key string, content string) error
}
