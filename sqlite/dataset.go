package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/mrtoronto/patscan"
)

// Compile-time interface verification.
var _ patscan.DatasetStore = (*DatasetStore)(nil)

// insertBatch bounds the rows per INSERT statement to stay below the SQLite
// variable limit.
const insertBatch = 500

var recordColumns = []string{
	"key",
	"page_reference",
	"primary_examiner",
	"attorney",
	"publication_date",
	"document_number",
	"patent_number",
	"inventors",
	"applicant",
	"abstract",
	"claims",
	"cited_references",
	"other_references",
}

// DatasetStore implements patscan.DatasetStore using SQLite.
type DatasetStore struct {
	db *DB
}

// NewDatasetStore creates a new DatasetStore.
func NewDatasetStore(db *DB) *DatasetStore {
	return &DatasetStore{db: db}
}

// Load returns every record ordered by key.
func (s *DatasetStore) Load(ctx context.Context) (patscan.Dataset, error) {
	query, args, err := sq.Select(recordColumns...).From("records").OrderBy("key").ToSql()
	if err != nil {
		return patscan.Dataset{}, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return patscan.Dataset{}, patscan.Errorf(patscan.EINVALID, "reading records: %v", err)
	}
	defer rows.Close()

	d := patscan.Dataset{}
	for rows.Next() {
		key, rec, err := scanRecord(rows)
		if err != nil {
			return patscan.Dataset{}, patscan.Errorf(patscan.EINVALID, "reading records: %v", err)
		}
		d[key] = rec
	}
	if err := rows.Err(); err != nil {
		return patscan.Dataset{}, patscan.Errorf(patscan.EINVALID, "reading records: %v", err)
	}

	d.Normalize()
	return d, nil
}

func scanRecord(rows *sql.Rows) (string, *patscan.PatentRecord, error) {
	var key string
	var rec patscan.PatentRecord
	var claims sql.NullString
	var cited, other string

	if err := rows.Scan(&key, &rec.PageReference, &rec.PrimaryExaminer, &rec.Attorney,
		&rec.PublicationDate, &rec.DocumentNumber, &rec.PatentNumber, &rec.Inventors,
		&rec.Applicant, &rec.Abstract, &claims, &cited, &other); err != nil {
		return "", nil, err
	}

	if claims.Valid {
		if err := json.Unmarshal([]byte(claims.String), &rec.Claims); err != nil {
			return "", nil, fmt.Errorf("claims of %s: %w", key, err)
		}
		if rec.Claims == nil {
			rec.Claims = []string{}
		}
	}
	if err := json.Unmarshal([]byte(cited), &rec.CitedReferences); err != nil {
		return "", nil, fmt.Errorf("cited_references of %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(other), &rec.OtherReferences); err != nil {
		return "", nil, fmt.Errorf("other_references of %s: %w", key, err)
	}
	return key, &rec, nil
}

// Save replaces every record in a single transaction.
func (s *DatasetStore) Save(ctx context.Context, d patscan.Dataset) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM records"); err != nil {
		return fmt.Errorf("clearing records: %w", err)
	}

	keys := d.Keys()
	for start := 0; start < len(keys); start += insertBatch {
		end := min(start+insertBatch, len(keys))

		insert := sq.Insert("records").Columns(recordColumns...)
		for _, key := range keys[start:end] {
			values, err := recordValues(key, d[key])
			if err != nil {
				return err
			}
			insert = insert.Values(values...)
		}

		query, args, err := insert.ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("inserting records: %w", err)
		}
	}

	return tx.Commit()
}

func recordValues(key string, rec *patscan.PatentRecord) ([]any, error) {
	if rec == nil {
		return nil, patscan.Errorf(patscan.EINVALID, "nil record for %s", key)
	}

	var claims any
	if rec.Claims != nil {
		b, err := json.Marshal(rec.Claims)
		if err != nil {
			return nil, err
		}
		claims = string(b)
	}
	cited, err := jsonList(rec.CitedReferences)
	if err != nil {
		return nil, err
	}
	other, err := jsonList(rec.OtherReferences)
	if err != nil {
		return nil, err
	}

	return []any{
		key,
		rec.PageReference,
		rec.PrimaryExaminer,
		rec.Attorney,
		rec.PublicationDate,
		rec.DocumentNumber,
		rec.PatentNumber,
		rec.Inventors,
		rec.Applicant,
		rec.Abstract,
		claims,
		cited,
		other,
	}, nil
}

// jsonList encodes a reference list, writing nil as an empty array.
func jsonList(items []string) (string, error) {
	if items == nil {
		items = []string{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
