package slog_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/mrtoronto/patscan"
	"github.com/mrtoronto/patscan/mock"
	patslog "github.com/mrtoronto/patscan/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestLoggingLocator_Locate(t *testing.T) {
	t.Parallel()

	t.Run("logs discovery with counts and duration", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.Locator{
			LocateFn: func(ctx context.Context, keyword string) ([]patscan.Reference, int, error) {
				return []patscan.Reference{{URL: "u1", Ordinal: 1}, {URL: "u2", Ordinal: 2}}, 2, nil
			},
		}

		refs, total, err := patslog.NewLoggingLocator(inner, newLogger(&buf)).Locate(context.Background(), "widget")

		require.NoError(t, err)
		assert.Len(t, refs, 2)
		assert.Equal(t, 2, total)
		output := buf.String()
		assert.Contains(t, output, "discovery")
		assert.Contains(t, output, "keyword=widget")
		assert.Contains(t, output, "total=2")
		assert.Contains(t, output, "count=2")
		assert.Contains(t, output, "duration=")
	})

	t.Run("logs error on failure", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.Locator{
			LocateFn: func(ctx context.Context, keyword string) ([]patscan.Reference, int, error) {
				return nil, 0, errors.New("connection failed")
			},
		}

		_, _, err := patslog.NewLoggingLocator(inner, newLogger(&buf)).Locate(context.Background(), "widget")

		require.Error(t, err)
		assert.Contains(t, buf.String(), "err=\"connection failed\"")
	})
}

func TestLoggingRenderer(t *testing.T) {
	t.Parallel()

	t.Run("logs session operations", func(t *testing.T) {
		t.Parallel()

		// Given a renderer serving one document
		var buf bytes.Buffer
		closed := false
		inner := &mock.Renderer{
			OpenFn: func(context.Context) (patscan.Session, error) {
				return &mock.Session{
					NavigateFn: func(context.Context, string) error { return nil },
					SnapshotFn: func(context.Context) (*patscan.RawDocument, error) {
						return &patscan.RawDocument{Content: "<html></html>", Blocks: make([]string, 6)}, nil
					},
					CloseFn: func() error { closed = true; return nil },
				}, nil
			},
		}
		r := patslog.NewLoggingRenderer(inner, newLogger(&buf))

		// When I render a page
		s, err := r.Open(context.Background())
		require.NoError(t, err)
		require.NoError(t, s.Navigate(context.Background(), "https://patft.example.com/doc/1"))
		doc, err := s.Snapshot(context.Background())
		require.NoError(t, err)
		require.NoError(t, s.Close())

		// Then every step is logged and delegated
		assert.Equal(t, "<html></html>", doc.Content)
		assert.True(t, closed)
		output := buf.String()
		assert.Contains(t, output, "session open")
		assert.Contains(t, output, "msg=navigate url=https://patft.example.com/doc/1")
		assert.Contains(t, output, "msg=snapshot url=https://patft.example.com/doc/1 bytes=13 blocks=6")
		assert.Contains(t, output, "session close")
	})

	t.Run("wraps partial session returned with error", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		closed := false
		inner := &mock.Renderer{
			OpenFn: func(context.Context) (patscan.Session, error) {
				return &mock.Session{CloseFn: func() error { closed = true; return nil }}, errors.New("connect failed")
			},
		}

		s, err := patslog.NewLoggingRenderer(inner, newLogger(&buf)).Open(context.Background())

		require.Error(t, err)
		require.NotNil(t, s)
		require.NoError(t, s.Close())
		assert.True(t, closed)
		assert.Contains(t, buf.String(), "err=\"connect failed\"")
	})

	t.Run("returns nil session on failure", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.Renderer{
			OpenFn: func(context.Context) (patscan.Session, error) {
				return nil, errors.New("browser not found")
			},
		}

		s, err := patslog.NewLoggingRenderer(inner, newLogger(&buf)).Open(context.Background())

		require.Error(t, err)
		assert.Nil(t, s)
	})
}

func TestLoggingStore(t *testing.T) {
	t.Parallel()

	t.Run("logs load and save with record counts", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		d := patscan.Dataset{"widget_000001": {DocumentNumber: "1"}}
		inner := &mock.DatasetStore{
			LoadFn: func(context.Context) (patscan.Dataset, error) { return d, nil },
			SaveFn: func(context.Context, patscan.Dataset) error { return nil },
		}
		store := patslog.NewLoggingStore(inner, newLogger(&buf))

		got, err := store.Load(context.Background())
		require.NoError(t, err)
		require.NoError(t, store.Save(context.Background(), got))

		output := buf.String()
		assert.Contains(t, output, "msg=\"dataset load\" count=1")
		assert.Contains(t, output, "msg=\"dataset save\" count=1")
	})

	t.Run("logs error on failure", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.DatasetStore{
			SaveFn: func(context.Context, patscan.Dataset) error { return errors.New("disk full") },
		}

		err := patslog.NewLoggingStore(inner, newLogger(&buf)).Save(context.Background(), patscan.Dataset{})

		require.Error(t, err)
		assert.Contains(t, buf.String(), "err=\"disk full\"")
	})
}
