package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mrtoronto/patscan"
	"github.com/mrtoronto/patscan/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDumpWriter_WriteDump(t *testing.T) {
	t.Parallel()

	t.Run("writes content named by key", func(t *testing.T) {
		t.Parallel()

		// Given a writer targeting a directory that does not exist yet
		dir := filepath.Join(t.TempDir(), "dumps")
		w := fs.NewDumpWriter(dir)

		// When I write a dump
		err := w.WriteDump(context.Background(), "widget_000001", "  Claims missing here ")

		// Then the file holds the content as given
		require.NoError(t, err)
		data, err := os.ReadFile(filepath.Join(dir, "widget_000001.txt"))
		require.NoError(t, err)
		assert.Equal(t, "  Claims missing here ", string(data))
	})

	t.Run("replaces earlier dump", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		w := fs.NewDumpWriter(dir)
		require.NoError(t, w.WriteDump(context.Background(), "widget_000001", "first"))

		require.NoError(t, w.WriteDump(context.Background(), "widget_000001", "second"))

		data, err := os.ReadFile(filepath.Join(dir, "widget_000001.txt"))
		require.NoError(t, err)
		assert.Equal(t, "second", string(data))
	})

	t.Run("keeps keys inside directory", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "__etc_passwd_000001.txt", fs.DumpPath("../etc/passwd_000001"))
		assert.Equal(t, "a_b_000002.txt", fs.DumpPath("a/b_000002"))
	})

	t.Run("rejects empty key", func(t *testing.T) {
		t.Parallel()

		err := fs.NewDumpWriter(t.TempDir()).WriteDump(context.Background(), " ", "x")

		assert.Equal(t, patscan.EINVALID, patscan.ErrorCode(err))
	})
}
