package fs

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/mrtoronto/patscan"
)

// Ensure DumpWriter implements patscan.DumpWriter at compile time.
var _ patscan.DumpWriter = (*DumpWriter)(nil)

// keyReplacer keeps keys derived from user keywords inside the dump directory.
var keyReplacer = strings.NewReplacer("/", "_", `\`, "_", "..", "_")

// DumpWriter writes claim-miss dumps as text files to a directory.
type DumpWriter struct {
	baseDir string
}

// NewDumpWriter creates a DumpWriter writing to baseDir.
func NewDumpWriter(baseDir string) *DumpWriter {
	return &DumpWriter{baseDir: baseDir}
}

// DumpPath returns the file a dump for key is written to, relative to the
// base directory.
func DumpPath(key string) string {
	return keyReplacer.Replace(key) + ".txt"
}

// WriteDump writes content to <baseDir>/<key>.txt, replacing earlier dumps
// for the same key.
func (w *DumpWriter) WriteDump(ctx context.Context, key string, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(key) == "" {
		return patscan.Errorf(patscan.EINVALID, "dump key required")
	}

	if err := os.MkdirAll(w.baseDir, 0755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(w.baseDir, DumpPath(key)), []byte(content), 0644)
}
