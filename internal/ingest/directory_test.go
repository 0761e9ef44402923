package ingest

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docgate/docgate/constants"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestScanDirectoryLoadsMatchingFiles(t *testing.T) {
	dir := t.TempDir()
	aPath := writeFile(t, dir, "a.txt", "hello world")
	bPath := writeFile(t, dir, "sub/b.txt", "second doc")
	writeFile(t, dir, "c.exe", "binary noise")
	writeFile(t, dir, ".hidden.txt", "should not load")
	writeFile(t, dir, ".secret/d.txt", "should not even be visited")
	dupPath := writeFile(t, dir, "dup.txt", "hello world")

	s := NewScanner(quietLogger())
	results, stats, err := s.ScanDirectory(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, uint32(8), stats.Scanned) // root, 5 entries, sub + its file; .secret's content pruned
	assert.Equal(t, uint32(3), stats.Matched)
	assert.Equal(t, uint32(2), stats.Skipped) // c.exe and .hidden.txt
	assert.Equal(t, uint32(1), stats.Deduplicated)
	assert.Equal(t, uint32(2), stats.Succeeded)
	assert.Zero(t, stats.Failed)

	require.Len(t, results, 3)

	// Walk order is lexical: a.txt, dup.txt, sub/b.txt.
	assert.Equal(t, aPath, results[0].Path)
	require.NotNil(t, results[0].Doc)
	assert.Equal(t, constants.FormatText, results[0].Doc.Format)
	assert.Equal(t, []byte("hello world"), results[0].Doc.Data)
	assert.Len(t, results[0].Doc.ContentHash, 32)

	assert.Equal(t, dupPath, results[1].Path)
	assert.True(t, results[1].Deduplicated)
	assert.Nil(t, results[1].Doc)
	assert.Equal(t, results[0].HashHex, results[1].HashHex)

	assert.Equal(t, bPath, results[2].Path)
	require.NotNil(t, results[2].Doc)
}

func TestScanDirectoryCustomAllowList(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "text content")
	writeFile(t, dir, "b.pdf", "%PDF-1.4")

	s := NewScanner(quietLogger())
	s.AllowedExts = map[string]struct{}{"txt": {}}

	results, stats, err := s.ScanDirectory(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), stats.Matched)
	assert.Equal(t, uint32(1), stats.Skipped)
	require.Len(t, results, 1)
	assert.Equal(t, "a.txt", filepath.Base(results[0].Path))
}

func TestScanDirectoryKeepsHiddenWhenConfigured(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".hidden.txt", "now visible")

	s := NewScanner(quietLogger())
	s.SkipHidden = false

	results, stats, err := s.ScanDirectory(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), stats.Succeeded)
	require.Len(t, results, 1)
	require.NotNil(t, results[0].Doc)
}

func TestScanDirectoryEmptyRoot(t *testing.T) {
	s := NewScanner(quietLogger())
	_, _, err := s.ScanDirectory(context.Background(), "")
	assert.Error(t, err)
}

func TestScanDirectoryCancelledContext(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "content")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewScanner(quietLogger())
	_, _, err := s.ScanDirectory(ctx, dir)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAllowedExt(t *testing.T) {
	assert.True(t, AllowedExt(".pdf"))
	assert.True(t, AllowedExt("PDF"))
	assert.True(t, AllowedExt(".docx"))
	assert.False(t, AllowedExt(".exe"))
	assert.False(t, AllowedExt(""))
}

func TestIsHidden(t *testing.T) {
	assert.True(t, IsHidden("/data/.git"))
	assert.True(t, IsHidden(".env"))
	assert.False(t, IsHidden("/data/report.pdf"))
}
