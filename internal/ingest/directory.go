package ingest

import (
	"context"
	"encoding/hex"
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"

	"github.com/docgate/docgate/internal/acquire"
	"github.com/docgate/docgate/internal/entity"
)

// ScanResult is the per-file outcome of a directory scan. Doc is nil for
// deduplicated and failed files.
type ScanResult struct {
	Path         string
	Doc          *entity.RawDocument
	Deduplicated bool
	HashHex      string
	Err          string
}

// DirStats summarizes one directory scan. Scanned counts every entry the
// walk visited, directories included.
type DirStats struct {
	Scanned      uint32
	Matched      uint32
	Skipped      uint32
	Deduplicated uint32
	Succeeded    uint32
	Failed       uint32
}

// Scanner walks a directory tree and loads the documents worth processing.
type Scanner struct {
	AllowedExts map[string]struct{} // lowercased sans '.'; nil uses the default set
	SkipHidden  bool
	Logger      *slog.Logger
}

func NewScanner(logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{
		SkipHidden: true,
		Logger:     logger,
	}
}

// ScanDirectory walks root, filters by the extension allow-list, skips
// hidden entries when configured, and loads each matching file once per
// content hash. A file that cannot be read is recorded and the walk
// continues.
func (s *Scanner) ScanDirectory(ctx context.Context, root string) ([]ScanResult, DirStats, error) {
	if root == "" {
		return nil, DirStats{}, errors.New("root path is required")
	}

	var results []ScanResult
	var stats DirStats
	seen := map[string]string{} // hex hash -> first path

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Scanned++
		if walkErr != nil {
			results = append(results, ScanResult{Path: path, Err: walkErr.Error()})
			stats.Failed++
			return nil
		}
		if s.SkipHidden && IsHidden(path) && path != root {
			if d.IsDir() {
				return filepath.SkipDir
			}
			stats.Skipped++
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !s.allowed(path) {
			stats.Skipped++
			return nil
		}
		stats.Matched++

		doc, err := acquire.NewRawDocument(path)
		if err != nil {
			s.Logger.Warn("ingest.file.failed", "path", path, "error", err)
			results = append(results, ScanResult{Path: path, Err: err.Error()})
			stats.Failed++
			return nil
		}

		hash := hex.EncodeToString(doc.ContentHash)
		if first, dup := seen[hash]; dup {
			s.Logger.Debug("ingest.file.deduplicated", "path", path, "first", first)
			results = append(results, ScanResult{Path: path, Deduplicated: true, HashHex: hash})
			stats.Deduplicated++
			return nil
		}
		seen[hash] = path

		results = append(results, ScanResult{Path: path, Doc: doc, HashHex: hash})
		stats.Succeeded++
		return nil
	})
	if err != nil {
		return results, stats, err
	}

	s.Logger.Info("ingest.scan.done",
		"root", root,
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"skipped", stats.Skipped,
		"deduplicated", stats.Deduplicated,
		"succeeded", stats.Succeeded,
		"failed", stats.Failed)
	return results, stats, nil
}

func (s *Scanner) allowed(path string) bool {
	ext := filepath.Ext(path)
	if s.AllowedExts == nil {
		return AllowedExt(ext)
	}
	_, ok := s.AllowedExts[normalizeExt(ext)]
	return ok
}
