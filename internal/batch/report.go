package batch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/xuri/excelize/v2"

	"github.com/docgate/docgate/constants"
	"github.com/docgate/docgate/internal/entity"
)

// Report buckets terminal results by outcome. Skipped holds rejected runs:
// readable and processed, but not accepted by verification.
type Report struct {
	Successful []*entity.ProcessingResult
	Skipped    []*entity.ProcessingResult
	Failed     []*entity.ProcessingResult
}

func BuildReport(results []*entity.ProcessingResult) *Report {
	byStatus := lo.GroupBy(results, func(r *entity.ProcessingResult) constants.ResultStatus {
		return r.Status
	})
	return &Report{
		Successful: byStatus[constants.StatusSuccess],
		Skipped:    byStatus[constants.StatusRejected],
		Failed:     byStatus[constants.StatusError],
	}
}

// Counts returns the bucket sizes in (successful, skipped, failed) order.
func (r *Report) Counts() (successful, skipped, failed int) {
	return len(r.Successful), len(r.Skipped), len(r.Failed)
}

// ErrorSummary counts failed documents by the pipeline stage named in the
// reason string.
func (r *Report) ErrorSummary() map[string]int {
	return lo.CountValuesBy(r.Failed, func(res *entity.ProcessingResult) string {
		stage, _, found := strings.Cut(res.Reason, ":")
		stage = strings.TrimSpace(stage)
		if !found || stage == "" {
			return "unknown"
		}
		return stage
	})
}

// Save writes one JSON file per non-empty bucket plus an XLSX summary into
// dir, all stamped with now. It returns the paths written.
func (r *Report) Save(dir string, now time.Time) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create report dir: %w", err)
	}
	stamp := now.Format("20060102_150405")

	var written []string
	buckets := []struct {
		name    string
		results []*entity.ProcessingResult
	}{
		{"successful", r.Successful},
		{"failed", r.Failed},
		{"skipped", r.Skipped},
	}
	for _, b := range buckets {
		if len(b.results) == 0 {
			continue
		}
		path := filepath.Join(dir, fmt.Sprintf("%s_%s.json", b.name, stamp))
		data, err := json.MarshalIndent(b.results, "", "  ")
		if err != nil {
			return written, fmt.Errorf("encode %s results: %w", b.name, err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return written, fmt.Errorf("write %s results: %w", b.name, err)
		}
		written = append(written, path)
	}

	xlsx, err := r.XLSXSummary()
	if err != nil {
		return written, err
	}
	path := filepath.Join(dir, fmt.Sprintf("summary_%s.xlsx", stamp))
	if err := os.WriteFile(path, xlsx, 0o644); err != nil {
		return written, fmt.Errorf("write summary: %w", err)
	}
	written = append(written, path)
	return written, nil
}

// XLSXSummary renders one workbook with a row per document across all
// buckets, accepted documents first.
func (r *Report) XLSXSummary() ([]byte, error) {
	f := excelize.NewFile()
	const sheet = "Documents"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	_ = f.DeleteSheet("Sheet1")

	headers := []string{
		"File",
		"Status",
		"Document Type",
		"Confidence",
		"Backend",
		"Reason",
		"Fields",
		"Elapsed (ms)",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	all := make([]*entity.ProcessingResult, 0, len(r.Successful)+len(r.Skipped)+len(r.Failed))
	all = append(all, r.Successful...)
	all = append(all, r.Skipped...)
	all = append(all, r.Failed...)

	row := 2
	for _, res := range all {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, res.SourcePath)
		write(2, string(res.Status))
		write(3, string(res.DocumentType))
		write(4, fmt.Sprintf("%.2f", res.Confidence))
		write(5, string(res.Meta.Backend))
		write(6, truncate(res.Reason, 140))
		write(7, truncate(fieldsCell(res.Fields), 140))
		write(8, res.Meta.ElapsedMS)
		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 48) // file path
	_ = f.SetColWidth(sheet, "B", "B", 10)
	_ = f.SetColWidth(sheet, "C", "C", 16)
	_ = f.SetColWidth(sheet, "D", "E", 14)
	_ = f.SetColWidth(sheet, "F", "F", 48) // reason
	_ = f.SetColWidth(sheet, "G", "G", 60) // fields
	_ = f.SetColWidth(sheet, "H", "H", 12)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

func fieldsCell(fx *entity.Fields) string {
	if fx == nil || fx.Len() == 0 {
		return ""
	}
	pairs := lo.Map(fx.Values(), func(fv entity.FieldValue, _ int) string {
		return fv.Name + "=" + fv.Value
	})
	return strings.Join(pairs, "; ")
}

func truncate(s string, n int) string {
	if n <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n == 1 {
		return string(runes[:1])
	}
	return string(runes[:n-1]) + "…"
}
