package acquire

import (
	"bytes"
	"context"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/docgate/docgate/internal/common"
	"github.com/docgate/docgate/internal/entity"
)

// acquireXLSX reads every sheet of a workbook, one line per row with cell
// values joined by single spaces. Formula cells contribute their cached
// results, matching what a human sees in the grid.
func (a *Acquirer) acquireXLSX(ctx context.Context, raw *entity.RawDocument) (*entity.ExtractedText, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data := raw.Data
	if len(data) == 0 && raw.SourcePath != "" {
		loaded, err := a.readFile(raw.SourcePath)
		if err != nil {
			return nil, err
		}
		data = loaded
	}

	wb, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, common.NewAcquisitionError(raw.Filename+" is not a valid xlsx workbook", err)
	}
	defer wb.Close()

	var b strings.Builder
	for _, sheet := range wb.GetSheetList() {
		rows, err := wb.GetRows(sheet)
		if err != nil {
			a.logger.Warn("acquire.xlsx.sheet_failed", "file", raw.Filename, "sheet", sheet, "error", err)
			continue
		}
		for _, cells := range rows {
			line := strings.TrimSpace(strings.Join(cells, " "))
			if line == "" {
				continue
			}
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}

	return &entity.ExtractedText{
		Text:   b.String(),
		Method: entity.MethodDirect,
		Pages:  1,
	}, nil
}
