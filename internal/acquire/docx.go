package acquire

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"github.com/docgate/docgate/internal/common"
	"github.com/docgate/docgate/internal/entity"
)

const docxDocumentPart = "word/document.xml"

// acquireDOCX pulls text out of the WordprocessingML body: paragraphs in
// document order first, then table contents row by row with cell text joined
// by single spaces.
func (a *Acquirer) acquireDOCX(ctx context.Context, raw *entity.RawDocument) (*entity.ExtractedText, error) {
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

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, common.NewAcquisitionError(raw.Filename+" is not a valid docx archive", err)
	}

	var part *zip.File
	for _, f := range zr.File {
		if f.Name == docxDocumentPart {
			part = f
			break
		}
	}
	if part == nil {
		return nil, common.NewAcquisitionError(raw.Filename+" has no "+docxDocumentPart, common.ErrInvalidInput)
	}

	rc, err := part.Open()
	if err != nil {
		return nil, common.NewAcquisitionError("open "+docxDocumentPart, err)
	}
	defer rc.Close()

	paragraphs, tables, err := walkDocumentXML(rc)
	if err != nil {
		return nil, common.NewAcquisitionError("parse "+docxDocumentPart, err)
	}

	var b strings.Builder
	for _, p := range paragraphs {
		if p == "" {
			continue
		}
		b.WriteString(p)
		b.WriteByte('\n')
	}
	for _, table := range tables {
		for _, row := range table {
			line := strings.TrimSpace(strings.Join(row, " "))
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

// walkDocumentXML streams the WordprocessingML body and collects top-level
// paragraph text and table cell text. Nested tables fold into the cell that
// contains them.
func walkDocumentXML(r io.Reader) (paragraphs []string, tables [][][]string, err error) {
	dec := xml.NewDecoder(r)

	var (
		tableDepth int
		inPara     bool
		inCell     bool
		inText     bool
		para       strings.Builder
		cell       strings.Builder
		row        []string
		grid       [][]string
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				tableDepth++
				if tableDepth == 1 {
					grid = nil
				}
			case "tr":
				if tableDepth == 1 {
					row = nil
				}
			case "tc":
				if tableDepth == 1 {
					inCell = true
					cell.Reset()
				}
			case "p":
				if tableDepth == 0 {
					inPara = true
					para.Reset()
				}
			case "t":
				inText = true
			case "tab":
				writeRun(&para, &cell, inPara, inCell, "\t")
			case "br", "cr":
				writeRun(&para, &cell, inPara, inCell, "\n")
			}

		case xml.EndElement:
			switch t.Name.Local {
			case "tbl":
				if tableDepth == 1 {
					tables = append(tables, grid)
					grid = nil
				}
				if tableDepth > 0 {
					tableDepth--
				}
			case "tr":
				if tableDepth == 1 {
					grid = append(grid, row)
					row = nil
				}
			case "tc":
				if tableDepth == 1 && inCell {
					row = append(row, strings.TrimSpace(cell.String()))
					inCell = false
				}
			case "p":
				if tableDepth == 0 && inPara {
					paragraphs = append(paragraphs, strings.TrimSpace(para.String()))
					inPara = false
				} else if inCell {
					// Paragraph break inside a cell.
					cell.WriteByte('\n')
				}
			case "t":
				inText = false
			}

		case xml.CharData:
			if inText {
				writeRun(&para, &cell, inPara, inCell, string(t))
			}
		}
	}

	return paragraphs, tables, nil
}

func writeRun(para, cell *strings.Builder, inPara, inCell bool, s string) {
	switch {
	case inPara:
		para.WriteString(s)
	case inCell:
		cell.WriteString(s)
	}
}
