package acquire

import (
	"context"
	"strings"

	"github.com/docgate/docgate/internal/common"
	"github.com/docgate/docgate/internal/entity"
)

// acquirePlainText reads the document bytes as UTF-8, replacing invalid
// sequences rather than failing on them.
func (a *Acquirer) acquirePlainText(ctx context.Context, raw *entity.RawDocument) (*entity.ExtractedText, error) {
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
	if len(data) == 0 {
		return nil, common.NewAcquisitionError("empty text file "+raw.Filename, common.ErrEmptyText)
	}

	text := strings.ToValidUTF8(string(data), "�")
	// Strip a UTF-8 BOM if the producer left one in.
	text = strings.TrimPrefix(text, "\uFEFF")

	return &entity.ExtractedText{
		Text:   text,
		Method: entity.MethodDirect,
		Pages:  1,
	}, nil
}
