package acquire

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/docgate/docgate/constants"
	"github.com/docgate/docgate/internal/common"
	"github.com/docgate/docgate/internal/entity"
)

// NewRawDocument stats, hashes and sniffs a file on disk and builds the
// document record the rest of the pipeline operates on. Extension decides
// the processing format; MIME detection is advisory and recorded alongside.
func NewRawDocument(path string) (*entity.RawDocument, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, common.NewAcquisitionError(fmt.Sprintf("stat %s", path), err)
	}
	if info.IsDir() {
		return nil, common.NewAcquisitionError(fmt.Sprintf("%s is a directory", path), common.ErrInvalidInput)
	}

	ext := constants.NormalizeExt(filepath.Ext(path))
	format, ok := constants.FormatForExt(ext)
	if !ok {
		return nil, common.NewUnsupportedFormatError(ext)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, common.NewAcquisitionError(fmt.Sprintf("read %s", path), err)
	}

	mime := ""
	if mt, err := mimetype.DetectFile(path); err == nil {
		mime = mt.String()
	}

	sum := sha256.Sum256(data)

	return &entity.RawDocument{
		ID:          uuid.New(),
		SourcePath:  path,
		Data:        data,
		Filename:    filepath.Base(path),
		FileExt:     ext,
		Format:      format,
		MIMEType:    mime,
		ContentHash: sum[:],
		FileSize:    info.Size(),
		IngestedAt:  time.Now().UTC(),
	}, nil
}

// NewRawDocumentFromBytes builds a document record for in-memory content,
// e.g. uploads that never touch disk. The filename supplies the extension.
func NewRawDocumentFromBytes(filename string, data []byte) (*entity.RawDocument, error) {
	ext := constants.NormalizeExt(filepath.Ext(filename))
	format, ok := constants.FormatForExt(ext)
	if !ok {
		return nil, common.NewUnsupportedFormatError(ext)
	}

	mime := mimetype.Detect(data).String()
	sum := sha256.Sum256(data)

	return &entity.RawDocument{
		ID:          uuid.New(),
		Data:        data,
		Filename:    filepath.Base(filename),
		FileExt:     ext,
		Format:      format,
		MIMEType:    mime,
		ContentHash: sum[:],
		FileSize:    int64(len(data)),
		IngestedAt:  time.Now().UTC(),
	}, nil
}

// materialize returns a path on disk for the document, writing the in-memory
// payload to a temp file when it was never persisted. The caller runs the
// returned cleanup exactly once.
func materialize(raw *entity.RawDocument) (string, func(), error) {
	if raw.SourcePath != "" {
		return raw.SourcePath, func() {}, nil
	}
	if len(raw.Data) == 0 {
		return "", nil, common.NewAcquisitionError("document has neither path nor content", common.ErrInvalidInput)
	}
	f, err := os.CreateTemp("", "docgate-*."+raw.FileExt)
	if err != nil {
		return "", nil, common.NewAcquisitionError("create temp file", err)
	}
	if _, err := f.Write(raw.Data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", nil, common.NewAcquisitionError("write temp file", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", nil, common.NewAcquisitionError("close temp file", err)
	}
	name := f.Name()
	return name, func() { os.Remove(name) }, nil
}
