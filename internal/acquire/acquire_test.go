package acquire

import (
	"archive/zip"
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/docgate/docgate/constants"
	"github.com/docgate/docgate/internal/common"
	"github.com/docgate/docgate/internal/entity"
)

func newTestAcquirer(t *testing.T) *Acquirer {
	t.Helper()
	return NewAcquirer(Config{MinPageTextChars: 50}, nil, slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})))
}

func TestNewRawDocument(t *testing.T) {
	dir := t.TempDir()

	t.Run("plain text file", func(t *testing.T) {
		path := filepath.Join(dir, "note.TXT")
		require.NoError(t, os.WriteFile(path, []byte("hello world"), 0o644))

		raw, err := NewRawDocument(path)
		require.NoError(t, err)
		assert.Equal(t, "txt", raw.FileExt)
		assert.Equal(t, constants.FormatText, raw.Format)
		assert.Equal(t, "note.TXT", raw.Filename)
		assert.Equal(t, int64(11), raw.FileSize)
		assert.Len(t, raw.ContentHash, 32)
		assert.NotEqual(t, "", raw.ID.String())
	})

	t.Run("unsupported extension", func(t *testing.T) {
		path := filepath.Join(dir, "tool.exe")
		require.NoError(t, os.WriteFile(path, []byte{0x4d, 0x5a}, 0o644))

		_, err := NewRawDocument(path)
		require.Error(t, err)
		assert.Equal(t, common.CodeUnsupportedFormat, common.CodeOf(err))
	})

	t.Run("directory rejected", func(t *testing.T) {
		_, err := NewRawDocument(dir)
		require.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := NewRawDocument(filepath.Join(dir, "nope.pdf"))
		require.Error(t, err)
	})
}

func TestNewRawDocumentFromBytes(t *testing.T) {
	raw, err := NewRawDocumentFromBytes("scan.jpeg", []byte{0xff, 0xd8, 0xff, 0xe0})
	require.NoError(t, err)
	assert.Equal(t, constants.FormatImage, raw.Format)
	assert.Equal(t, "jpeg", raw.FileExt)
	assert.Equal(t, int64(4), raw.FileSize)

	_, err = NewRawDocumentFromBytes("archive.tar.gz", []byte("x"))
	require.Error(t, err)
	assert.Equal(t, common.CodeUnsupportedFormat, common.CodeOf(err))
}

func TestMaterialize(t *testing.T) {
	t.Run("existing path wins", func(t *testing.T) {
		raw := &entity.RawDocument{SourcePath: "/tmp/whatever.pdf"}
		path, cleanup, err := materialize(raw)
		require.NoError(t, err)
		defer cleanup()
		assert.Equal(t, "/tmp/whatever.pdf", path)
	})

	t.Run("bytes spill to temp file", func(t *testing.T) {
		raw := &entity.RawDocument{Data: []byte("payload"), FileExt: "txt"}
		path, cleanup, err := materialize(raw)
		require.NoError(t, err)
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "payload", string(data))
		assert.Equal(t, ".txt", filepath.Ext(path))
		cleanup()
		_, err = os.Stat(path)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("nothing to work with", func(t *testing.T) {
		_, _, err := materialize(&entity.RawDocument{})
		require.Error(t, err)
	})
}

func TestAcquirePlainText(t *testing.T) {
	a := newTestAcquirer(t)

	t.Run("normalizes line endings and strips BOM", func(t *testing.T) {
		raw, err := NewRawDocumentFromBytes("memo.txt", []byte("\uFEFFline one\r\nline two\r\n"))
		require.NoError(t, err)

		out, err := a.Acquire(context.Background(), raw)
		require.NoError(t, err)
		assert.Equal(t, "line one\nline two", out.Text)
		assert.Equal(t, entity.MethodDirect, out.Method)
		assert.Equal(t, 1, out.Pages)
	})

	t.Run("invalid utf8 replaced", func(t *testing.T) {
		raw, err := NewRawDocumentFromBytes("memo.txt", []byte{'a', 0xff, 'b'})
		require.NoError(t, err)

		out, err := a.Acquire(context.Background(), raw)
		require.NoError(t, err)
		assert.Equal(t, "a�b", out.Text)
	})

	t.Run("whitespace only is an acquisition failure", func(t *testing.T) {
		raw, err := NewRawDocumentFromBytes("memo.txt", []byte("   \n\t\n"))
		require.NoError(t, err)

		_, err = a.Acquire(context.Background(), raw)
		require.Error(t, err)
		assert.True(t, common.IsAcquisitionError(err))
	})
}

func buildDOCX(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestAcquireDOCX(t *testing.T) {
	a := newTestAcquirer(t)

	documentXML := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>First paragraph.</w:t></w:r></w:p>
    <w:p><w:r><w:t xml:space="preserve">Second </w:t></w:r><w:r><w:t>paragraph.</w:t></w:r></w:p>
    <w:tbl>
      <w:tr>
        <w:tc><w:p><w:r><w:t>Name</w:t></w:r></w:p></w:tc>
        <w:tc><w:p><w:r><w:t>Jane Doe</w:t></w:r></w:p></w:tc>
      </w:tr>
      <w:tr>
        <w:tc><w:p><w:r><w:t>Role</w:t></w:r></w:p></w:tc>
        <w:tc><w:p><w:r><w:t>Engineer</w:t></w:r></w:p></w:tc>
      </w:tr>
    </w:tbl>
  </w:body>
</w:document>`

	t.Run("paragraphs then table rows", func(t *testing.T) {
		raw, err := NewRawDocumentFromBytes("profile.docx", buildDOCX(t, documentXML))
		require.NoError(t, err)

		out, err := a.Acquire(context.Background(), raw)
		require.NoError(t, err)
		assert.Equal(t, "First paragraph.\nSecond paragraph.\nName Jane Doe\nRole Engineer", out.Text)
		assert.Equal(t, entity.MethodDirect, out.Method)
	})

	t.Run("cell paragraphs stay out of body paragraphs", func(t *testing.T) {
		paragraphs, tables, err := walkDocumentXML(bytes.NewReader([]byte(documentXML)))
		require.NoError(t, err)
		assert.Equal(t, []string{"First paragraph.", "Second paragraph."}, paragraphs)
		require.Len(t, tables, 1)
		assert.Equal(t, [][]string{{"Name", "Jane Doe"}, {"Role", "Engineer"}}, tables[0])
	})

	t.Run("not a zip archive", func(t *testing.T) {
		raw, err := NewRawDocumentFromBytes("broken.docx", []byte("plain text pretending"))
		require.NoError(t, err)

		_, err = a.Acquire(context.Background(), raw)
		require.Error(t, err)
		assert.True(t, common.IsAcquisitionError(err))
	})

	t.Run("archive without document part", func(t *testing.T) {
		var buf bytes.Buffer
		zw := zip.NewWriter(&buf)
		w, err := zw.Create("word/styles.xml")
		require.NoError(t, err)
		_, err = w.Write([]byte("<w:styles/>"))
		require.NoError(t, err)
		require.NoError(t, zw.Close())

		raw, err := NewRawDocumentFromBytes("odd.docx", buf.Bytes())
		require.NoError(t, err)
		_, err = a.Acquire(context.Background(), raw)
		require.Error(t, err)
	})
}

func TestAcquireXLSX(t *testing.T) {
	a := newTestAcquirer(t)

	wb := excelize.NewFile()
	require.NoError(t, wb.SetCellValue("Sheet1", "A1", "Invoice"))
	require.NoError(t, wb.SetCellValue("Sheet1", "B1", "INV-2041"))
	require.NoError(t, wb.SetCellValue("Sheet1", "A2", "Total"))
	require.NoError(t, wb.SetCellValue("Sheet1", "B2", 1250.50))
	_, err := wb.NewSheet("Details")
	require.NoError(t, err)
	require.NoError(t, wb.SetCellValue("Details", "A1", "Due date"))
	require.NoError(t, wb.SetCellValue("Details", "B1", "2025-04-30"))

	buf, err := wb.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, wb.Close())

	raw, err := NewRawDocumentFromBytes("invoice.xlsx", buf.Bytes())
	require.NoError(t, err)

	out, err := a.Acquire(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, entity.MethodDirect, out.Method)
	assert.Contains(t, out.Text, "Invoice INV-2041")
	assert.Contains(t, out.Text, "Total 1250.5")
	assert.Contains(t, out.Text, "Due date 2025-04-30")
}

func TestAcquireRejectsUnknownFormat(t *testing.T) {
	a := newTestAcquirer(t)

	raw := &entity.RawDocument{Filename: "weird.bin", FileExt: "bin", Format: "BINARY"}
	_, err := a.Acquire(context.Background(), raw)
	require.Error(t, err)
	assert.Equal(t, common.CodeUnsupportedFormat, common.CodeOf(err))
}

func TestAdequateThreshold(t *testing.T) {
	a := NewAcquirer(Config{MinPageTextChars: 10}, nil, slog.Default())
	assert.False(t, a.adequate("   short  "))
	assert.True(t, a.adequate("long enough text"))
}
