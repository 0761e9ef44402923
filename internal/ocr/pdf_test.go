package ocr

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPDFTextCountsPages(t *testing.T) {
	r := &fakeRunner{hook: func(_ string, _ []string) (string, string, error) {
		return "page one\fpage two\fpage three", "", nil
	}}
	e := NewEngineWithRunner(Config{}, r, quietLogger())

	text, pages, warns, err := e.PDFText(context.Background(), "/docs/scan.pdf")
	require.NoError(t, err)
	assert.Nil(t, warns)
	assert.Equal(t, 3, pages)
	assert.True(t, strings.HasPrefix(text, "page one"))
	assert.True(t, r.calledWith("pdftotext -layout -enc UTF-8 -eol unix /docs/scan.pdf -"))
}

func TestPDFTextFailureCarriesStderr(t *testing.T) {
	r := &fakeRunner{hook: func(_ string, _ []string) (string, string, error) {
		return "", "Syntax Error: broken xref table", errors.New("exit status 1")
	}}
	e := NewEngineWithRunner(Config{}, r, quietLogger())

	_, _, warns, err := e.PDFText(context.Background(), "/docs/scan.pdf")
	require.Error(t, err)
	require.Len(t, warns, 1)
	assert.Contains(t, warns[0], "broken xref")
}

// writePrefixed creates fake rasters the way pdftoppm and pdfimages name
// them: <prefix>-<n>.png with the prefix taken from the last argument.
func writePrefixed(t *testing.T, args []string, suffixes ...string) {
	t.Helper()
	prefix := args[len(args)-1]
	for _, s := range suffixes {
		require.NoError(t, os.WriteFile(prefix+"-"+s+".png", []byte("png"), 0o644))
	}
}

func TestRenderPDFPage(t *testing.T) {
	r := &fakeRunner{}
	r.hook = func(_ string, args []string) (string, string, error) {
		writePrefixed(t, args, "2")
		return "", "", nil
	}
	e := NewEngineWithRunner(Config{}, r, quietLogger())

	path, cleanup, err := e.RenderPDFPage(context.Background(), "/docs/scan.pdf", 2)
	require.NoError(t, err)
	require.NotNil(t, cleanup)

	assert.True(t, strings.HasSuffix(path, "-2.png"))
	assert.True(t, r.calledWith("-f 2 -l 2 -r 400 -png /docs/scan.pdf"))
	_, err = os.Stat(path)
	require.NoError(t, err)

	cleanup()
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestRenderPDFPageNoOutput(t *testing.T) {
	r := &fakeRunner{hook: func(_ string, _ []string) (string, string, error) {
		return "", "", nil
	}}
	e := NewEngineWithRunner(Config{}, r, quietLogger())

	_, _, err := e.RenderPDFPage(context.Background(), "/docs/scan.pdf", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no image")
}

func TestRenderPDFPagesHonorsMaxPages(t *testing.T) {
	r := &fakeRunner{}
	r.hook = func(_ string, args []string) (string, string, error) {
		writePrefixed(t, args, "1", "2", "3")
		return "", "", nil
	}
	e := NewEngineWithRunner(Config{MaxPages: 2}, r, quietLogger())

	paths, cleanup, err := e.RenderPDFPages(context.Background(), "/docs/scan.pdf")
	require.NoError(t, err)
	defer cleanup()

	require.Len(t, paths, 2)
	assert.True(t, strings.HasSuffix(paths[0], "-1.png"))
	assert.True(t, strings.HasSuffix(paths[1], "-2.png"))
}

func TestRenderPDFPagesFailureCleansUp(t *testing.T) {
	var prefix string
	r := &fakeRunner{}
	r.hook = func(_ string, args []string) (string, string, error) {
		prefix = args[len(args)-1]
		return "", "permission denied", errors.New("exit status 1")
	}
	e := NewEngineWithRunner(Config{}, r, quietLogger())

	_, _, err := e.RenderPDFPages(context.Background(), "/docs/scan.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")

	_, statErr := os.Stat(filepath.Dir(prefix))
	assert.True(t, os.IsNotExist(statErr))
}

func TestExtractPDFImages(t *testing.T) {
	t.Run("page with embedded images", func(t *testing.T) {
		r := &fakeRunner{}
		r.hook = func(_ string, args []string) (string, string, error) {
			writePrefixed(t, args, "000", "001")
			return "", "", nil
		}
		e := NewEngineWithRunner(Config{}, r, quietLogger())

		paths, cleanup, err := e.ExtractPDFImages(context.Background(), "/docs/scan.pdf", 3)
		require.NoError(t, err)
		defer cleanup()

		assert.Len(t, paths, 2)
		assert.True(t, r.calledWith("pdfimages -f 3 -l 3 -png /docs/scan.pdf"))
	})

	t.Run("page without images is not an error", func(t *testing.T) {
		r := &fakeRunner{hook: func(_ string, _ []string) (string, string, error) {
			return "", "", nil
		}}
		e := NewEngineWithRunner(Config{}, r, quietLogger())

		paths, cleanup, err := e.ExtractPDFImages(context.Background(), "/docs/scan.pdf", 1)
		require.NoError(t, err)
		require.NotNil(t, cleanup)
		cleanup()
		assert.Empty(t, paths)
	})
}
