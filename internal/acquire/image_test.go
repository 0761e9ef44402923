package acquire

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docgate/docgate/internal/entity"
	"github.com/docgate/docgate/internal/ocr"
)

var pngMagic = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

func imageDoc(t *testing.T) *entity.RawDocument {
	t.Helper()
	raw, err := NewRawDocumentFromBytes("scan.png", pngMagic)
	require.NoError(t, err)
	return raw
}

func hasFlagValue(args []string, flag, value string) bool {
	for i := 0; i+1 < len(args); i++ {
		if args[i] == flag && args[i+1] == value {
			return true
		}
	}
	return false
}

// The sweep winner must be the longest output across all attempted
// configurations, even when the longer trial is noisier.
func TestAcquireImageKeepsLongestSweepOutput(t *testing.T) {
	garbled := strings.TrimSpace(strings.Repeat("||| l1l1l1 oo0oo0 |||\n", 18))
	const clean = "Invoice Number: INV-204\nVendor: Acme Supplies\nTotal Due: $1,249.50"
	require.Greater(t, len(garbled), len(clean))

	r := &toolRunner{}
	r.hook = func(name string, args []string) (string, string, error) {
		require.Equal(t, "tesseract", name)
		if hasFlagValue(args, "--psm", "6") {
			return garbled, "", nil
		}
		return clean, "", nil
	}

	a := pdfAcquirer(t, r, 0)
	out, err := a.Acquire(context.Background(), imageDoc(t))
	require.NoError(t, err)

	assert.Equal(t, entity.MethodOCR, out.Method)
	assert.Equal(t, 1, out.Pages)
	assert.Equal(t, ocr.Normalize(garbled), out.Text)
	assert.GreaterOrEqual(t, len(out.Text), len(clean))
	// The fake raster cannot be decoded, so preprocessing falls back to the
	// original file and says so.
	assert.Contains(t, out.Warnings, "preprocess failed, using original raster")
}
