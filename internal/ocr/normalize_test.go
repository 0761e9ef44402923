package ocr

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	t.Run("whitespace and page breaks", func(t *testing.T) {
		in := "Total:\t4O5\r\nLine  end   \n\n\n\nNext\fPage"
		want := "Total: 405\nLine end\n\nNext\n\nPage"
		assert.Equal(t, want, Normalize(in))
	})

	t.Run("digit O artifact needs digits on both sides", func(t *testing.T) {
		assert.Equal(t, "1O is fine, 102 is fixed", Normalize("1O is fine, 1O2 is fixed"))
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Equal(t, "", Normalize(""))
		assert.Equal(t, "", Normalize("   \n\n  "))
	})
}

func TestQualityWarnings(t *testing.T) {
	t.Run("clean text", func(t *testing.T) {
		warns := QualityWarnings("This is a perfectly ordinary sentence with enough words to pass.")
		assert.Empty(t, warns)
	})

	t.Run("garbled text", func(t *testing.T) {
		warns := QualityWarnings("|||||| 111lll lll111 ooo000")
		joined := strings.Join(warns, "\n")
		assert.Contains(t, joined, "artifact density")
		assert.Contains(t, joined, "very little recognized text")
	})

	t.Run("blank text", func(t *testing.T) {
		assert.Empty(t, QualityWarnings("   "))
	})
}

func TestHeuristicConfidence(t *testing.T) {
	t.Run("document-like text scores high", func(t *testing.T) {
		text := "Name: Jane Roe\n" +
			"Date of Birth: 12/07/1990\n" +
			"Passport Number: A1234567\n" +
			"Contact: jane.roe@example.com\n" +
			"Issued by the Department of State, valid for ten years."
		assert.InDelta(t, 0.9, float64(heuristicConfidence(text)), 1e-3)
	})

	t.Run("pure artifacts bottom out", func(t *testing.T) {
		assert.Zero(t, heuristicConfidence("|||||| 111lll lll111 ooo000 rnrnrn"))
	})

	t.Run("empty text", func(t *testing.T) {
		assert.Zero(t, heuristicConfidence(""))
	})

	t.Run("plain prose gets the base score", func(t *testing.T) {
		assert.InDelta(t, 0.2, float64(heuristicConfidence("just a few plain words")), 1e-3)
	})
}

func TestScoreFuncs(t *testing.T) {
	assert.Equal(t, 2.0, LengthScore("  ab  "))
	assert.Zero(t, LengthScore("   "))

	clean := "a clean line of readable words"
	assert.Equal(t, LengthScore(clean), QualityWeightedScore(clean))

	garbled := "|||| |||| abc"
	assert.Less(t, QualityWeightedScore(garbled), LengthScore(garbled))
}
