package fields

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docgate/docgate/constants"
	"github.com/docgate/docgate/internal/entity"
)

type extractorFunc func(ctx context.Context, text string, docType constants.DocumentType) (*entity.Fields, error)

func (f extractorFunc) Extract(ctx context.Context, text string, docType constants.DocumentType) (*entity.Fields, error) {
	return f(ctx, text, docType)
}

func fixedFields(pairs ...entity.FieldValue) extractorFunc {
	return func(context.Context, string, constants.DocumentType) (*entity.Fields, error) {
		out := entity.NewFields()
		for _, fv := range pairs {
			out.Set(fv.Name, fv.Value, fv.Confidence)
		}
		return out, nil
	}
}

func TestMerge(t *testing.T) {
	primary := entity.NewFields()
	primary.Set("name", "ANITA VERMA", 0.8)
	primary.Set("total", "1,249.50", 0.9)

	secondary := entity.NewFields()
	secondary.Set("name", "Anita Verma", 0.95)
	secondary.Set("total", "1249", 0.4)
	secondary.Set("vendor", "Acme Supplies", 0.7)

	got := Merge(primary, secondary)

	require.Equal(t, []string{"name", "total", "vendor"}, got.Names())

	name, _ := got.Get("name")
	assert.Equal(t, "Anita Verma", name.Value)
	assert.InDelta(t, 0.95, name.Confidence, 1e-9)

	total, _ := got.Get("total")
	assert.Equal(t, "1,249.50", total.Value)
	assert.InDelta(t, 0.9, total.Confidence, 1e-9)

	vendor, _ := got.Get("vendor")
	assert.Equal(t, "Acme Supplies", vendor.Value)
}

func TestLocalExtractorQAFillsGaps(t *testing.T) {
	regex := fixedFields(
		entity.FieldValue{Name: "invoice_number", Value: "INV-2024-001", Confidence: 0.9},
	)
	qa := fixedFields(
		entity.FieldValue{Name: "vendor", Value: "Acme Supplies", Confidence: 0.6},
	)

	ex := NewLocalExtractor(regex, qa, quietLogger())
	got, err := ex.Extract(context.Background(), "text", constants.Invoice)
	require.NoError(t, err)

	assert.Equal(t, []string{"invoice_number", "vendor"}, got.Names())
}

func TestLocalExtractorQADownKeepsRegexFloor(t *testing.T) {
	regex := fixedFields(
		entity.FieldValue{Name: "invoice_number", Value: "INV-2024-001", Confidence: 0.9},
	)
	qa := extractorFunc(func(context.Context, string, constants.DocumentType) (*entity.Fields, error) {
		return nil, errors.New("sidecar down")
	})

	ex := NewLocalExtractor(regex, qa, quietLogger())
	got, err := ex.Extract(context.Background(), "text", constants.Invoice)
	require.NoError(t, err)

	number, ok := got.Get("invoice_number")
	require.True(t, ok)
	assert.Equal(t, "INV-2024-001", number.Value)
}

func TestLocalExtractorNoQA(t *testing.T) {
	regex := fixedFields(
		entity.FieldValue{Name: "total", Value: "99.00", Confidence: 0.9},
	)
	ex := NewLocalExtractor(regex, nil, quietLogger())
	got, err := ex.Extract(context.Background(), "text", constants.Invoice)
	require.NoError(t, err)
	assert.Equal(t, []string{"total"}, got.Names())
}

func TestLocalExtractorRegexFailureStops(t *testing.T) {
	regex := extractorFunc(func(context.Context, string, constants.DocumentType) (*entity.Fields, error) {
		return nil, errors.New("broken")
	})
	ex := NewLocalExtractor(regex, nil, quietLogger())
	_, err := ex.Extract(context.Background(), "text", constants.Invoice)
	assert.Error(t, err)
}
