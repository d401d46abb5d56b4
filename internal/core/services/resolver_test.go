package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plate-lookup-service/internal/core/domain"
)

func TestPlateResolver_DedupsAcrossBatch(t *testing.T) {
	r, err := NewPlateResolver("")
	require.NoError(t, err)

	results := []domain.OcrResult{
		domain.OcrResultFromText("a_plate_0.jpg", "MH12AB1234"),
		domain.OcrResultFromText("a_plate_1.jpg", "mh12ab1234"),
		domain.OcrResultFromText("b_plate_0.jpg", "NOT_FOUND"),
		domain.OcrResultFromText("c_plate_0.jpg", "MH-12-AB-1234"),
	}

	candidates, diags := r.Resolve(results)

	require.Len(t, candidates, 1)
	assert.Equal(t, "MH12AB1234", candidates[0].Text)
	assert.Equal(t, []string{"a_plate_0.jpg", "a_plate_1.jpg", "c_plate_0.jpg"}, candidates[0].Sources)
	assert.Empty(t, diags)
}

func TestPlateResolver_SortedOutput(t *testing.T) {
	r, err := NewPlateResolver("")
	require.NoError(t, err)

	candidates, _ := r.Resolve([]domain.OcrResult{
		domain.Readable("x", "KA01ZZ9999"),
		domain.Readable("y", "DL3CAB1234"),
		domain.Readable("z", "GJ05XY0001"),
	})

	require.Len(t, candidates, 3)
	assert.Equal(t, "DL3CAB1234", candidates[0].Text)
	assert.Equal(t, "GJ05XY0001", candidates[1].Text)
	assert.Equal(t, "KA01ZZ9999", candidates[2].Text)
}

func TestPlateResolver_EmptyAfterNormalization(t *testing.T) {
	r, err := NewPlateResolver("")
	require.NoError(t, err)

	candidates, diags := r.Resolve([]domain.OcrResult{domain.Readable("a_plate_0.jpg", "--")})

	assert.Empty(t, candidates)
	require.Len(t, diags, 1)
	assert.Equal(t, domain.StageResolve, diags[0].Stage)
	assert.Equal(t, "a_plate_0.jpg", diags[0].Subject)
}

func TestPlateResolver_Pattern(t *testing.T) {
	r, err := NewPlateResolver(`[A-Z]{2}[0-9]{1,2}[A-Z]{0,3}[0-9]{4}`)
	require.NoError(t, err)

	candidates, diags := r.Resolve([]domain.OcrResult{
		domain.Readable("a", "MH12AB1234"),
		domain.Readable("b", "HELLO"),
		// a prefix match is not enough, the pattern is anchored
		domain.Readable("c", "MH12AB1234XYZ"),
	})

	require.Len(t, candidates, 1)
	assert.Equal(t, "MH12AB1234", candidates[0].Text)
	assert.Len(t, diags, 2)
}

func TestNewPlateResolver_InvalidPattern(t *testing.T) {
	_, err := NewPlateResolver("([A-Z")
	assert.Error(t, err)
}
