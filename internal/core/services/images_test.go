package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"plate-lookup-service/internal/core/domain"
	"plate-lookup-service/internal/testutil"
)

func TestImageService_Save(t *testing.T) {
	store := new(testutil.MockImageStore)
	store.On("SaveImage", mock.Anything, mock.AnythingOfType("*domain.SourceImage")).Return(nil).Twice()

	saved, err := NewImageService(store).Save(context.Background(), []Upload{
		{Filename: "a.jpg", Data: []byte{1}},
		{Filename: "b.png", Data: []byte{2}},
	})
	require.NoError(t, err)

	require.Len(t, saved, 2)
	assert.Equal(t, "a.jpg", saved[0].Name)
	assert.Equal(t, domain.FormatPNG, saved[1].Format)
	store.AssertExpectations(t)
}

func TestImageService_Save_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		uploads  []Upload
		expected error
	}{
		{name: "nothing uploaded", uploads: nil, expected: domain.ErrNoImageUploaded},
		{name: "empty filename", uploads: []Upload{{Filename: "", Data: []byte{1}}}, expected: domain.ErrEmptyFilename},
		{name: "unsupported", uploads: []Upload{{Filename: "a.jpg", Data: []byte{1}}, {Filename: "doc.pdf", Data: []byte{1}}}, expected: domain.ErrUnsupportedFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(testutil.MockImageStore)

			_, err := NewImageService(store).Save(context.Background(), tt.uploads)

			assert.ErrorIs(t, err, tt.expected)
			store.AssertNotCalled(t, "SaveImage", mock.Anything, mock.Anything)
		})
	}
}

func TestImageService_Clear(t *testing.T) {
	store := new(testutil.MockImageStore)
	store.On("Clear", mock.Anything).Return(3, nil).Once()

	removed, err := NewImageService(store).Clear(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, removed)

	failing := new(testutil.MockImageStore)
	failing.On("Clear", mock.Anything).Return(1, errors.New("permission denied"))
	_, err = NewImageService(failing).Clear(context.Background())
	assert.Error(t, err)
}
