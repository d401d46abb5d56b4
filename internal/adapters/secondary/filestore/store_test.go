package filestore

import (
	"context"
	"path"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plate-lookup-service/internal/core/domain"
)

func newMemStore(t *testing.T) (afero.Fs, *fileStore) {
	t.Helper()
	fs := afero.NewMemMapFs()
	store, err := NewFileStoreFs(fs)
	require.NoError(t, err)
	return fs, store.(*fileStore)
}

func TestFileStore_SaveAndList(t *testing.T) {
	_, store := newMemStore(t)
	ctx := context.Background()

	for _, name := range []string{"b.png", "a.jpg"} {
		img, err := domain.NewSourceImage(name, []byte("data-"+name))
		require.NoError(t, err)
		require.NoError(t, store.SaveImage(ctx, img))
	}

	images, err := store.ListImages(ctx)
	require.NoError(t, err)
	require.Len(t, images, 2)
	assert.Equal(t, "a.jpg", images[0].Name)
	assert.Equal(t, domain.FormatJPEG, images[0].Format)
	assert.Equal(t, []byte("data-a.jpg"), images[0].Data)
	assert.Equal(t, "b.png", images[1].Name)

	again, err := store.ListImages(ctx)
	require.NoError(t, err)
	assert.Equal(t, images[0].ID, again[0].ID)
}

func TestFileStore_ListSkipsNonImages(t *testing.T) {
	fs, store := newMemStore(t)
	require.NoError(t, afero.WriteFile(fs, path.Join(InputDir, "notes.txt"), []byte("x"), 0o644))

	images, err := store.ListImages(context.Background())
	require.NoError(t, err)
	assert.Empty(t, images)
}

func TestFileStore_SaveCropAndClear(t *testing.T) {
	fs, store := newMemStore(t)
	ctx := context.Background()

	img, _ := domain.NewSourceImage("car.jpg", []byte("jpeg"))
	require.NoError(t, store.SaveImage(ctx, img))
	require.NoError(t, store.SaveCrop(ctx, domain.CropArtifact{Filename: "car_plate_0.jpg", Data: []byte("crop")}))

	data, err := afero.ReadFile(fs, path.Join(CroppedDir, "car_plate_0.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "crop", string(data))

	removed, err := store.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	images, err := store.ListImages(ctx)
	require.NoError(t, err)
	assert.Empty(t, images)

	// directories survive a clear
	exists, err := afero.DirExists(fs, CroppedDir)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestNewFileStore_OnDisk(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	img, _ := domain.NewSourceImage("car.jpg", []byte("jpeg"))
	require.NoError(t, store.SaveImage(context.Background(), img))

	exists, err := afero.Exists(afero.NewOsFs(), path.Join(dir, InputDir, "car.jpg"))
	require.NoError(t, err)
	assert.True(t, exists)
}
