package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"plate-lookup-service/internal/core/domain"
	ports "plate-lookup-service/internal/core/ports/output"
	"plate-lookup-service/internal/core/services"
	"plate-lookup-service/internal/testutil"
)

type cliMocks struct {
	detector *testutil.MockPlateDetector
	ocr      *testutil.MockOCRClient
	provider *testutil.MockRegistryProvider
	store    *testutil.MockImageStore
	closed   bool
}

func (m *cliMocks) factory(t *testing.T) DepsFactory {
	return func(ctx context.Context) (*Deps, error) {
		resolver, err := services.NewPlateResolver("")
		require.NoError(t, err)
		return &Deps{
			Pipeline: services.NewPipelineService(m.detector, m.ocr, resolver,
				services.NewRegistryLookupService(m.provider, 0), nil, services.PipelineOptions{}),
			Images: services.NewImageService(m.store),
			Close:  func() { m.closed = true },
		}, nil
	}
}

func newCLIMocks() *cliMocks {
	m := &cliMocks{
		detector: new(testutil.MockPlateDetector),
		ocr:      new(testutil.MockOCRClient),
		provider: new(testutil.MockRegistryProvider),
		store:    new(testutil.MockImageStore),
	}
	m.provider.On("Name").Return("A").Maybe()
	return m
}

func execute(t *testing.T, factory DepsFactory, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(factory)
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRunCmd(t *testing.T) {
	m := newCLIMocks()
	path := filepath.Join(t.TempDir(), "car.jpg")
	require.NoError(t, os.WriteFile(path, testutil.JPEG(80, 40), 0o644))

	m.detector.On("Detect", mock.Anything, mock.Anything).Return([]domain.DetectionBox{{X1: 0, Y1: 0, X2: 40, Y2: 20}}, nil)
	m.ocr.On("ExtractText", mock.Anything, mock.Anything).Return(domain.Readable("", "KA05MN4321"), nil)
	m.provider.On("Lookup", mock.Anything, "KA05MN4321").Return(&ports.RegistryResponse{
		StatusCode: http.StatusOK,
		Body:       []byte(`{"owner_name":"R RAO"}`),
	}, nil)

	out, err := execute(t, m.factory(t), "run", "--compact", path)
	require.NoError(t, err)

	var report domain.RunReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Len(t, report.Entries, 1)
	assert.Equal(t, "KA05MN4321", report.Entries[0].Plate)
	assert.True(t, m.closed)
}

func TestRunCmd_RequiresFiles(t *testing.T) {
	_, err := execute(t, newCLIMocks().factory(t), "run")
	assert.Error(t, err)
}

func TestRunCmd_MissingFile(t *testing.T) {
	_, err := execute(t, newCLIMocks().factory(t), "run", filepath.Join(t.TempDir(), "nope.jpg"))
	assert.Error(t, err)
}

func TestClearCmd(t *testing.T) {
	m := newCLIMocks()
	m.store.On("Clear", mock.Anything).Return(3, nil)

	out, err := execute(t, m.factory(t), "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Cleared 3 file(s).")
}
