package cli

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Brownie44l1/vision-api/internal/artifact"
	"github.com/Brownie44l1/vision-api/internal/config"
	"github.com/Brownie44l1/vision-api/internal/imaging"
	"github.com/Brownie44l1/vision-api/internal/model"
)

func defaults(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	return cfg
}

func TestResolveVariant(t *testing.T) {
	v, err := resolveVariant(config.ModelConfig{Variant: "generic", Preprocessing: "vgg16", InputWidth: 224, InputHeight: 224, Outputs: 20})
	require.NoError(t, err)
	assert.Equal(t, imaging.ModeVGG16, v.Preprocessing)
	assert.Equal(t, 224, v.InputWidth)
	assert.Equal(t, 20, v.Outputs)

	_, err = resolveVariant(config.ModelConfig{Variant: "binary", Preprocessing: "rescale"})
	assert.Error(t, err)

	_, err = resolveVariant(config.ModelConfig{Variant: "mobilenet"})
	assert.Error(t, err)
}

func TestNewSource(t *testing.T) {
	binary, err := model.LookupVariant("binary")
	require.NoError(t, err)
	fruits, err := model.LookupVariant("fruits")
	require.NoError(t, err)

	cfg := defaults(t)
	src, err := newSource(cfg, binary, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "huggingface:carlosaguayo/cats_vs_dogs@main/model.onnx", src.String())

	src, err = newSource(cfg, fruits, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, src)

	cfg.Source.HuggingFace.RepoID = "org/fruits-360"
	src, err = newSource(cfg, fruits, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "huggingface:org/fruits-360@main/model.onnx", src.String())

	cfg.Source.Kind = config.SourceMinio
	cfg.Source.Minio.Endpoint = "localhost:9000"
	cfg.Source.Minio.Object = "fruits/model.onnx"
	src, err = newSource(cfg, fruits, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "minio:models/fruits/model.onnx", src.String())

	cfg.Source.Kind = config.SourceNone
	src, err = newSource(cfg, fruits, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, src)
}

func TestLoadLabels(t *testing.T) {
	binary, err := model.LookupVariant("binary")
	require.NoError(t, err)
	fruits, err := model.LookupVariant("fruits")
	require.NoError(t, err)

	cfg := config.ModelConfig{LabelsFile: filepath.Join(t.TempDir(), "missing.txt")}
	assert.Equal(t, []string{"Dog", "Cat"}, loadLabels(cfg, binary, zap.NewNop()).Names())
	assert.Equal(t, 131, loadLabels(cfg, fruits, zap.NewNop()).Len())
}

func TestFetchModelCommand(t *testing.T) {
	hub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/carlosaguayo/cats_vs_dogs/resolve/main/model.onnx" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("weights"))
	}))
	defer hub.Close()

	dir := t.TempDir()
	modelPath := filepath.Join(dir, "models", "cats_vs_dogs.onnx")
	labelsPath := filepath.Join(dir, "models", "classes.txt")
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
model:
  variant: binary
  path: `+modelPath+`
  labels_file: `+labelsPath+`
source:
  huggingface:
    base_url: `+hub.URL+`
log:
  level: error
`), 0o644))

	root := NewRootCmd()
	root.SetArgs([]string{"fetch-model", "--config", cfgPath})
	require.NoError(t, root.Execute())

	got, err := os.ReadFile(modelPath)
	require.NoError(t, err)
	assert.Equal(t, "weights", string(got))

	classes, err := os.ReadFile(labelsPath)
	require.NoError(t, err)
	assert.Equal(t, "Dog\nCat\n", string(classes))
}

func TestFetchModelCommand_NoSource(t *testing.T) {
	t.Setenv("VISION_SOURCE_KIND", "none")
	t.Setenv("VISION_MODEL_PATH", filepath.Join(t.TempDir(), "model.onnx"))
	t.Setenv("VISION_LOG_LEVEL", "error")

	root := NewRootCmd()
	root.SetArgs([]string{"fetch-model"})
	assert.ErrorIs(t, root.Execute(), artifact.ErrNoSource)
}

type nopSession struct{}

func (nopSession) Run([]float32) ([]float32, error) { return []float32{0.5}, nil }

func (nopSession) Close() error { return nil }

func TestServe_StopsWithContext(t *testing.T) {
	cfg := defaults(t)
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 0
	cfg.Server.Mode = "test"
	cfg.Model.Path = filepath.Join(t.TempDir(), "model.onnx")
	require.NoError(t, os.WriteFile(cfg.Model.Path, []byte("onnx"), 0o644))

	open := func(string, model.SessionSpec) (model.Session, error) { return nopSession{}, nil }

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, serve(ctx, cfg, open, zap.NewNop()))
}

func freePort(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	_, port, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	return port
}

func TestRootCommand_ServesByDefault(t *testing.T) {
	t.Setenv("VISION_SERVER_HOST", "127.0.0.1")
	t.Setenv("VISION_SERVER_PORT", freePort(t))
	t.Setenv("VISION_SERVER_MODE", "test")
	t.Setenv("VISION_SOURCE_KIND", "none")
	t.Setenv("VISION_MODEL_PATH", filepath.Join(t.TempDir(), "absent.onnx"))
	t.Setenv("VISION_LOG_LEVEL", "error")

	root := NewRootCmd()
	require.NotNil(t, root.RunE)
	root.SetArgs([]string{})

	// A cancelled context stands in for SIGTERM: the server starts with the
	// model in LOAD_FAILED and shuts down cleanly.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, root.ExecuteContext(ctx))
}

func TestRootCommand_RejectsArgs(t *testing.T) {
	root := NewRootCmd()
	root.SetArgs([]string{"bogus"})
	root.SetOut(new(strings.Builder))
	root.SetErr(new(strings.Builder))
	assert.Error(t, root.Execute())
}
