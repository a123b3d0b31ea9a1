package loaders

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/zeuscene/internal/core/cache"
	"github.com/zeusync/zeuscene/internal/core/resource"
)

func TestFileLoaderReportsProgressAndChecksum(t *testing.T) {
	payload := strings.Repeat("x", chunkSize*2+10)
	fsys := fstest.MapFS{"mesh.bin": {Data: []byte(payload)}}

	var fractions []float64
	res, err := File(fsys)(context.Background(), "mesh.bin", func(f float64) { fractions = append(fractions, f) })
	require.NoError(t, err)

	assert.Equal(t, int64(len(payload)), res.Size)
	assert.Equal(t, Checksum([]byte(payload)), res.Checksum)
	require.NotEmpty(t, fractions)
	assert.Equal(t, 1.0, fractions[len(fractions)-1])
}

func TestFileLoaderMissing(t *testing.T) {
	_, err := File(fstest.MapFS{})(context.Background(), "nope", nil)
	assert.Error(t, err)
}

func TestHTTPLoader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/assets/a.txt" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("hello"))
	}))
	defer srv.Close()

	load := HTTP(srv.Client(), srv.URL+"/assets/")
	res, err := load(context.Background(), "a.txt", nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), res.Value)

	_, err = load(context.Background(), "b.txt", nil)
	assert.ErrorIs(t, err, ErrUnexpectedStatus)
}

func TestYAMLLoaderThroughManager(t *testing.T) {
	fsys := fstest.MapFS{"scene.yaml": {Data: []byte("camera:\n  fov: 60\nname: demo\n")}}
	m := resource.NewManager(cache.New(cache.DefaultConfig()), resource.DefaultConfig(), nil)

	res, err := m.Load(context.Background(), "scene.yaml", resource.KindYAML, YAML(File(fsys)))
	require.NoError(t, err)

	doc := res.Value.(map[string]any)
	assert.Equal(t, "demo", doc["name"])
	assert.Equal(t, 60, doc["camera"].(map[string]any)["fov"])
	assert.Equal(t, resource.KindYAML, res.Kind)
	assert.NotZero(t, res.Checksum)
}
