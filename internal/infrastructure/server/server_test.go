package server

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AgentOS/htmlmanager/internal/infrastructure/config"
)

const counterModule = `
exports.CounterModel = widgets.model({value: 0, _view_name: "CounterView"});
exports.CounterView = widgets.view(function (model) {
	return {tag: "span", className: "counter", text: "count " + model.get("value")};
});
`

func TestServerRendersWithModuleDirectory(t *testing.T) {
	dir := t.TempDir()
	pkg := filepath.Join(dir, "counter")
	require.NoError(t, os.MkdirAll(pkg, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(pkg, "package.json"), []byte(`{"name": "counter", "version": "1.0.0"}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(pkg, "index.js"), []byte(counterModule), 0o644))

	cfg := config.Default()
	cfg.Loader.ModulesDir = dir
	cfg.Render.KeepScripts = false
	srv, err := NewServer(cfg, nil)
	require.NoError(t, err)
	defer srv.Close()

	page := `<html><body>
<script type="application/vnd.jupyter.widget-state+json">
{"version_major": 2, "version_minor": 0, "state": {
  "c1": {"model_name": "CounterModel", "model_module": "counter", "model_module_version": "^1.0.0",
         "state": {"value": 3}}
}}
</script>
<script type="application/vnd.jupyter.widget-view+json">{"model_id": "c1"}</script>
</body></html>`

	req := httptest.NewRequest(http.MethodPost, "/api/render", strings.NewReader(page))
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-Widgets-Rendered"))
	assert.Contains(t, w.Body.String(), `<span class="counter">count 3</span>`)
	assert.NotEmpty(t, w.Header().Get("X-Trace-ID"))
}

func TestServerCompressesResponses(t *testing.T) {
	srv, err := NewServer(config.Default(), nil)
	require.NoError(t, err)
	defer srv.Close()

	page := "<html><body><p>" + strings.Repeat("plain text ", 400) + "</p></body></html>"
	req := httptest.NewRequest(http.MethodPost, "/api/render", strings.NewReader(page))
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
	zr, err := gzip.NewReader(w.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Contains(t, string(body), "plain text plain text")
	assert.Equal(t, "0", w.Header().Get("X-Widgets-Rendered"))
}

func TestNewServerRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Port = "nope"
	_, err := NewServer(cfg, nil)
	assert.Error(t, err)
}
