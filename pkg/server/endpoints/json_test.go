package endpoints

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warehouse-in-go/pkg/model"
)

func decodeProject(t *testing.T, body []byte) ProjectResponse {
	t.Helper()
	var resp ProjectResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	return resp
}

func TestProjectJSON(t *testing.T) {
	env := newTestEnv(t)
	cleartext := env.addUser(t, &model.User{ID: "u1", Username: "alice"})
	seedProject(t, env, cleartext, "demo", map[string][]byte{
		"demo-1.0.tar.gz": []byte("one"),
		"demo-2.0.tar.gz": []byte("two"),
	})

	rec := env.get("/pypi/demo/json")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decodeProject(t, rec.Body.Bytes())
	assert.Equal(t, "demo", resp.Info.Name)
	assert.Equal(t, "2.0", resp.Info.Version)
	assert.Len(t, resp.Releases, 2)
	require.Len(t, resp.URLs, 1)
	assert.Equal(t, "demo-2.0.tar.gz", resp.URLs[0].Filename)
	assert.NotEmpty(t, resp.URLs[0].Digests["sha256"])
	assert.NotEmpty(t, resp.URLs[0].Digests["blake2_256"])
}

func TestProjectJSONLatestSkipsPrereleases(t *testing.T) {
	env := newTestEnv(t)
	cleartext := env.addUser(t, &model.User{ID: "u1", Username: "alice"})
	seedProject(t, env, cleartext, "demo", map[string][]byte{
		"demo-1.0.tar.gz":   []byte("stable"),
		"demo-2.0a1.tar.gz": []byte("preview"),
	})

	rec := env.get("/pypi/demo/json")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeProject(t, rec.Body.Bytes())
	assert.Equal(t, "1.0", resp.Info.Version)
}

func TestProjectJSONLatestSkipsYanked(t *testing.T) {
	env := newTestEnv(t)
	cleartext := env.addUser(t, &model.User{ID: "u1", Username: "alice"})
	seedProject(t, env, cleartext, "demo", map[string][]byte{
		"demo-1.0.tar.gz": []byte("keep"),
		"demo-2.0.tar.gz": []byte("yank"),
	})

	project, err := env.projects.FindProject("demo")
	require.NoError(t, err)
	release, err := env.releases.FindRelease(project.ID, "2.0")
	require.NoError(t, err)
	require.NoError(t, env.releases.SetYanked(release.ID, true, "broken build"))

	rec := env.get("/pypi/demo/json")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeProject(t, rec.Body.Bytes())
	assert.Equal(t, "1.0", resp.Info.Version)
}

func TestProjectJSONVersioned(t *testing.T) {
	env := newTestEnv(t)
	cleartext := env.addUser(t, &model.User{ID: "u1", Username: "alice"})
	seedProject(t, env, cleartext, "demo", map[string][]byte{
		"demo-1.0.tar.gz": []byte("one"),
		"demo-2.0.tar.gz": []byte("two"),
	})

	// Non-canonical spelling of the version still resolves
	rec := env.get("/pypi/demo/1.0.0/json")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeProject(t, rec.Body.Bytes())
	assert.Equal(t, "1.0", resp.Info.Version)
	require.Len(t, resp.URLs, 1)
	assert.Equal(t, "demo-1.0.tar.gz", resp.URLs[0].Filename)

	rec = env.get("/pypi/demo/3.0/json")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProjectJSONRedirectsAndMisses(t *testing.T) {
	env := newTestEnv(t)
	cleartext := env.addUser(t, &model.User{ID: "u1", Username: "alice"})
	seedProject(t, env, cleartext, "demo", map[string][]byte{"demo-1.0.tar.gz": []byte("x")})

	rec := env.get("/pypi/Demo/json")
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/pypi/demo/json", rec.Header().Get("Location"))

	rec = env.get("/pypi/unknown/json")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	project, err := env.projects.FindProject("demo")
	require.NoError(t, err)
	status := model.LifecycleStatusQuarantineEnter
	require.NoError(t, env.projects.SetLifecycleStatus(project.ID, &status, ""))

	rec = env.get("/pypi/demo/json")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
