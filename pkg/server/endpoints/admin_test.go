package endpoints

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warehouse-in-go/pkg/model"
)

func adminSession(t *testing.T, env *testEnv, cleartext string) string {
	t.Helper()
	req := httptest.NewRequest("POST", "/admin/sessions", nil)
	req.SetBasicAuth("__token__", cleartext)
	rec := env.do(req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	session, _ := resp["token"].(string)
	require.NotEmpty(t, session)
	return session
}

func adminRequest(method, path, session string, body []byte) *http.Request {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+session)
	return req
}

func TestAdminSessionMinting(t *testing.T) {
	env := newTestEnv(t)
	admin := env.addUser(t, &model.User{ID: "a1", Username: "root", IsAdmin: true})
	regular := env.addUser(t, &model.User{ID: "u1", Username: "alice"})

	session := adminSession(t, env, admin)
	assert.NotEmpty(t, session)

	req := httptest.NewRequest("POST", "/admin/sessions", nil)
	req.SetBasicAuth("__token__", regular)
	rec := env.do(req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminQuarantineLifecycle(t *testing.T) {
	env := newTestEnv(t)
	admin := env.addUser(t, &model.User{ID: "a1", Username: "root", IsAdmin: true})
	uploader := env.addUser(t, &model.User{ID: "u1", Username: "alice"})
	seedProject(t, env, uploader, "demo", map[string][]byte{"demo-1.0.tar.gz": []byte("x")})

	session := adminSession(t, env, admin)

	// Enter
	body, _ := json.Marshal(map[string]string{"reason": "manual review"})
	rec := env.do(adminRequest("POST", "/admin/projects/demo/quarantine", session, body))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	project, err := env.projects.FindProject("demo")
	require.NoError(t, err)
	assert.True(t, project.InQuarantine())
	assert.Equal(t, http.StatusNotFound, env.get("/simple/demo/").Code)

	// Double enter conflicts
	rec = env.do(adminRequest("POST", "/admin/projects/demo/quarantine", session, body))
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Listed
	rec = env.do(adminRequest("GET", "/admin/quarantine", session, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"demo"`)

	// Exit restores visibility
	rec = env.do(adminRequest("DELETE", "/admin/projects/demo/quarantine", session, nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	project, err = env.projects.FindProject("demo")
	require.NoError(t, err)
	assert.False(t, project.InQuarantine())
	assert.Equal(t, http.StatusOK, env.get("/simple/demo/").Code)

	// Exit again conflicts
	rec = env.do(adminRequest("DELETE", "/admin/projects/demo/quarantine", session, nil))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAdminProhibitedNames(t *testing.T) {
	env := newTestEnv(t)
	admin := env.addUser(t, &model.User{ID: "a1", Username: "root", IsAdmin: true})
	session := adminSession(t, env, admin)

	// Empty list
	rec := env.do(adminRequest("GET", "/admin/prohibited-names", session, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", rec.Body.String())

	// Prohibit a name; it is normalized before being recorded
	body, _ := json.Marshal(map[string]string{"name": "Requests2", "comment": "typosquat"})
	rec = env.do(adminRequest("POST", "/admin/prohibited-names", session, body))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"name":"requests2"`)

	// Double prohibit conflicts
	rec = env.do(adminRequest("POST", "/admin/prohibited-names", session, body))
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Listed with who and why
	rec = env.do(adminRequest("GET", "/admin/prohibited-names", session, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"requests2"`)
	assert.Contains(t, rec.Body.String(), `"prohibited_by":"root"`)
	assert.Contains(t, rec.Body.String(), `"comment":"typosquat"`)

	// Registration of the prohibited name is refused
	uploader := env.addUser(t, &model.User{ID: "u1", Username: "alice"})
	rec = env.do(uploadRequest(t, uploader, map[string]string{
		"name": "requests2", "version": "1.0",
	}, "requests2-1.0.tar.gz", []byte("x")))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminObservationLists(t *testing.T) {
	env := newTestEnv(t)
	admin := env.addUser(t, &model.User{ID: "a1", Username: "root", IsAdmin: true})
	uploader := env.addUser(t, &model.User{ID: "u1", Username: "alice"})
	observer := env.addUser(t, &model.User{ID: "o1", Username: "scanner", IsObserver: true})
	seedProject(t, env, uploader, "demo", map[string][]byte{"demo-1.0.tar.gz": []byte("x")})

	rec := env.do(observationRequest(t, observer, "demo", map[string]interface{}{
		"kind":    "is_spam",
		"summary": "ad spam",
	}))
	require.Equal(t, http.StatusCreated, rec.Code)

	session := adminSession(t, env, admin)

	rec = env.do(adminRequest("GET", "/admin/observations", session, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var recent []ObservationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &recent))
	require.Len(t, recent, 1)
	assert.Equal(t, "is_spam", recent[0].Kind)

	rec = env.do(adminRequest("GET", "/admin/projects/demo/observations", session, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var forProject []ObservationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &forProject))
	require.Len(t, forProject, 1)
	assert.Equal(t, "ad spam", forProject[0].Summary)

	rec = env.do(adminRequest("GET", "/admin/observations?limit=bogus", session, nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminEndpointsRequireSession(t *testing.T) {
	env := newTestEnv(t)

	rec := env.get("/admin/quarantine")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
