package endpoints

import (
	"archive/zip"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"warehouse-in-go/pkg/config"
	"warehouse-in-go/pkg/model"
	"warehouse-in-go/pkg/observations"
	"warehouse-in-go/pkg/server"
	"warehouse-in-go/pkg/storage"
	"warehouse-in-go/pkg/token"
)

// testEnv wires a server against in-memory stores and local file storage.
type testEnv struct {
	server       *server.Server
	projects     *memProjects
	releases     *memReleases
	files        *memFiles
	users        *memUsers
	observations *memObservations
	health       *memHealth
	storage      *storage.LocalStorage
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	t.Setenv("WAREHOUSE_ADMIN_JWT_SECRET", "test-secret")

	env := &testEnv{
		projects:     newMemProjects(),
		releases:     newMemReleases(),
		files:        newMemFiles(),
		users:        newMemUsers(),
		observations: newMemObservations(),
		health:       &memHealth{},
	}

	localStorage, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	env.storage = localStorage

	cfg := config.NewDefault()
	stores := server.Stores{
		Projects:     env.projects,
		Releases:     env.releases,
		Files:        env.files,
		Users:        env.users,
		Observations: env.observations,
		Health:       env.health,
	}
	evaluator := observations.NewEvaluator(env.projects, env.observations, cfg.QuarantineReportThreshold)

	env.server = server.NewServer(stores, localStorage, evaluator, cfg, nil, "localhost", "0")
	require.NoError(t, RegisterAll(env.server))
	return env
}

// addUser creates a user plus an API token and returns the cleartext token.
func (env *testEnv) addUser(t *testing.T, user *model.User) string {
	t.Helper()
	require.NoError(t, env.users.CreateUser(user))
	cleartext, record, err := token.Generate(user.ID, "test", nil)
	require.NoError(t, err)
	require.NoError(t, env.users.CreateToken(record))
	return cleartext
}

func (env *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	env.server.Router.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) get(path string) *httptest.ResponseRecorder {
	return env.do(httptest.NewRequest("GET", path, nil))
}

// uploadRequest builds a multipart upload form. Missing digests are filled
// from the content unless explicitly set to "-".
func uploadRequest(t *testing.T, cleartext string, fields map[string]string, filename string, content []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	defaults := map[string]string{
		":action":          "file_upload",
		"protocol_version": "1",
		"metadata_version": "2.1",
		"filetype":         "sdist",
	}
	for k, v := range defaults {
		if _, ok := fields[k]; !ok {
			fields[k] = v
		}
	}
	if _, ok := fields["sha256_digest"]; !ok {
		sum := sha256.Sum256(content)
		fields["sha256_digest"] = hex.EncodeToString(sum[:])
	}
	for k, v := range fields {
		if v == "-" {
			continue
		}
		require.NoError(t, writer.WriteField(k, v))
	}
	if filename != "" {
		part, err := writer.CreateFormFile("content", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/legacy/", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.SetBasicAuth("__token__", cleartext)
	return req
}

// buildTestWheel assembles a minimal valid wheel archive in memory.
func buildTestWheel(t *testing.T, distribution, version string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	metadata := fmt.Sprintf("Metadata-Version: 2.1\nName: %s\nVersion: %s\n\nDescription body.\n", distribution, version)
	files := map[string]string{
		fmt.Sprintf("%s/__init__.py", distribution):                    "",
		fmt.Sprintf("%s-%s.dist-info/METADATA", distribution, version): metadata,
		fmt.Sprintf("%s-%s.dist-info/WHEEL", distribution, version):    "Wheel-Version: 1.0\n",
		fmt.Sprintf("%s-%s.dist-info/RECORD", distribution, version):   "",
	}
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = io.WriteString(w, content)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}
