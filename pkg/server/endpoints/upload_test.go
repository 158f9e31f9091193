package endpoints

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warehouse-in-go/pkg/model"
	"warehouse-in-go/pkg/server/store"
	"warehouse-in-go/pkg/token"
)

func TestUploadSdistCreatesProjectAndRelease(t *testing.T) {
	env := newTestEnv(t)
	cleartext := env.addUser(t, &model.User{ID: "u1", Username: "alice"})

	content := []byte("sdist bytes")
	req := uploadRequest(t, cleartext, map[string]string{
		"name":    "Sample.Project",
		"version": "1.0",
		"summary": "A sample project",
	}, "sample_project-1.0.tar.gz", content)

	rec := env.do(req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "sample_project-1.0.tar.gz", resp["filename"])

	project, err := env.projects.FindProject("sample-project")
	require.NoError(t, err)
	assert.Equal(t, "Sample.Project", project.Name)
	assert.Equal(t, int64(len(content)), project.TotalSize)

	// Uploader became owner
	allowed, err := env.projects.HasRole(project.ID, "u1")
	require.NoError(t, err)
	assert.True(t, allowed)

	release, err := env.releases.FindRelease(project.ID, "1.0")
	require.NoError(t, err)
	assert.Equal(t, "A sample project", release.Summary)
	assert.False(t, release.IsPrerelease)

	file, err := env.files.FindFile("sample_project-1.0.tar.gz")
	require.NoError(t, err)
	assert.Equal(t, "sdist", file.PackageType)
	assert.Equal(t, "source", file.PythonVersion)

	// Bytes landed in storage and are downloadable
	dl := env.get("/packages/" + file.Path)
	require.Equal(t, http.StatusOK, dl.Code)
	assert.True(t, bytes.Equal(content, dl.Body.Bytes()))
}

func TestUploadWheelExtractsMetadata(t *testing.T) {
	env := newTestEnv(t)
	cleartext := env.addUser(t, &model.User{ID: "u1", Username: "alice"})

	wheel := buildTestWheel(t, "sample_project", "3.0.0")
	req := uploadRequest(t, cleartext, map[string]string{
		"name":     "sample-project",
		"version":  "3.0.0",
		"filetype": "bdist_wheel",
	}, "sample_project-3.0.0-py3-none-any.whl", wheel)

	rec := env.do(req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	file, err := env.files.FindFile("sample_project-3.0.0-py3-none-any.whl")
	require.NoError(t, err)
	assert.Equal(t, "bdist_wheel", file.PackageType)
	assert.Equal(t, "py3", file.PythonVersion)
	require.NotNil(t, file.MetadataSHA256)

	// Extracted METADATA stored next to the wheel
	dl := env.get("/packages/" + file.Path + ".metadata")
	require.Equal(t, http.StatusOK, dl.Code)
	assert.Contains(t, dl.Body.String(), "Name: sample_project")
}

func TestUploadRejections(t *testing.T) {
	testCases := []struct {
		name     string
		fields   map[string]string
		filename string
		content  []byte
		wantCode int
		wantErr  string
	}{
		{
			name:     "wrong action",
			fields:   map[string]string{":action": "submit", "name": "demo", "version": "1.0"},
			filename: "demo-1.0.tar.gz",
			content:  []byte("x"),
			wantCode: http.StatusBadRequest,
			wantErr:  "unknown :action",
		},
		{
			name:     "bad protocol version",
			fields:   map[string]string{"protocol_version": "2", "name": "demo", "version": "1.0"},
			filename: "demo-1.0.tar.gz",
			content:  []byte("x"),
			wantCode: http.StatusBadRequest,
			wantErr:  "protocol version",
		},
		{
			name:     "invalid project name",
			fields:   map[string]string{"name": "-bad-", "version": "1.0"},
			filename: "demo-1.0.tar.gz",
			content:  []byte("x"),
			wantCode: http.StatusBadRequest,
			wantErr:  "invalid project name",
		},
		{
			name:     "unparsable version",
			fields:   map[string]string{"name": "demo", "version": "not.a.version!"},
			filename: "demo-1.0.tar.gz",
			content:  []byte("x"),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "local version",
			fields:   map[string]string{"name": "demo", "version": "1.0+local.1"},
			filename: "demo-1.0.tar.gz",
			content:  []byte("x"),
			wantCode: http.StatusBadRequest,
			wantErr:  "local versions",
		},
		{
			name:     "bad metadata version",
			fields:   map[string]string{"name": "demo", "version": "1.0", "metadata_version": "9.9"},
			filename: "demo-1.0.tar.gz",
			content:  []byte("x"),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "no digests",
			fields:   map[string]string{"name": "demo", "version": "1.0", "sha256_digest": "-"},
			filename: "demo-1.0.tar.gz",
			content:  []byte("x"),
			wantCode: http.StatusBadRequest,
			wantErr:  "md5_digest or sha256_digest",
		},
		{
			name:     "filename does not match project",
			fields:   map[string]string{"name": "demo", "version": "1.0"},
			filename: "other-1.0.tar.gz",
			content:  []byte("x"),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "filename version mismatch",
			fields:   map[string]string{"name": "demo", "version": "1.0"},
			filename: "demo-2.0.tar.gz",
			content:  []byte("x"),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "missing file part",
			fields:   map[string]string{"name": "demo", "version": "1.0"},
			filename: "",
			content:  nil,
			wantCode: http.StatusBadRequest,
			wantErr:  "must include a file",
		},
		{
			name:     "empty file",
			fields:   map[string]string{"name": "demo", "version": "1.0"},
			filename: "demo-1.0.tar.gz",
			content:  []byte{},
			wantCode: http.StatusBadRequest,
			wantErr:  "empty file",
		},
		{
			name: "sha256 mismatch",
			fields: map[string]string{
				"name": "demo", "version": "1.0",
				"sha256_digest": "0000000000000000000000000000000000000000000000000000000000000000",
			},
			filename: "demo-1.0.tar.gz",
			content:  []byte("x"),
			wantCode: http.StatusBadRequest,
			wantErr:  "sha256 digest does not match",
		},
		{
			name:     "filename with markup characters",
			fields:   map[string]string{"name": "demo", "version": "1.0", "filetype": "bdist_wheel"},
			filename: `demo-1.0-py3-none-any"><script>x<.whl`,
			content:  []byte("x"),
			wantCode: http.StatusBadRequest,
			wantErr:  "invalid filename",
		},
		{
			name:     "wheel that is not a zip",
			fields:   map[string]string{"name": "demo", "version": "1.0", "filetype": "bdist_wheel"},
			filename: "demo-1.0-py3-none-any.whl",
			content:  []byte("not a zip"),
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t)
			cleartext := env.addUser(t, &model.User{ID: "u1", Username: "alice"})

			rec := env.do(uploadRequest(t, cleartext, tc.fields, tc.filename, tc.content))
			assert.Equal(t, tc.wantCode, rec.Code, rec.Body.String())
			if tc.wantErr != "" {
				assert.Contains(t, rec.Body.String(), tc.wantErr)
			}
		})
	}
}

func TestUploadRequiresMembership(t *testing.T) {
	env := newTestEnv(t)
	owner := env.addUser(t, &model.User{ID: "u1", Username: "alice"})
	interloper := env.addUser(t, &model.User{ID: "u2", Username: "mallory"})

	rec := env.do(uploadRequest(t, owner, map[string]string{
		"name": "demo", "version": "1.0",
	}, "demo-1.0.tar.gz", []byte("first")))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(uploadRequest(t, interloper, map[string]string{
		"name": "demo", "version": "1.1",
	}, "demo-1.1.tar.gz", []byte("second")))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "not allowed to upload")
}

func TestUploadScopedTokenOtherProject(t *testing.T) {
	env := newTestEnv(t)
	user := &model.User{ID: "u1", Username: "alice"}
	require.NoError(t, env.users.CreateUser(user))

	scope := "project-a"
	cleartext, record, err := token.Generate(user.ID, "test", &scope)
	require.NoError(t, err)
	require.NoError(t, env.users.CreateToken(record))

	rec := env.do(uploadRequest(t, cleartext, map[string]string{
		"name": "project-b", "version": "1.0",
	}, "project_b-1.0.tar.gz", []byte("x")))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "not scoped")

	// The rejected upload must not have registered the project.
	_, err = env.projects.FindProject("project-b")
	assert.ErrorIs(t, err, store.ErrProjectNotFound)
}

func TestUploadToQuarantinedProject(t *testing.T) {
	env := newTestEnv(t)
	cleartext := env.addUser(t, &model.User{ID: "u1", Username: "alice"})

	rec := env.do(uploadRequest(t, cleartext, map[string]string{
		"name": "demo", "version": "1.0",
	}, "demo-1.0.tar.gz", []byte("first")))
	require.Equal(t, http.StatusOK, rec.Code)

	project, err := env.projects.FindProject("demo")
	require.NoError(t, err)
	status := model.LifecycleStatusQuarantineEnter
	require.NoError(t, env.projects.SetLifecycleStatus(project.ID, &status, "test"))

	rec = env.do(uploadRequest(t, cleartext, map[string]string{
		"name": "demo", "version": "1.1",
	}, "demo-1.1.tar.gz", []byte("second")))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "quarantine")
}

func TestUploadFilenameNeverReused(t *testing.T) {
	env := newTestEnv(t)
	cleartext := env.addUser(t, &model.User{ID: "u1", Username: "alice"})

	rec := env.do(uploadRequest(t, cleartext, map[string]string{
		"name": "demo", "version": "1.0",
	}, "demo-1.0.tar.gz", []byte("first")))
	require.Equal(t, http.StatusOK, rec.Code)

	// Same filename, different bytes
	rec = env.do(uploadRequest(t, cleartext, map[string]string{
		"name": "demo", "version": "1.0",
	}, "demo-1.0.tar.gz", []byte("different")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "previously used")
}

func TestUploadDuplicateDigests(t *testing.T) {
	env := newTestEnv(t)
	cleartext := env.addUser(t, &model.User{ID: "u1", Username: "alice"})

	content := []byte("identical bytes")
	rec := env.do(uploadRequest(t, cleartext, map[string]string{
		"name": "demo", "version": "1.0",
	}, "demo-1.0.tar.gz", content))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(uploadRequest(t, cleartext, map[string]string{
		"name": "demo", "version": "1.1",
	}, "demo-1.1.tar.gz", content))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "file already exists")
}

func TestUploadSizeLimits(t *testing.T) {
	env := newTestEnv(t)
	cleartext := env.addUser(t, &model.User{ID: "u1", Username: "alice"})

	// Create the project, then clamp its per-file limit
	rec := env.do(uploadRequest(t, cleartext, map[string]string{
		"name": "demo", "version": "1.0",
	}, "demo-1.0.tar.gz", []byte("ok")))
	require.Equal(t, http.StatusOK, rec.Code)

	limit := int64(4)
	env.projects.mu.Lock()
	env.projects.projects["demo"].UploadLimit = &limit
	env.projects.mu.Unlock()

	rec = env.do(uploadRequest(t, cleartext, map[string]string{
		"name": "demo", "version": "1.1",
	}, "demo-1.1.tar.gz", []byte("way too large")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Contains(t, rec.Body.String(), "upload limit")
}

func TestUploadProhibitedName(t *testing.T) {
	env := newTestEnv(t)
	cleartext := env.addUser(t, &model.User{ID: "u1", Username: "alice"})
	require.NoError(t, env.projects.Prohibit("demo", "admin", "squatting"))

	rec := env.do(uploadRequest(t, cleartext, map[string]string{
		"name": "demo", "version": "1.0",
	}, "demo-1.0.tar.gz", []byte("x")))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "not allowed")
}

func TestUploadUnauthenticated(t *testing.T) {
	env := newTestEnv(t)

	req := uploadRequest(t, "wh-bogus.bogus", map[string]string{
		"name": "demo", "version": "1.0",
	}, "demo-1.0.tar.gz", []byte("x"))
	rec := env.do(req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUploadsDisabled(t *testing.T) {
	env := newTestEnv(t)
	cleartext := env.addUser(t, &model.User{ID: "u1", Username: "alice"})
	env.server.Config.UploadsEnabled = false

	rec := env.do(uploadRequest(t, cleartext, map[string]string{
		"name": "demo", "version": "1.0",
	}, "demo-1.0.tar.gz", []byte("x")))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
