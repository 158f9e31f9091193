package endpoints

import (
	"bytes"
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"net/http"
	"os"
	"regexp"
	"strings"

	"golang.org/x/crypto/blake2b"

	"warehouse-in-go/pkg/events"
	"warehouse-in-go/pkg/identity"
	"warehouse-in-go/pkg/model"
	"warehouse-in-go/pkg/packaging"
	"warehouse-in-go/pkg/readme"
	"warehouse-in-go/pkg/server"
	"warehouse-in-go/pkg/server/middleware"
	"warehouse-in-go/pkg/server/store"
	"warehouse-in-go/pkg/storage"
)

// uploadHardCap bounds the request body regardless of per-project limit
// overrides. Nothing legitimate approaches it.
const uploadHardCap int64 = 1 << 30

// multipartMemory is how much of the form is held in memory before spooling
// to disk.
const multipartMemory int64 = 10 << 20

var hexDigestRegex = regexp.MustCompile(`^[0-9a-f]+$`)

// RegisterUploadEndpoint registers the distribution upload endpoint
func RegisterUploadEndpoint(s *server.Server) {
	auth := middleware.NewTokenAuthenticator(s.Stores.Users, s.Config)
	s.Router.Handle("/legacy/", auth.Middleware(handleUpload(s))).Methods("POST")
}

// uploadForm is the validated multipart form of an upload request.
type uploadForm struct {
	Name                   string
	NormalizedName         string
	RawVersion             string
	Version                packaging.Version
	FileType               packaging.FileType
	PyVersion              string
	Summary                string
	Description            string
	DescriptionContentType string
	RequiresPython         string
	Classifiers            []string
	MD5                    string
	SHA256                 string
	Blake2                 string
}

func handleUpload(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := identity.Get(r.Context())
		if !ok {
			respondWithError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		if !s.Config.UploadsEnabled {
			respondWithError(w, http.StatusServiceUnavailable, "uploads are temporarily disabled")
			return
		}

		fail := func(code int, project, version, filename, reason string) {
			events.Log(events.FileUploadEvent{
				Username:     id.Username(),
				ClientIP:     ipString(id),
				Project:      project,
				Version:      version,
				Filename:     filename,
				Success:      false,
				ErrorMessage: reason,
			})
			respondWithError(w, code, reason)
		}

		r.Body = http.MaxBytesReader(w, r.Body, uploadHardCap+multipartMemory)
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			fail(http.StatusBadRequest, "", "", "", "invalid multipart form")
			return
		}
		defer func() { _ = r.MultipartForm.RemoveAll() }()

		if r.FormValue(":action") != "file_upload" {
			fail(http.StatusBadRequest, "", "", "", "unknown :action")
			return
		}
		if pv := r.FormValue("protocol_version"); pv != "" && pv != "1" {
			fail(http.StatusBadRequest, "", "", "", "unknown protocol version")
			return
		}

		form, err := parseUploadForm(r)
		if err != nil {
			fail(http.StatusBadRequest, r.FormValue("name"), r.FormValue("version"), "", err.Error())
			return
		}

		// Scope is checked before the project row exists, so a scoped
		// token cannot register names outside its scope.
		if !id.ScopedTo(form.NormalizedName) {
			fail(http.StatusForbidden, form.Name, form.RawVersion, "",
				"the token is not scoped to this project")
			return
		}

		// Resolve or create the project.
		project, err := s.Stores.Projects.FindProject(form.NormalizedName)
		created := false
		switch {
		case err == nil:
		case errors.Is(err, store.ErrProjectNotFound):
			project = &model.Project{
				ID:             model.NewID(),
				Name:           form.Name,
				NormalizedName: form.NormalizedName,
			}
			if err := s.Stores.Projects.CreateProject(project, id.User.ID); err != nil {
				if errors.Is(err, store.ErrProjectProhibited) {
					fail(http.StatusForbidden, form.Name, form.RawVersion, "",
						fmt.Sprintf("the name %q is not allowed", form.Name))
					return
				}
				fail(http.StatusInternalServerError, form.Name, form.RawVersion, "", "failed to create project")
				return
			}
			created = true
			events.Log(events.ProjectCreateEvent{
				Username: id.Username(),
				ClientIP: ipString(id),
				Project:  form.NormalizedName,
			})
		default:
			fail(http.StatusInternalServerError, form.Name, form.RawVersion, "", "failed to look up project")
			return
		}

		// Authorization.
		if !created && !id.IsAdmin() {
			allowed, err := s.Stores.Projects.HasRole(project.ID, id.User.ID)
			if err != nil {
				fail(http.StatusInternalServerError, form.Name, form.RawVersion, "", "failed to check project roles")
				return
			}
			if !allowed {
				fail(http.StatusForbidden, form.Name, form.RawVersion, "",
					fmt.Sprintf("you are not allowed to upload to project %q", form.Name))
				return
			}
		}
		if project.InQuarantine() {
			fail(http.StatusForbidden, form.Name, form.RawVersion, "",
				fmt.Sprintf("project %q is in quarantine", form.Name))
			return
		}

		// Filename checks.
		content, header, err := r.FormFile("content")
		if err != nil {
			fail(http.StatusBadRequest, form.Name, form.RawVersion, "", "upload payload must include a file")
			return
		}
		defer content.Close()

		filename := header.Filename
		if filename == "" {
			fail(http.StatusBadRequest, form.Name, form.RawVersion, "", "upload payload must include a filename")
			return
		}
		if err := packaging.CheckFilename(filename, form.FileType, form.Name, form.Version); err != nil {
			fail(http.StatusBadRequest, form.Name, form.RawVersion, filename, err.Error())
			return
		}
		used, err := s.Stores.Files.FilenameInJournal(filename)
		if err != nil {
			fail(http.StatusInternalServerError, form.Name, form.RawVersion, filename, "failed to check filename")
			return
		}
		if used {
			fail(http.StatusBadRequest, form.Name, form.RawVersion, filename,
				fmt.Sprintf("the filename %q has been previously used and may not be reused", filename))
			return
		}

		// Stream to a temp file, hashing as it goes.
		fileLimit := s.Config.MaxFileSize()
		if project.UploadLimit != nil {
			fileLimit = *project.UploadLimit
		}

		size, digests, tmp, err := spoolAndHash(content, fileLimit)
		if tmp != nil {
			defer func() {
				tmp.Close()
				os.Remove(tmp.Name())
			}()
		}
		if err != nil {
			if errors.Is(err, errFileTooLarge) {
				fail(http.StatusRequestEntityTooLarge, form.Name, form.RawVersion, filename,
					fmt.Sprintf("file exceeds the upload limit of %d bytes", fileLimit))
				return
			}
			fail(http.StatusInternalServerError, form.Name, form.RawVersion, filename, "failed to read upload")
			return
		}
		if size == 0 {
			fail(http.StatusBadRequest, form.Name, form.RawVersion, filename, "empty file")
			return
		}

		projectLimit := s.Config.MaxProjectSize()
		if project.TotalSizeLimit != nil {
			projectLimit = *project.TotalSizeLimit
		}
		if project.TotalSize+size > projectLimit {
			fail(http.StatusRequestEntityTooLarge, form.Name, form.RawVersion, filename,
				fmt.Sprintf("project %q would exceed its total size quota", form.Name))
			return
		}

		// Declared digests must match what was received.
		if form.MD5 != "" && form.MD5 != digests.md5 {
			fail(http.StatusBadRequest, form.Name, form.RawVersion, filename, "md5 digest does not match uploaded file")
			return
		}
		if form.SHA256 != "" && form.SHA256 != digests.sha256 {
			fail(http.StatusBadRequest, form.Name, form.RawVersion, filename, "sha256 digest does not match uploaded file")
			return
		}
		if form.Blake2 != "" && form.Blake2 != digests.blake2 {
			fail(http.StatusBadRequest, form.Name, form.RawVersion, filename, "blake2_256 digest does not match uploaded file")
			return
		}

		exists, err := s.Stores.Files.ExistsWithDigests(digests.md5, digests.sha256, digests.blake2)
		if err != nil {
			fail(http.StatusInternalServerError, form.Name, form.RawVersion, filename, "failed to check for duplicates")
			return
		}
		if exists {
			fail(http.StatusBadRequest, form.Name, form.RawVersion, filename, "file already exists")
			return
		}

		// Wheels carry their METADATA out for PEP 658 serving.
		var wheelMeta *packaging.WheelMetadata
		pyVersion := form.PyVersion
		if form.FileType == packaging.FileTypeWheel {
			wheelMeta, err = packaging.ExtractWheelMetadata(tmp, size)
			if err != nil {
				fail(http.StatusBadRequest, form.Name, form.RawVersion, filename, err.Error())
				return
			}
			if err := wheelMeta.Check(form.Name, form.Version); err != nil {
				fail(http.StatusBadRequest, form.Name, form.RawVersion, filename, err.Error())
				return
			}
			info, err := packaging.ParseWheelFilename(filename)
			if err != nil {
				fail(http.StatusBadRequest, form.Name, form.RawVersion, filename, err.Error())
				return
			}
			pyVersion = info.PythonTag
		}

		// Find or create the release.
		canonical := form.Version.String()
		release, err := s.Stores.Releases.FindRelease(project.ID, canonical)
		if errors.Is(err, store.ErrReleaseNotFound) {
			release, err = createRelease(s, id, project, form, canonical)
		}
		if err != nil {
			fail(http.StatusInternalServerError, form.Name, form.RawVersion, filename, "failed to store release")
			return
		}

		// Bytes first, rows second: a failed database write can still remove
		// the stored object, the reverse cannot.
		path := storage.PathForFile(digests.blake2, filename)
		if _, err := tmp.Seek(0, io.SeekStart); err != nil {
			fail(http.StatusInternalServerError, form.Name, form.RawVersion, filename, "failed to read upload")
			return
		}
		err = s.Storage.Store(path, tmp, map[string]string{
			"project":      form.NormalizedName,
			"version":      canonical,
			"package-type": string(form.FileType),
		})
		if err != nil {
			fail(http.StatusInternalServerError, form.Name, form.RawVersion, filename, "failed to store file")
			return
		}

		file := &model.File{
			ID:             model.NewID(),
			ReleaseID:      release.ID,
			Filename:       filename,
			Path:           path,
			PackageType:    string(form.FileType),
			PythonVersion:  pyVersion,
			RequiresPython: form.RequiresPython,
			Size:           size,
			MD5Digest:      digests.md5,
			SHA256Digest:   digests.sha256,
			Blake2Digest:   digests.blake2,
			UploadedVia:    r.Header.Get("User-Agent"),
		}
		if wheelMeta != nil {
			metaDigest := sha256.Sum256(wheelMeta.Raw)
			metaHex := hex.EncodeToString(metaDigest[:])
			file.MetadataSHA256 = &metaHex
			if err := s.Storage.Store(path+".metadata", bytes.NewReader(wheelMeta.Raw), nil); err != nil {
				s.Storage.Remove(path)
				fail(http.StatusInternalServerError, form.Name, form.RawVersion, filename, "failed to store file metadata")
				return
			}
		}

		if err := s.Stores.Files.CreateFile(file); err != nil {
			s.Storage.Remove(path)
			if wheelMeta != nil {
				s.Storage.Remove(path + ".metadata")
			}
			if errors.Is(err, store.ErrFilenameTaken) {
				fail(http.StatusBadRequest, form.Name, form.RawVersion, filename,
					fmt.Sprintf("the filename %q has been previously used and may not be reused", filename))
				return
			}
			fail(http.StatusInternalServerError, form.Name, form.RawVersion, filename, "failed to store file")
			return
		}

		if err := s.Stores.Projects.AddTotalSize(project.ID, size); err != nil {
			// The file row exists; size accounting drift is tolerable.
			fmt.Fprintf(os.Stderr, "failed to bump total size for %s: %v\n", form.NormalizedName, err)
		}

		events.Log(events.FileUploadEvent{
			Username: id.Username(),
			ClientIP: ipString(id),
			Project:  form.NormalizedName,
			Version:  canonical,
			Filename: filename,
			Size:     size,
			Success:  true,
		})

		respondWithJSON(w, http.StatusOK, map[string]string{
			"filename": filename,
			"sha256":   digests.sha256,
		})
	}
}

func createRelease(s *server.Server, id *identity.Identity, project *model.Project, form *uploadForm, canonical string) (*model.Release, error) {
	release := &model.Release{
		ID:                     model.NewID(),
		ProjectID:              project.ID,
		Version:                form.RawVersion,
		CanonicalVersion:       canonical,
		IsPrerelease:           form.Version.IsPrerelease(),
		Summary:                form.Summary,
		Description:            form.Description,
		DescriptionContentType: form.DescriptionContentType,
		RequiresPython:         form.RequiresPython,
		UploadedBy:             id.Username(),
	}

	html, rendered, err := readme.Render(form.Description, form.DescriptionContentType)
	if err != nil {
		return nil, err
	}
	if rendered {
		release.DescriptionHTML = &html
	}

	if err := s.Stores.Releases.CreateRelease(release, form.Classifiers); err != nil {
		return nil, err
	}

	events.Log(events.ReleaseCreateEvent{
		Username: id.Username(),
		ClientIP: ipString(id),
		Project:  project.NormalizedName,
		Version:  canonical,
	})
	return release, nil
}

func parseUploadForm(r *http.Request) (*uploadForm, error) {
	form := &uploadForm{
		Name:                   r.FormValue("name"),
		RawVersion:             strings.TrimSpace(r.FormValue("version")),
		PyVersion:              r.FormValue("pyversion"),
		Summary:                r.FormValue("summary"),
		Description:            r.FormValue("description"),
		DescriptionContentType: r.FormValue("description_content_type"),
		RequiresPython:         r.FormValue("requires_python"),
		MD5:                    strings.ToLower(r.FormValue("md5_digest")),
		SHA256:                 strings.ToLower(r.FormValue("sha256_digest")),
		Blake2:                 strings.ToLower(r.FormValue("blake2_256_digest")),
	}

	if !packaging.ValidName(form.Name) {
		return nil, fmt.Errorf("invalid project name %q", form.Name)
	}
	form.NormalizedName = packaging.NormalizeName(form.Name)

	ver, err := packaging.ParseVersion(form.RawVersion)
	if err != nil {
		return nil, err
	}
	if ver.IsLocal() {
		return nil, fmt.Errorf("local versions may not be uploaded: %q", form.RawVersion)
	}
	form.Version = *ver

	filetype := r.FormValue("filetype")
	if !packaging.ValidFileType(filetype) {
		return nil, fmt.Errorf("invalid filetype %q", filetype)
	}
	form.FileType = packaging.FileType(filetype)
	if form.FileType == packaging.FileTypeSdist {
		if form.PyVersion == "" {
			form.PyVersion = "source"
		}
		if form.PyVersion != "source" {
			return nil, fmt.Errorf("pyversion for an sdist must be %q", "source")
		}
	}

	if err := packaging.ValidateMetadataVersion(r.FormValue("metadata_version")); err != nil {
		return nil, err
	}
	if form.Summary != "" {
		if err := packaging.ValidateSummary(form.Summary); err != nil {
			return nil, err
		}
	}
	if form.DescriptionContentType != "" {
		if err := packaging.ValidateDescriptionContentType(form.DescriptionContentType); err != nil {
			return nil, err
		}
	}
	if form.RequiresPython != "" {
		if err := packaging.ValidateRequiresPython(form.RequiresPython); err != nil {
			return nil, err
		}
	}
	if r.MultipartForm != nil {
		for _, classifier := range r.MultipartForm.Value["classifiers"] {
			if err := packaging.ValidateClassifier(classifier); err != nil {
				return nil, err
			}
			form.Classifiers = append(form.Classifiers, classifier)
		}
	}

	if form.MD5 == "" && form.SHA256 == "" {
		return nil, fmt.Errorf("an md5_digest or sha256_digest is required")
	}
	if err := checkHexDigest("md5_digest", form.MD5, 32); err != nil {
		return nil, err
	}
	if err := checkHexDigest("sha256_digest", form.SHA256, 64); err != nil {
		return nil, err
	}
	if err := checkHexDigest("blake2_256_digest", form.Blake2, 64); err != nil {
		return nil, err
	}

	return form, nil
}

func checkHexDigest(field, value string, length int) error {
	if value == "" {
		return nil
	}
	if len(value) != length || !hexDigestRegex.MatchString(value) {
		return fmt.Errorf("invalid %s", field)
	}
	return nil
}

var errFileTooLarge = errors.New("file too large")

type fileDigests struct {
	md5    string
	sha256 string
	blake2 string
}

// spoolAndHash copies src to a temp file while computing all three digests
// in one pass. The caller owns the returned temp file even on error.
func spoolAndHash(src io.Reader, limit int64) (int64, fileDigests, *os.File, error) {
	tmp, err := os.CreateTemp("", "warehouse-upload-*")
	if err != nil {
		return 0, fileDigests{}, nil, err
	}

	md5Hash := md5.New()
	sha256Hash := sha256.New()
	blake2Hash, err := blake2b.New256(nil)
	if err != nil {
		return 0, fileDigests{}, tmp, err
	}

	writers := []io.Writer{tmp, md5Hash, sha256Hash, blake2Hash}
	size, err := io.Copy(io.MultiWriter(writers...), io.LimitReader(src, limit+1))
	if err != nil {
		return 0, fileDigests{}, tmp, err
	}
	if size > limit {
		return size, fileDigests{}, tmp, errFileTooLarge
	}

	return size, fileDigests{
		md5:    hexSum(md5Hash),
		sha256: hexSum(sha256Hash),
		blake2: hexSum(blake2Hash),
	}, tmp, nil
}

func hexSum(h hash.Hash) string {
	return hex.EncodeToString(h.Sum(nil))
}

func ipString(id *identity.Identity) string {
	if id.RemoteIP == nil {
		return ""
	}
	return id.RemoteIP.String()
}
