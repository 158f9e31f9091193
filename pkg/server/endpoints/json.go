package endpoints

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"warehouse-in-go/pkg/model"
	"warehouse-in-go/pkg/packaging"
	"warehouse-in-go/pkg/server"
	"warehouse-in-go/pkg/server/store"
)

// ProjectInfoResponse is the "info" block of the JSON API.
type ProjectInfoResponse struct {
	Name                   string   `json:"name"`
	Version                string   `json:"version"`
	Summary                string   `json:"summary"`
	Description            string   `json:"description"`
	DescriptionContentType string   `json:"description_content_type"`
	RequiresPython         string   `json:"requires_python"`
	Classifiers            []string `json:"classifiers"`
	Yanked                 bool     `json:"yanked"`
	YankedReason           string   `json:"yanked_reason"`
}

// FileResponse is one file entry of the JSON API.
type FileResponse struct {
	Filename       string            `json:"filename"`
	URL            string            `json:"url"`
	Size           int64             `json:"size"`
	PackageType    string            `json:"packagetype"`
	PythonVersion  string            `json:"python_version"`
	RequiresPython string            `json:"requires_python"`
	Digests        map[string]string `json:"digests"`
	UploadTime     string            `json:"upload_time_iso_8601"`
	Yanked         bool              `json:"yanked"`
}

// ProjectResponse is the full JSON API document for a project.
type ProjectResponse struct {
	Info     ProjectInfoResponse       `json:"info"`
	Releases map[string][]FileResponse `json:"releases"`
	URLs     []FileResponse            `json:"urls"`
}

// RegisterJSONEndpoints registers the project metadata JSON API
func RegisterJSONEndpoints(s *server.Server) {
	s.Router.HandleFunc("/pypi/{name}/json", handleProjectJSON(s, false)).Methods("GET")
	s.Router.HandleFunc("/pypi/{name}/{version}/json", handleProjectJSON(s, true)).Methods("GET")
}

func handleProjectJSON(s *server.Server, versioned bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		name := vars["name"]
		normalized := packaging.NormalizeName(name)
		if name != normalized {
			target := "/pypi/" + normalized + "/json"
			if versioned {
				target = "/pypi/" + normalized + "/" + vars["version"] + "/json"
			}
			http.Redirect(w, r, target, http.StatusMovedPermanently)
			return
		}

		project, err := s.Stores.Projects.FindProject(normalized)
		if err != nil || project.InQuarantine() {
			if err != nil && !errors.Is(err, store.ErrProjectNotFound) {
				respondWithError(w, http.StatusInternalServerError, "failed to look up project")
				return
			}
			respondWithError(w, http.StatusNotFound, "project not found")
			return
		}

		releases, err := s.Stores.Releases.ListReleases(project.ID)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "failed to list releases")
			return
		}
		if len(releases) == 0 {
			respondWithError(w, http.StatusNotFound, "project has no releases")
			return
		}

		var subject *model.Release
		if versioned {
			requested, err := packaging.ParseVersion(vars["version"])
			if err != nil {
				respondWithError(w, http.StatusNotFound, "release not found")
				return
			}
			for i := range releases {
				stored, err := packaging.ParseVersion(releases[i].CanonicalVersion)
				if err != nil {
					continue
				}
				if stored.Compare(*requested) == 0 && stored.Local == requested.Local {
					subject = &releases[i]
					break
				}
			}
		} else {
			subject = latestRelease(releases)
		}
		if subject == nil {
			respondWithError(w, http.StatusNotFound, "release not found")
			return
		}

		classifiers, err := s.Stores.Releases.ListClassifiers(subject.ID)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "failed to list classifiers")
			return
		}

		response := ProjectResponse{
			Info: ProjectInfoResponse{
				Name:                   project.Name,
				Version:                subject.CanonicalVersion,
				Summary:                subject.Summary,
				Description:            subject.Description,
				DescriptionContentType: subject.DescriptionContentType,
				RequiresPython:         subject.RequiresPython,
				Classifiers:            classifiers,
				Yanked:                 subject.Yanked,
				YankedReason:           subject.YankedReason,
			},
			Releases: map[string][]FileResponse{},
		}

		for i := range releases {
			release := &releases[i]
			files, err := s.Stores.Files.ListFiles(release.ID)
			if err != nil {
				respondWithError(w, http.StatusInternalServerError, "failed to list files")
				return
			}
			entries := make([]FileResponse, 0, len(files))
			for j := range files {
				entries = append(entries, fileResponse(release, &files[j]))
			}
			response.Releases[release.CanonicalVersion] = entries
			if release.ID == subject.ID {
				response.URLs = entries
			}
		}

		respondWithJSON(w, http.StatusOK, response)
	}
}

// latestRelease picks the newest non-yanked release by version ordering.
// Prereleases only count when no stable release exists.
func latestRelease(releases []model.Release) *model.Release {
	var best *model.Release
	var bestVer packaging.Version
	var bestIsPre bool

	for i := range releases {
		release := &releases[i]
		if release.Yanked {
			continue
		}
		ver, err := packaging.ParseVersion(release.CanonicalVersion)
		if err != nil {
			continue
		}
		isPre := ver.IsPrerelease()
		if best == nil ||
			(bestIsPre && !isPre) ||
			(bestIsPre == isPre && ver.Compare(bestVer) > 0) {
			best, bestVer, bestIsPre = release, *ver, isPre
		}
	}
	return best
}

func fileResponse(release *model.Release, file *model.File) FileResponse {
	return FileResponse{
		Filename:       file.Filename,
		URL:            "/packages/" + file.Path,
		Size:           file.Size,
		PackageType:    file.PackageType,
		PythonVersion:  file.PythonVersion,
		RequiresPython: file.RequiresPython,
		Digests: map[string]string{
			"md5":        file.MD5Digest,
			"sha256":     file.SHA256Digest,
			"blake2_256": file.Blake2Digest,
		},
		UploadTime: file.CreatedAt.UTC().Format(time.RFC3339),
		Yanked:     release.Yanked,
	}
}
