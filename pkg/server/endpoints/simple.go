package endpoints

import (
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/mux"

	"warehouse-in-go/pkg/model"
	"warehouse-in-go/pkg/packaging"
	"warehouse-in-go/pkg/server"
	"warehouse-in-go/pkg/server/store"
)

// RegisterSimpleEndpoints registers the PEP 503 simple index and the
// package download endpoint
func RegisterSimpleEndpoints(s *server.Server) {
	s.Router.HandleFunc("/simple/", handleSimpleIndex(s)).Methods("GET")
	s.Router.HandleFunc("/simple/{name}/", handleSimpleProject(s)).Methods("GET")
	s.Router.HandleFunc("/simple/{name}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/simple/"+mux.Vars(r)["name"]+"/", http.StatusMovedPermanently)
	}).Methods("GET")
	s.Router.HandleFunc("/packages/{path:.+}", handleDownload(s)).Methods("GET")
}

func handleSimpleIndex(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		names, err := s.Stores.Projects.ListProjectNames(s.Config.SimpleListingLimit)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "failed to list projects")
			return
		}

		var sb strings.Builder
		sb.WriteString("<!DOCTYPE html>\n<html>\n  <head>\n")
		sb.WriteString("    <meta name=\"pypi:repository-version\" content=\"1.0\">\n")
		sb.WriteString("    <title>Simple index</title>\n  </head>\n  <body>\n")
		for _, name := range names {
			fmt.Fprintf(&sb, "    <a href=\"/simple/%s/\">%s</a>\n", name, html.EscapeString(name))
		}
		sb.WriteString("  </body>\n</html>\n")

		respondWithHTML(w, http.StatusOK, sb.String())
	}
}

func handleSimpleProject(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := mux.Vars(r)["name"]
		normalized := packaging.NormalizeName(name)
		if name != normalized {
			http.Redirect(w, r, "/simple/"+normalized+"/", http.StatusMovedPermanently)
			return
		}

		project, err := s.Stores.Projects.FindProject(normalized)
		if err != nil || project.InQuarantine() {
			if err != nil && !errors.Is(err, store.ErrProjectNotFound) {
				respondWithError(w, http.StatusInternalServerError, "failed to look up project")
				return
			}
			http.NotFound(w, r)
			return
		}

		releases, err := s.Stores.Releases.ListReleases(project.ID)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "failed to list releases")
			return
		}

		var sb strings.Builder
		sb.WriteString("<!DOCTYPE html>\n<html>\n  <head>\n")
		sb.WriteString("    <meta name=\"pypi:repository-version\" content=\"1.0\">\n")
		fmt.Fprintf(&sb, "    <title>Links for %s</title>\n  </head>\n  <body>\n", html.EscapeString(normalized))
		fmt.Fprintf(&sb, "    <h1>Links for %s</h1>\n", html.EscapeString(normalized))

		for _, release := range releases {
			files, err := s.Stores.Files.ListFiles(release.ID)
			if err != nil {
				respondWithError(w, http.StatusInternalServerError, "failed to list files")
				return
			}
			for _, file := range files {
				sb.WriteString(simpleFileAnchor(&release, &file))
			}
		}
		sb.WriteString("  </body>\n</html>\n")

		respondWithHTML(w, http.StatusOK, sb.String())
	}
}

func simpleFileAnchor(release *model.Release, file *model.File) string {
	var attrs strings.Builder
	if file.RequiresPython != "" {
		fmt.Fprintf(&attrs, " data-requires-python=\"%s\"", html.EscapeString(file.RequiresPython))
	}
	if file.MetadataSHA256 != nil {
		fmt.Fprintf(&attrs, " data-core-metadata=\"sha256=%s\"", *file.MetadataSHA256)
	}
	if release.Yanked {
		reason := html.EscapeString(release.YankedReason)
		fmt.Fprintf(&attrs, " data-yanked=\"%s\"", reason)
	}
	href := (&url.URL{Path: "/packages/" + file.Path}).EscapedPath()
	return fmt.Sprintf("    <a href=\"%s#sha256=%s\"%s>%s</a><br/>\n",
		html.EscapeString(href), file.SHA256Digest, attrs.String(), html.EscapeString(file.Filename))
}

func handleDownload(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path := mux.Vars(r)["path"]
		reader, err := s.Storage.Open(path)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		defer reader.Close()

		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = io.Copy(w, reader)
	}
}
