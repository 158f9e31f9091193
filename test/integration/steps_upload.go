package integration

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"warehouse-in-go/pkg/model"
	"warehouse-in-go/pkg/packaging"
)

const tokenUser = "__token__"

// uploadsSdist uploads a small sdist through the legacy upload API.
func (s *StepsContext) uploadsSdist(username, project, version string) error {
	cleartext, ok := s.userTokens[username]
	if !ok {
		return fmt.Errorf("no token for user %q", username)
	}

	content := []byte("sdist contents for " + project + " " + version)
	digest := sha256.Sum256(content)
	filename := fmt.Sprintf("%s-%s.tar.gz", project, version)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	fields := map[string]string{
		":action":          "file_upload",
		"protocol_version": "1",
		"metadata_version": "2.1",
		"name":             project,
		"version":          version,
		"filetype":         "sdist",
		"pyversion":        "source",
		"sha256_digest":    hex.EncodeToString(digest[:]),
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return err
		}
	}
	part, err := writer.CreateFormFile("content", filename)
	if err != nil {
		return err
	}
	if _, err := part.Write(content); err != nil {
		return err
	}
	if err := writer.Close(); err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, s.tc.ServerURL+"/legacy/", &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.SetBasicAuth(tokenUser, cleartext)

	resp, err := s.tc.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	return s.storeResponse(resp)
}

// Index steps

func (s *StepsContext) fetch(path string) (string, error) {
	resp, err := s.tc.HTTPClient.Get(s.tc.ServerURL + path)
	if err != nil {
		return "", err
	}
	if err := s.storeResponse(resp); err != nil {
		return "", err
	}
	return string(s.responseBody), nil
}

func (s *StepsContext) simpleIndexShouldList(project string) error {
	body, err := s.fetch("/simple/")
	if err != nil {
		return err
	}
	if !strings.Contains(body, ">"+packaging.NormalizeName(project)+"<") {
		return fmt.Errorf("simple index does not list %q", project)
	}
	return nil
}

func (s *StepsContext) simpleIndexShouldNotList(project string) error {
	body, err := s.fetch("/simple/")
	if err != nil {
		return err
	}
	if strings.Contains(body, ">"+packaging.NormalizeName(project)+"<") {
		return fmt.Errorf("simple index unexpectedly lists %q", project)
	}
	return nil
}

func (s *StepsContext) simplePageShouldInclude(project, filename string) error {
	body, err := s.fetch("/simple/" + packaging.NormalizeName(project) + "/")
	if err != nil {
		return err
	}
	if s.response.StatusCode != http.StatusOK {
		return fmt.Errorf("simple page returned %d", s.response.StatusCode)
	}
	if !strings.Contains(body, filename) {
		return fmt.Errorf("simple page for %q does not include %q", project, filename)
	}
	return nil
}

func (s *StepsContext) jsonAPIShouldReturn(project string, status int) error {
	if _, err := s.fetch("/pypi/" + packaging.NormalizeName(project) + "/json"); err != nil {
		return err
	}
	return s.theResponseStatusShouldBe(status)
}

// Observation steps

func (s *StepsContext) filesMalwareObservation(username, project string) error {
	cleartext, ok := s.userTokens[username]
	if !ok {
		return fmt.Errorf("no token for user %q", username)
	}

	payload := map[string]interface{}{
		"kind":    "is_malware",
		"summary": "observed malicious install hook",
		"payload": map[string]string{
			"inspector_url": "https://inspector.example/project/" + project,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	url := s.tc.ServerURL + "/api/projects/" + packaging.NormalizeName(project) + "/observations"
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(tokenUser, cleartext)

	resp, err := s.tc.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	return s.storeResponse(resp)
}

func (s *StepsContext) projectQuarantineState(project string) (bool, error) {
	var record model.Project
	err := s.tc.DB.Where("normalized_name = ?", packaging.NormalizeName(project)).First(&record).Error
	if err != nil {
		return false, fmt.Errorf("project %q not found: %w", project, err)
	}
	return record.InQuarantine(), nil
}

func (s *StepsContext) projectShouldBeInQuarantine(project string) error {
	quarantined, err := s.projectQuarantineState(project)
	if err != nil {
		return err
	}
	if !quarantined {
		return fmt.Errorf("project %q is not in quarantine", project)
	}
	return nil
}

func (s *StepsContext) projectShouldNotBeInQuarantine(project string) error {
	quarantined, err := s.projectQuarantineState(project)
	if err != nil {
		return err
	}
	if quarantined {
		return fmt.Errorf("project %q is unexpectedly in quarantine", project)
	}
	return nil
}

// Admin steps

func (s *StepsContext) opensAdminSession(username string) error {
	cleartext, ok := s.userTokens[username]
	if !ok {
		return fmt.Errorf("no token for user %q", username)
	}

	req, err := http.NewRequest(http.MethodPost, s.tc.ServerURL+"/admin/sessions", nil)
	if err != nil {
		return err
	}
	req.SetBasicAuth(tokenUser, cleartext)

	resp, err := s.tc.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	if err := s.storeResponse(resp); err != nil {
		return err
	}
	if s.response.StatusCode != http.StatusCreated {
		return fmt.Errorf("admin session returned %d: %s", s.response.StatusCode, s.responseBody)
	}

	var session struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(s.responseBody, &session); err != nil {
		return err
	}
	s.adminSession = session.Token
	return nil
}

func (s *StepsContext) adminReleasesFromQuarantine(project string) error {
	if s.adminSession == "" {
		return fmt.Errorf("no admin session open")
	}

	url := s.tc.ServerURL + "/admin/projects/" + packaging.NormalizeName(project) + "/quarantine"
	req, err := http.NewRequest(http.MethodDelete, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.adminSession)

	resp, err := s.tc.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	return s.storeResponse(resp)
}
