package integration

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/cucumber/godog"

	"warehouse-in-go/pkg/model"
	gormstore "warehouse-in-go/pkg/server/store/gorm"
	"warehouse-in-go/pkg/token"
)

// StepsContext holds state shared between step definitions
type StepsContext struct {
	tc           *TestContext
	response     *http.Response
	responseBody []byte
	userTokens   map[string]string
	adminSession string
}

// NewStepsContext creates a new steps context
func NewStepsContext(tc *TestContext) *StepsContext {
	return &StepsContext{
		tc:         tc,
		userTokens: make(map[string]string),
	}
}

// RegisterSteps registers all step definitions
func (s *StepsContext) RegisterSteps(sc *godog.ScenarioContext) {
	// Background steps
	sc.Step(`^a warehouse server is running$`, s.aWarehouseServerIsRunning)
	sc.Step(`^a user "([^"]*)" exists with an API token$`, s.aUserExistsWithToken)
	sc.Step(`^an observer "([^"]*)" exists with an API token$`, s.anObserverExistsWithToken)
	sc.Step(`^an admin "([^"]*)" exists with an API token$`, s.anAdminExistsWithToken)

	// Upload steps
	sc.Step(`^"([^"]*)" uploads an sdist "([^"]*)" version "([^"]*)"$`, s.uploadsSdist)

	// Index steps
	sc.Step(`^the simple index should list "([^"]*)"$`, s.simpleIndexShouldList)
	sc.Step(`^the simple index should not list "([^"]*)"$`, s.simpleIndexShouldNotList)
	sc.Step(`^the simple page for "([^"]*)" should include "([^"]*)"$`, s.simplePageShouldInclude)
	sc.Step(`^the JSON API for "([^"]*)" should return (\d+)$`, s.jsonAPIShouldReturn)

	// Observation steps
	sc.Step(`^"([^"]*)" files a malware observation against "([^"]*)"$`, s.filesMalwareObservation)
	sc.Step(`^project "([^"]*)" should be in quarantine$`, s.projectShouldBeInQuarantine)
	sc.Step(`^project "([^"]*)" should not be in quarantine$`, s.projectShouldNotBeInQuarantine)

	// Admin steps
	sc.Step(`^"([^"]*)" opens an admin session$`, s.opensAdminSession)
	sc.Step(`^the admin releases "([^"]*)" from quarantine$`, s.adminReleasesFromQuarantine)

	// Response steps
	sc.Step(`^the response status should be (\d+)$`, s.theResponseStatusShouldBe)
	sc.Step(`^the response JSON should have "([^"]*)" equal to "([^"]*)"$`, s.responseJSONFieldEquals)
}

// Background steps

func (s *StepsContext) aWarehouseServerIsRunning() error {
	// Server is already running via TestContext
	return nil
}

func (s *StepsContext) createUserWithToken(username string, admin, observer bool) error {
	if _, ok := s.userTokens[username]; ok {
		return nil
	}

	users := gormstore.NewUsersStore(s.tc.DB)
	user := &model.User{
		ID:         model.NewID(),
		Username:   username,
		IsAdmin:    admin,
		IsObserver: observer,
	}
	if err := users.CreateUser(user); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	cleartext, record, err := token.Generate(user.ID, "integration", nil)
	if err != nil {
		return err
	}
	if err := users.CreateToken(record); err != nil {
		return fmt.Errorf("failed to create token: %w", err)
	}

	s.userTokens[username] = cleartext
	return nil
}

func (s *StepsContext) aUserExistsWithToken(username string) error {
	return s.createUserWithToken(username, false, false)
}

func (s *StepsContext) anObserverExistsWithToken(username string) error {
	return s.createUserWithToken(username, false, true)
}

func (s *StepsContext) anAdminExistsWithToken(username string) error {
	return s.createUserWithToken(username, true, false)
}

// Response steps

func (s *StepsContext) storeResponse(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return err
	}
	s.response = resp
	s.responseBody = body
	return nil
}

func (s *StepsContext) theResponseStatusShouldBe(status int) error {
	if s.response == nil {
		return fmt.Errorf("no response recorded")
	}
	if s.response.StatusCode != status {
		return fmt.Errorf("expected status %d, got %d: %s", status, s.response.StatusCode, s.responseBody)
	}
	return nil
}

func (s *StepsContext) responseJSONFieldEquals(field, expected string) error {
	var payload map[string]interface{}
	if err := json.Unmarshal(s.responseBody, &payload); err != nil {
		return fmt.Errorf("response is not JSON: %w", err)
	}
	got, ok := payload[field]
	if !ok {
		return fmt.Errorf("response has no field %q: %s", field, s.responseBody)
	}
	if fmt.Sprintf("%v", got) != expected {
		return fmt.Errorf("expected %q to be %q, got %v", field, expected, got)
	}
	return nil
}
