package observations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warehouse-in-go/pkg/model"
)

// fakeProjects records lifecycle transitions.
type fakeProjects struct {
	status *string
	note   string
}

func (f *fakeProjects) FindProject(string) (*model.Project, error) { return nil, nil }
func (f *fakeProjects) CreateProject(*model.Project, string) error { return nil }
func (f *fakeProjects) ListProjectNames(int) ([]string, error)     { return nil, nil }
func (f *fakeProjects) HasRole(string, string) (bool, error)       { return false, nil }
func (f *fakeProjects) GrantRole(string, string, string) error     { return nil }
func (f *fakeProjects) AddTotalSize(string, int64) error           { return nil }
func (f *fakeProjects) Prohibit(string, string, string) error      { return nil }
func (f *fakeProjects) IsProhibited(string) (bool, error)          { return false, nil }
func (f *fakeProjects) ListQuarantined() ([]model.Project, error)  { return nil, nil }

func (f *fakeProjects) ListProhibited() ([]model.ProhibitedProjectName, error) { return nil, nil }

func (f *fakeProjects) SetLifecycleStatus(projectID string, status *string, note string) error {
	f.status = status
	f.note = note
	return nil
}

// fakeObservations returns a fixed distinct observer count.
type fakeObservations struct {
	distinctMalware int
}

func (f *fakeObservations) CreateObservation(*model.Observation) error { return nil }
func (f *fakeObservations) ListObservations(string) ([]model.Observation, error) {
	return nil, nil
}
func (f *fakeObservations) ListRecentObservations(int) ([]model.Observation, error) {
	return nil, nil
}
func (f *fakeObservations) CountDistinctMalwareObservers(string) (int, error) {
	return f.distinctMalware, nil
}

func TestEvaluateBelowThreshold(t *testing.T) {
	projects := &fakeProjects{}
	evaluator := NewEvaluator(projects, &fakeObservations{distinctMalware: 1}, 2)

	quarantined, err := evaluator.Evaluate(&model.Project{ID: "p1", NormalizedName: "demo"})
	require.NoError(t, err)
	assert.False(t, quarantined)
	assert.Nil(t, projects.status)
}

func TestEvaluateAtThreshold(t *testing.T) {
	projects := &fakeProjects{}
	evaluator := NewEvaluator(projects, &fakeObservations{distinctMalware: 2}, 2)

	quarantined, err := evaluator.Evaluate(&model.Project{ID: "p1", NormalizedName: "demo"})
	require.NoError(t, err)
	assert.True(t, quarantined)
	require.NotNil(t, projects.status)
	assert.Equal(t, model.LifecycleStatusQuarantineEnter, *projects.status)
	assert.Contains(t, projects.note, "2 distinct observers")
}

func TestEvaluateAlreadyQuarantined(t *testing.T) {
	projects := &fakeProjects{}
	evaluator := NewEvaluator(projects, &fakeObservations{distinctMalware: 5}, 2)

	status := model.LifecycleStatusQuarantineEnter
	project := &model.Project{ID: "p1", NormalizedName: "demo", LifecycleStatus: &status}

	quarantined, err := evaluator.Evaluate(project)
	require.NoError(t, err)
	assert.False(t, quarantined)
	assert.Nil(t, projects.status)
}

func TestThresholdFloor(t *testing.T) {
	// A zero threshold would quarantine on the first report from anyone;
	// the evaluator clamps it to one.
	projects := &fakeProjects{}
	evaluator := NewEvaluator(projects, &fakeObservations{distinctMalware: 0}, 0)

	quarantined, err := evaluator.Evaluate(&model.Project{ID: "p1"})
	require.NoError(t, err)
	assert.False(t, quarantined)
}
