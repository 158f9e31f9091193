package observations

import (
	"fmt"

	"warehouse-in-go/pkg/events"
	"warehouse-in-go/pkg/model"
	"warehouse-in-go/pkg/server/store"
)

// Evaluator decides whether a project should be quarantined based on the
// observations filed against it. Evaluation runs synchronously after each
// new observation.
type Evaluator struct {
	projects     store.ProjectsStore
	observations store.ObservationsStore

	// threshold is the number of distinct observers whose malware reports
	// place a project in quarantine.
	threshold int
}

// NewEvaluator creates an Evaluator with the given report threshold.
func NewEvaluator(projects store.ProjectsStore, observations store.ObservationsStore, threshold int) *Evaluator {
	if threshold < 1 {
		threshold = 1
	}
	return &Evaluator{
		projects:     projects,
		observations: observations,
		threshold:    threshold,
	}
}

// Evaluate checks a project against the quarantine policy and quarantines it
// when the policy trips. It returns true if the project was placed in
// quarantine by this call. Projects already in quarantine are left alone.
func (e *Evaluator) Evaluate(project *model.Project) (bool, error) {
	if project.InQuarantine() {
		return false, nil
	}

	count, err := e.observations.CountDistinctMalwareObservers(project.ID)
	if err != nil {
		return false, fmt.Errorf("failed to count malware observers: %w", err)
	}
	if count < e.threshold {
		return false, nil
	}

	status := model.LifecycleStatusQuarantineEnter
	note := fmt.Sprintf("malware reports from %d distinct observers", count)
	if err := e.projects.SetLifecycleStatus(project.ID, &status, note); err != nil {
		return false, fmt.Errorf("failed to quarantine project: %w", err)
	}

	events.Log(events.QuarantineEvent{
		Actor:     "automation",
		Project:   project.NormalizedName,
		Operation: "enter",
		Reason:    note,
	})
	return true, nil
}
