package model

import "time"

// Observation kinds, mirroring the report categories the index accepts.
const (
	ObservationKindMalware             = "is_malware"
	ObservationKindSpam                = "is_spam"
	ObservationKindDependencyConfusion = "is_dependency_confusion"
	ObservationKindAccountRecovery     = "account_recovery"
	ObservationKindSomethingElse       = "something_else"
)

// ObservationKinds is the accepted set, in display order.
var ObservationKinds = []string{
	ObservationKindMalware,
	ObservationKindSpam,
	ObservationKindDependencyConfusion,
	ObservationKindAccountRecovery,
	ObservationKindSomethingElse,
}

// ValidObservationKind reports whether kind is accepted.
func ValidObservationKind(kind string) bool {
	for _, k := range ObservationKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// Observation is a structured report about a project, filed by an observer.
// Payload is the reporter-supplied JSON document.
type Observation struct {
	ID         string    `gorm:"column:id;primaryKey"`
	ProjectID  string    `gorm:"column:project_id;not null;index"`
	ObserverID string    `gorm:"column:observer_id;not null;index"`
	Kind       string    `gorm:"column:kind;not null"`
	Summary    string    `gorm:"column:summary;not null"`
	Payload    []byte    `gorm:"column:payload;type:jsonb"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Observation) TableName() string {
	return "observations"
}
