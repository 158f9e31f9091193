package events

import "fmt"

// ObservationEvent represents an observer report filed against a project.
type ObservationEvent struct {
	Observer     string
	ClientIP     string
	Project      string
	Kind         string
	Success      bool
	ErrorMessage string
}

func (e ObservationEvent) MessageID() string {
	return "observation"
}

func (e ObservationEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("%s reported %s on %s", e.Observer, e.Kind, e.Project)
	}
	msg := fmt.Sprintf("%s tried to report %s on %s", e.Observer, e.Kind, e.Project)
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e ObservationEvent) Severity() Severity {
	if e.Success {
		return SeverityNotice
	}
	return SeverityWarning
}

func (e ObservationEvent) Facility() int {
	return FacilityAuth
}

func (e ObservationEvent) StructuredData() map[string]map[string]string {
	return map[string]map[string]string{
		SDIDAuth: {
			"user": e.Observer,
		},
		SDIDSubject: {
			"project": e.Project,
			"kind":    e.Kind,
		},
		SDIDClient: {
			"ip": e.ClientIP,
		},
		SDIDAction: {
			"operation": "observation",
			"result":    result(e.Success),
		},
	}
}

// QuarantineEvent represents a project quarantine transition.
type QuarantineEvent struct {
	Actor     string // user or "automation"
	ClientIP  string
	Project   string
	Operation string // "enter" or "exit"
	Reason    string
}

func (e QuarantineEvent) MessageID() string {
	return "quarantine"
}

func (e QuarantineEvent) Message() string {
	switch e.Operation {
	case "enter":
		msg := fmt.Sprintf("%s placed project %s in quarantine", e.Actor, e.Project)
		if e.Reason != "" {
			msg += ": " + e.Reason
		}
		return msg
	default:
		return fmt.Sprintf("%s removed project %s from quarantine", e.Actor, e.Project)
	}
}

func (e QuarantineEvent) Severity() Severity {
	if e.Operation == "enter" {
		return SeverityWarning
	}
	return SeverityNotice
}

func (e QuarantineEvent) Facility() int {
	return FacilityAuth
}

func (e QuarantineEvent) StructuredData() map[string]map[string]string {
	sd := map[string]map[string]string{
		SDIDAuth: {
			"user": e.Actor,
		},
		SDIDSubject: {
			"project": e.Project,
		},
		SDIDAction: {
			"operation": "quarantine-" + e.Operation,
			"result":    "success",
		},
	}
	if e.ClientIP != "" {
		sd[SDIDClient] = map[string]string{"ip": e.ClientIP}
	}
	if e.Reason != "" {
		sd[SDIDSubject]["reason"] = e.Reason
	}
	return sd
}
