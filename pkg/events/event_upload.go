package events

import "fmt"

// FileUploadEvent represents a distribution file upload attempt.
type FileUploadEvent struct {
	Username     string
	ClientIP     string
	Project      string
	Version      string
	Filename     string
	Size         int64
	Success      bool
	ErrorMessage string
}

func (e FileUploadEvent) MessageID() string {
	return "file-upload"
}

func (e FileUploadEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("%s uploaded %s to %s %s", e.Username, e.Filename, e.Project, e.Version)
	}
	msg := fmt.Sprintf("%s tried to upload %s to %s", e.Username, e.Filename, e.Project)
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e FileUploadEvent) Severity() Severity {
	if e.Success {
		return SeverityInfo
	}
	return SeverityWarning
}

func (e FileUploadEvent) Facility() int {
	return FacilityAuth
}

func (e FileUploadEvent) StructuredData() map[string]map[string]string {
	sd := map[string]map[string]string{
		SDIDAuth: {
			"user": e.Username,
		},
		SDIDSubject: {
			"project": e.Project,
		},
		SDIDClient: {
			"ip": e.ClientIP,
		},
		SDIDUpload: {
			"filename": e.Filename,
		},
		SDIDAction: {
			"operation": "file-upload",
			"result":    result(e.Success),
		},
	}
	if e.Version != "" {
		sd[SDIDSubject]["version"] = e.Version
	}
	if e.Size > 0 {
		sd[SDIDUpload]["size"] = fmt.Sprintf("%d", e.Size)
	}
	return sd
}

// ProjectCreateEvent represents the registration of a new project.
type ProjectCreateEvent struct {
	Username string
	ClientIP string
	Project  string
}

func (e ProjectCreateEvent) MessageID() string {
	return "project-create"
}

func (e ProjectCreateEvent) Message() string {
	return fmt.Sprintf("%s created project %s", e.Username, e.Project)
}

func (e ProjectCreateEvent) Severity() Severity {
	return SeverityInfo
}

func (e ProjectCreateEvent) Facility() int {
	return FacilityAuth
}

func (e ProjectCreateEvent) StructuredData() map[string]map[string]string {
	return map[string]map[string]string{
		SDIDAuth: {
			"user": e.Username,
		},
		SDIDSubject: {
			"project": e.Project,
		},
		SDIDClient: {
			"ip": e.ClientIP,
		},
		SDIDAction: {
			"operation": "project-create",
			"result":    "success",
		},
	}
}

// ReleaseCreateEvent represents the creation of a new release of a project.
type ReleaseCreateEvent struct {
	Username string
	ClientIP string
	Project  string
	Version  string
}

func (e ReleaseCreateEvent) MessageID() string {
	return "release-create"
}

func (e ReleaseCreateEvent) Message() string {
	return fmt.Sprintf("%s created release %s of %s", e.Username, e.Version, e.Project)
}

func (e ReleaseCreateEvent) Severity() Severity {
	return SeverityInfo
}

func (e ReleaseCreateEvent) Facility() int {
	return FacilityAuth
}

func (e ReleaseCreateEvent) StructuredData() map[string]map[string]string {
	return map[string]map[string]string{
		SDIDAuth: {
			"user": e.Username,
		},
		SDIDSubject: {
			"project": e.Project,
			"version": e.Version,
		},
		SDIDClient: {
			"ip": e.ClientIP,
		},
		SDIDAction: {
			"operation": "release-create",
			"result":    "success",
		},
	}
}

// ProhibitNameEvent represents an admin blocking a project name from
// registration.
type ProhibitNameEvent struct {
	Actor    string
	ClientIP string
	Name     string
	Comment  string
}

func (e ProhibitNameEvent) MessageID() string {
	return "prohibit-name"
}

func (e ProhibitNameEvent) Message() string {
	msg := fmt.Sprintf("%s prohibited project name %s", e.Actor, e.Name)
	if e.Comment != "" {
		msg += ": " + e.Comment
	}
	return msg
}

func (e ProhibitNameEvent) Severity() Severity {
	return SeverityNotice
}

func (e ProhibitNameEvent) Facility() int {
	return FacilityAuth
}

func (e ProhibitNameEvent) StructuredData() map[string]map[string]string {
	sd := map[string]map[string]string{
		SDIDAuth: {
			"user": e.Actor,
		},
		SDIDSubject: {
			"project": e.Name,
		},
		SDIDAction: {
			"operation": "prohibit-name",
			"result":    "success",
		},
	}
	if e.ClientIP != "" {
		sd[SDIDClient] = map[string]string{"ip": e.ClientIP}
	}
	return sd
}
