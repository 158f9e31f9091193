// Package events provides the audit event pipeline for index operations.
//
// Every security-relevant operation (token authentication, project
// creation, file uploads, observation reports, quarantine transitions)
// emits a structured event. Events are written as RFC 5424 syslog lines and
// optionally persisted to a database for the admin surfaces.
//
// # Usage
//
//	events.Log(events.FileUploadEvent{
//	    Username: "uploader",
//	    Project:  "sampleproject",
//	    Filename: "sampleproject-3.0.0.tar.gz",
//	    Success:  true,
//	})
package events
