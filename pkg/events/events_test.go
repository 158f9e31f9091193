package events

import (
	"bytes"
	"strings"
	"testing"
)

func TestLoggerFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger()
	logger.SetWriter(&buf)

	logger.Log(FileUploadEvent{
		Username: "uploader",
		ClientIP: "10.0.0.1",
		Project:  "sampleproject",
		Version:  "3.0.0",
		Filename: "sampleproject-3.0.0.tar.gz",
		Size:     1024,
		Success:  true,
	})

	line := buf.String()
	if !strings.HasPrefix(line, "<38>1 ") { // LOG_AUTH(4)*8 + info(6)
		t.Errorf("unexpected PRI prefix: %q", line)
	}
	if !strings.Contains(line, " file-upload ") {
		t.Errorf("expected msgid in line: %q", line)
	}
	if !strings.Contains(line, `filename="sampleproject-3.0.0.tar.gz"`) {
		t.Errorf("expected filename param in line: %q", line)
	}
	if !strings.Contains(line, "uploader uploaded sampleproject-3.0.0.tar.gz to sampleproject 3.0.0") {
		t.Errorf("unexpected message: %q", line)
	}
	if !strings.HasSuffix(line, "\n") {
		t.Errorf("expected trailing newline: %q", line)
	}
}

func TestLoggerFailureSeverity(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger()
	logger.SetWriter(&buf)

	logger.Log(TokenAuthEvent{
		Username:     "uploader",
		ClientIP:     "10.0.0.1",
		Success:      false,
		ErrorMessage: "unknown token",
	})

	line := buf.String()
	if !strings.HasPrefix(line, "<84>1 ") { // LOG_AUTHPRIV(10)*8 + warning(4)
		t.Errorf("unexpected PRI prefix: %q", line)
	}
	if !strings.Contains(line, "unknown token") {
		t.Errorf("expected error message in line: %q", line)
	}
}

func TestEscapeSDValue(t *testing.T) {
	got := escapeSDValue(`va"l\ue]`)
	want := `"va\"l\\ue\]"`
	if got != want {
		t.Errorf("escapeSDValue() = %q, want %q", got, want)
	}
}

func TestQuarantineEventMessages(t *testing.T) {
	enter := QuarantineEvent{Actor: "automation", Project: "badproject", Operation: "enter", Reason: "malware reports from 2 observers"}
	if !strings.Contains(enter.Message(), "placed project badproject in quarantine") {
		t.Errorf("unexpected enter message: %q", enter.Message())
	}
	if enter.Severity() != SeverityWarning {
		t.Errorf("enter severity = %v, want warning", enter.Severity())
	}

	exit := QuarantineEvent{Actor: "admin", Project: "badproject", Operation: "exit"}
	if !strings.Contains(exit.Message(), "removed project badproject from quarantine") {
		t.Errorf("unexpected exit message: %q", exit.Message())
	}
	if exit.Severity() != SeverityNotice {
		t.Errorf("exit severity = %v, want notice", exit.Severity())
	}
}
