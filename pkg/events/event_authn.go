package events

import "fmt"

// TokenAuthEvent represents an API token authentication attempt.
type TokenAuthEvent struct {
	Username     string
	TokenID      string
	ClientIP     string
	Success      bool
	ErrorMessage string
}

func (e TokenAuthEvent) MessageID() string {
	return "authn"
}

func (e TokenAuthEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("%s successfully authenticated with API token %s", e.Username, e.TokenID)
	}
	msg := "API token authentication failed"
	if e.Username != "" {
		msg = fmt.Sprintf("%s failed to authenticate with an API token", e.Username)
	}
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e TokenAuthEvent) Severity() Severity {
	if e.Success {
		return SeverityInfo
	}
	return SeverityWarning
}

func (e TokenAuthEvent) Facility() int {
	return FacilityAuthPriv
}

func (e TokenAuthEvent) StructuredData() map[string]map[string]string {
	sd := map[string]map[string]string{
		SDIDAuth: {
			"user": e.Username,
		},
		SDIDClient: {
			"ip": e.ClientIP,
		},
		SDIDAction: {
			"operation": "authenticate",
			"result":    result(e.Success),
		},
	}
	if e.TokenID != "" {
		sd[SDIDAuth]["token"] = e.TokenID
	}
	return sd
}
