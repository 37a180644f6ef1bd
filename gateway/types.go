package gateway

import (
	"bytes"
	"encoding/json"

	"github.com/jrsteele09/swiftchat-web/tokens"
	"github.com/jrsteele09/swiftchat-web/users"
)

// AuthResponse is returned by login and the OAuth code exchange. The backend
// sends the tokens either at the top level or nested under "tokens".
type AuthResponse struct {
	AccessToken  string       `json:"accessToken,omitempty"`
	RefreshToken string       `json:"refreshToken,omitempty"`
	Tokens       *tokens.Pair `json:"tokens,omitempty"`
	User         *users.User  `json:"user,omitempty"`
}

// Pair returns the credentials, preferring the flat fields
func (r *AuthResponse) Pair() tokens.Pair {
	if r == nil {
		return tokens.Pair{}
	}
	if r.AccessToken != "" {
		return tokens.Pair{AccessToken: r.AccessToken, RefreshToken: r.RefreshToken}
	}
	if r.Tokens != nil {
		return *r.Tokens
	}
	return tokens.Pair{}
}

// Ack is a plain acknowledgement. Verification acks may also log the user in,
// in which case Session holds the credentials.
type Ack struct {
	Success bool          `json:"success"`
	Message string        `json:"message,omitempty"`
	Session *AuthResponse `json:"-"`
}

func (a *Ack) UnmarshalJSON(data []byte) error {
	var base struct {
		Success *bool  `json:"success"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &base); err != nil {
		return err
	}

	// A 2xx without an explicit flag counts as success
	a.Success = base.Success == nil || *base.Success
	a.Message = base.Message
	a.Session = nil

	var auth AuthResponse
	if err := json.Unmarshal(data, &auth); err == nil {
		if pair := auth.Pair(); pair.Valid() {
			a.Session = &auth
		}
	}
	return nil
}

func emptyBody(data []byte) bool {
	return len(bytes.TrimSpace(data)) == 0
}

// Stats is the dashboard summary
type Stats struct {
	UserCount    int `json:"userCount"`
	MessageCount int `json:"messageCount"`
	ActiveUsers  int `json:"activeUsers"`
}

// UserPage is one page of the admin user listing
type UserPage struct {
	Users []users.User `json:"users"`
	Total int          `json:"total"`
	Page  int          `json:"page"`
	Limit int          `json:"limit"`
}

// Report is a moderation report
type Report struct {
	ID         string `json:"id"`
	Reason     string `json:"reason,omitempty"`
	Status     string `json:"status,omitempty"`
	ReporterID string `json:"reporterId,omitempty"`
	TargetID   string `json:"targetId,omitempty"`
	CreatedAt  string `json:"createdAt,omitempty"`
}

// ReportPage is one page of moderation reports
type ReportPage struct {
	Reports []Report `json:"reports"`
	Total   int      `json:"total"`
	Page    int      `json:"page"`
	Limit   int      `json:"limit"`
}
