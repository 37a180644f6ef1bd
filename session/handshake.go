package session

import (
	"context"
	"strings"

	apperrors "github.com/jrsteele09/swiftchat-web/internal/errors"
	"github.com/jrsteele09/swiftchat-web/users"
)

// CodeExchanger completes a provider login. *Controller satisfies it.
type CodeExchanger interface {
	ExchangeOAuthCode(ctx context.Context, provider, code, state string) (*users.User, error)
}

// CallbackParams are read from the provider redirect URL
type CallbackParams struct {
	Provider string
	Code     string
	State    string
	Error    string
}

// HandshakeResult is either an error to display or a place to go
type HandshakeResult struct {
	Error      string
	RedirectTo string
	User       *users.User
}

func (r HandshakeResult) OK() bool {
	return r.Error == "" && r.RedirectTo != ""
}

// CompleteHandshake finishes an OAuth redirect login. Provider errors and
// missing codes are reported without contacting the backend; there are no retries.
func CompleteHandshake(ctx context.Context, exchanger CodeExchanger, params CallbackParams, landing string) HandshakeResult {
	if errText := strings.TrimSpace(params.Error); errText != "" {
		return HandshakeResult{Error: "Authentication error: " + errText}
	}
	if params.Code == "" {
		return HandshakeResult{Error: apperrors.ErrMissingOAuthCode.Error()}
	}
	if params.Provider == "" {
		return HandshakeResult{Error: apperrors.ErrMissingProvider.Error()}
	}

	user, err := exchanger.ExchangeOAuthCode(ctx, params.Provider, params.Code, params.State)
	if err != nil {
		return HandshakeResult{Error: err.Error()}
	}
	return HandshakeResult{RedirectTo: landing, User: user}
}
