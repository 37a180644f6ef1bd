package gateway

import (
	"net/http"
)

// bearerTransport attaches the current access token to every request. The
// token is read when the request is made, never cached on the client.
type bearerTransport struct {
	base   http.RoundTripper
	tokens TokenStore
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.tokens == nil {
		return t.base.RoundTrip(req)
	}

	tok := t.tokens.Get(req.Context()).OAuth2()
	if tok == nil {
		return t.base.RoundTrip(req)
	}

	// RoundTrippers must not modify the caller's request
	clone := req.Clone(req.Context())
	tok.SetAuthHeader(clone)
	return t.base.RoundTrip(clone)
}
