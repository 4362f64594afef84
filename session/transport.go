package session

import (
	"net/http"

	"github.com/ringer-warp/portal-session/token"
)

// TenantHeader carries the active customer id on outbound calls.
const TenantHeader = "X-Customer-ID"

var _ http.RoundTripper = (*Transport)(nil)

// Transport is an http.RoundTripper that attaches the session's bearer
// credential and active-tenant header to every request, and feeds 401
// responses back into the orchestrator's circuit breaker. The attachment is
// explicit per request — nothing mutates a shared client's defaults — so the
// dependency on the session is visible and testable.
type Transport struct {
	orchestrator *Orchestrator
	base         http.RoundTripper
}

// NewTransport wraps base, which defaults to http.DefaultTransport when nil.
func NewTransport(orchestrator *Orchestrator, base http.RoundTripper) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{
		orchestrator: orchestrator,
		base:         base,
	}
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Capture the generation before the call: a 401 for a request sent under
	// a previous session must not tear down the current one.
	generation := t.orchestrator.currentGeneration()

	req = req.Clone(req.Context())
	if auth := t.orchestrator.AuthorizationValue(); auth != "" {
		req.Header.Set("Authorization", auth)
	}
	if tenantID := t.orchestrator.TenantValue(); tenantID != "" {
		req.Header.Set(TenantHeader, tenantID)
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		t.orchestrator.handleUnauthorized(generation)
	}
	return resp, nil
}

// Client returns an *http.Client whose requests carry the session context.
func (t *Transport) Client() *http.Client {
	return &http.Client{Transport: t}
}

// AttachRequest stamps the current session context onto a request built by
// the caller, for collaborators that manage their own HTTP client.
func (o *Orchestrator) AttachRequest(req *http.Request) {
	o.lock.RLock()
	accessToken := o.accessToken
	o.lock.RUnlock()

	token.Attach(req, accessToken)
	if tenantID := o.TenantValue(); tenantID != "" {
		req.Header.Set(TenantHeader, tenantID)
	}
}
