// Package authz is the authorization gateway: it builds decision requests
// naming a principal, one or more resource instances with their full
// attribute sets, and the requested actions, submits them to the external
// policy decision point, and exposes the per-instance, per-action verdicts.
//
// The gateway performs no caching and no retries; each check is a single
// authorization round trip with an explicit timeout. Callers must treat a
// failed check as a denial.
package authz

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/authfold/rolodex/pkg/auth"
	rolodexerrors "github.com/authfold/rolodex/pkg/errors"
	"github.com/authfold/rolodex/pkg/logger"
	"github.com/authfold/rolodex/pkg/networking"
)

// maxResponseSize is the maximum allowed response size for HTTP requests to prevent DoS.
const maxResponseSize = 1024 * 1024 // 1MB

// Gateway submits decision requests to the policy decision point.
type Gateway interface {
	// Check asks the policy decision point whether principal may perform
	// each of actions on each of instances. instances maps instance id to
	// the instance's full attribute set; for a single-resource check it has
	// exactly one entry, for a collective check it carries every candidate.
	Check(
		ctx context.Context,
		principal *auth.Principal,
		resourceKind string,
		instances map[string]map[string]any,
		actions []string,
	) (*Decision, error)
}

// Compile-time interface compliance check.
var _ Gateway = (*PDPClient)(nil)

// checkRequest is the wire form of a decision request.
type checkRequest struct {
	RequestID string        `json:"requestId"`
	Principal wirePrincipal `json:"principal"`
	Resource  wireResource  `json:"resource"`
	Actions   []string      `json:"actions"`
}

type wirePrincipal struct {
	ID    string   `json:"id"`
	Roles []string `json:"roles"`
}

type wireResource struct {
	Kind      string                  `json:"kind"`
	Instances map[string]wireInstance `json:"instances"`
}

type wireInstance struct {
	Attr map[string]any `json:"attr,omitempty"`
}

// checkResponse is the wire form of the decision point's reply.
type checkResponse struct {
	RequestID         string                        `json:"requestId"`
	ResourceInstances map[string]instanceEffectsMap `json:"resourceInstances"`
}

type instanceEffectsMap struct {
	Actions map[string]Effect `json:"actions"`
}

// PDPClient is a Gateway backed by an HTTP policy decision point exposing a
// Cerbos-compatible check API.
type PDPClient struct {
	endpoint   string
	httpClient networking.HTTPClient
}

// PDPOption configures a PDPClient.
type PDPOption func(*PDPClient)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client networking.HTTPClient) PDPOption {
	return func(c *PDPClient) {
		c.httpClient = client
	}
}

// NewPDPClient creates a gateway that talks to the policy decision point at
// the given base URL.
func NewPDPClient(baseURL string, opts ...PDPOption) (*PDPClient, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("policy decision point URL is required")
	}

	c := &PDPClient{
		endpoint:   baseURL + "/api/check",
		httpClient: networking.NewHttpClientBuilder().Build(),
	}

	for _, opt := range opts {
		opt(c)
	}

	logger.Infow("policy decision point client created", "endpoint", c.endpoint)

	return c, nil
}

// Check submits one decision request and returns the verdicts.
func (c *PDPClient) Check(
	ctx context.Context,
	principal *auth.Principal,
	resourceKind string,
	instances map[string]map[string]any,
	actions []string,
) (*Decision, error) {
	// A decision request is never submitted without a principal.
	if principal == nil || principal.ID == "" {
		return nil, rolodexerrors.NewMalformedRequestError("decision request requires a principal", nil)
	}
	if resourceKind == "" {
		return nil, rolodexerrors.NewMalformedRequestError("decision request requires a resource kind", nil)
	}
	if len(instances) == 0 {
		return nil, rolodexerrors.NewMalformedRequestError("decision request requires at least one instance", nil)
	}
	if len(actions) == 0 {
		return nil, rolodexerrors.NewMalformedRequestError("decision request requires at least one action", nil)
	}

	reqBody := checkRequest{
		RequestID: uuid.NewString(),
		Principal: wirePrincipal{ID: principal.ID, Roles: principal.Roles},
		Resource: wireResource{
			Kind:      resourceKind,
			Instances: make(map[string]wireInstance, len(instances)),
		},
		Actions: actions,
	}
	for id, attr := range instances {
		reqBody.Resource.Instances[id] = wireInstance{Attr: attr}
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, rolodexerrors.NewMalformedRequestError("failed to encode decision request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, rolodexerrors.NewMalformedRequestError("failed to create decision request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, rolodexerrors.NewUpstreamError("policy decision point unreachable", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, rolodexerrors.NewUpstreamError("failed to read decision response", err)
	}

	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, rolodexerrors.NewUpstreamError(
			fmt.Sprintf("policy decision point returned status %d", resp.StatusCode), nil)
	case resp.StatusCode != http.StatusOK:
		return nil, rolodexerrors.NewMalformedRequestError(
			fmt.Sprintf("policy decision point rejected request with status %d", resp.StatusCode), nil)
	}

	var cr checkResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return nil, rolodexerrors.NewUpstreamError("failed to parse decision response", err)
	}

	decision := &Decision{verdicts: make(map[string]map[string]bool, len(cr.ResourceInstances))}
	for id, inst := range cr.ResourceInstances {
		actionsMap := make(map[string]bool, len(inst.Actions))
		for action, effect := range inst.Actions {
			actionsMap[action] = effect == EffectAllow
		}
		decision.verdicts[id] = actionsMap
	}

	logger.Debugw("decision received",
		"request_id", reqBody.RequestID,
		"resource_kind", resourceKind,
		"instances", len(instances),
		"actions", actions,
	)

	return decision, nil
}
