// Package v1 contains the HTTP handlers for the rolodex API.
package v1

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/authfold/rolodex/pkg/auth"
	"github.com/authfold/rolodex/pkg/authz"
	"github.com/authfold/rolodex/pkg/logger"
	"github.com/authfold/rolodex/pkg/store"
)

// resourceKindContact is the resource kind submitted to the policy decision
// point for contact records.
const resourceKindContact = "contact"

// placeholderNewID is the instance id used for create checks, standing in
// for the not-yet-created resource.
const placeholderNewID = "new"

// Actions checked against the policy decision point.
const (
	actionRead   = "read"
	actionCreate = "create"
	actionUpdate = "update"
	actionDelete = "delete"
	actionList   = "list"
)

// ContactRoutes defines the routes for the contact API. Every handler runs
// the same gate sequence: authentication (via middleware), existence where a
// specific resource is addressed, then authorization.
type ContactRoutes struct {
	store   store.ContactStore
	gateway authz.Gateway
}

// ContactRouter creates a new router for the contact API. All routes require
// an authenticated session.
func ContactRouter(
	contactStore store.ContactStore,
	gateway authz.Gateway,
	sessions auth.PrincipalResolver,
) http.Handler {
	routes := ContactRoutes{
		store:   contactStore,
		gateway: gateway,
	}

	r := chi.NewRouter()
	r.Use(auth.RequireSession(sessions))
	r.Get("/", routes.listContacts)
	r.Post("/new", routes.createContact)
	r.Get("/{id}", routes.getContact)
	r.Patch("/{id}", routes.updateContact)
	r.Delete("/{id}", routes.deleteContact)
	return r
}

// getContact returns a single contact if the policy decision point grants
// the read action on it.
func (c *ContactRoutes) getContact(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())
	id := chi.URLParam(r, "id")

	contact, ok := c.store.FindByID(id)
	if !ok {
		writeError(w, http.StatusNotFound, "contact not found")
		return
	}

	decision, err := c.gateway.Check(r.Context(), principal, resourceKindContact,
		map[string]map[string]any{contact.ID: contact.Attributes()},
		[]string{actionRead})
	if err != nil {
		c.denyOnGatewayError(w, err, actionRead, id)
		return
	}

	if !decision.IsAuthorized(contact.ID, actionRead) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	writeJSON(w, http.StatusOK, contact)
}

// createContact authorizes the create action against the placeholder
// instance and confirms. Persistence is stubbed.
func (c *ContactRoutes) createContact(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())

	decision, err := c.gateway.Check(r.Context(), principal, resourceKindContact,
		map[string]map[string]any{placeholderNewID: {}},
		[]string{actionCreate})
	if err != nil {
		c.denyOnGatewayError(w, err, actionCreate, placeholderNewID)
		return
	}

	if !decision.IsAuthorized(placeholderNewID, actionCreate) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"result": "Created contact"})
}

// updateContact authorizes the update action on an existing contact and
// confirms. Mutation is stubbed.
func (c *ContactRoutes) updateContact(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())
	id := chi.URLParam(r, "id")

	contact, ok := c.store.FindByID(id)
	if !ok {
		writeError(w, http.StatusNotFound, "contact not found")
		return
	}

	decision, err := c.gateway.Check(r.Context(), principal, resourceKindContact,
		map[string]map[string]any{contact.ID: contact.Attributes()},
		[]string{actionUpdate})
	if err != nil {
		c.denyOnGatewayError(w, err, actionUpdate, id)
		return
	}

	if !decision.IsAuthorized(contact.ID, actionUpdate) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"result": fmt.Sprintf("Updated contact %s", id)})
}

// deleteContact authorizes the delete action on an existing contact and
// confirms. Deletion is stubbed.
func (c *ContactRoutes) deleteContact(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())
	id := chi.URLParam(r, "id")

	contact, ok := c.store.FindByID(id)
	if !ok {
		writeError(w, http.StatusNotFound, "contact not found")
		return
	}

	decision, err := c.gateway.Check(r.Context(), principal, resourceKindContact,
		map[string]map[string]any{contact.ID: contact.Attributes()},
		[]string{actionDelete})
	if err != nil {
		c.denyOnGatewayError(w, err, actionDelete, id)
		return
	}

	if !decision.IsAuthorized(contact.ID, actionDelete) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"result": fmt.Sprintf("Contact %s deleted", id)})
}

// listContacts submits the entire collection as one collective decision
// request and returns the granted subsequence in store order. Items with a
// denied or absent verdict are silently omitted.
func (c *ContactRoutes) listContacts(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())

	contacts := c.store.FindAll()
	if len(contacts) == 0 {
		writeJSON(w, http.StatusOK, []*store.Contact{})
		return
	}

	instances := make(map[string]map[string]any, len(contacts))
	for _, contact := range contacts {
		instances[contact.ID] = contact.Attributes()
	}

	decision, err := c.gateway.Check(r.Context(), principal, resourceKindContact,
		instances, []string{actionList})
	if err != nil {
		c.denyOnGatewayError(w, err, actionList, "")
		return
	}

	granted := make([]*store.Contact, 0, len(contacts))
	for _, contact := range contacts {
		if decision.IsAuthorized(contact.ID, actionList) {
			granted = append(granted, contact)
		}
	}

	writeJSON(w, http.StatusOK, granted)
}

// denyOnGatewayError maps a failed gateway call to a terminal 502 with a
// generic body. The verdict could not be obtained, so the request is denied.
func (*ContactRoutes) denyOnGatewayError(w http.ResponseWriter, err error, action, id string) {
	logger.Errorw("authorization check failed",
		"action", action,
		"contact_id", id,
		"error", err,
	)
	writeError(w, http.StatusBadGateway, "authorization check failed")
}
