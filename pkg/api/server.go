// Package api assembles the HTTP server for rolodex.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	v1 "github.com/authfold/rolodex/pkg/api/v1"
	"github.com/authfold/rolodex/pkg/auth"
	"github.com/authfold/rolodex/pkg/authz"
	"github.com/authfold/rolodex/pkg/idp"
	"github.com/authfold/rolodex/pkg/logger"
	"github.com/authfold/rolodex/pkg/session"
	"github.com/authfold/rolodex/pkg/store"
)

// Not sure if these values need to be configurable.
const (
	middlewareTimeout = 60 * time.Second
	readHeaderTimeout = 10 * time.Second
)

// Deps are the collaborators the server hands to its routes.
type Deps struct {
	Sessions *session.Manager
	Store    store.ContactStore
	IdP      idp.Client
	Gateway  authz.Gateway
	ClientID string
}

// NewRouter builds the full route tree. Split out from Serve so tests can
// drive it with httptest.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.Timeout(middlewareTimeout),
	)

	web := v1.NewWebRoutes(deps.Sessions, deps.IdP, deps.ClientID)
	r.Get("/", web.Landing)
	r.Get("/logout", web.Logout)
	r.Get("/auth/callback", web.Callback)

	var resolver auth.PrincipalResolver = deps.Sessions
	r.Mount("/contacts", v1.ContactRouter(deps.Store, deps.Gateway, resolver))

	return r
}

// Serve starts the server on the given port and serves until ctx is done.
// It is assumed that the caller sets up appropriate signal handling.
func Serve(ctx context.Context, port int, deps Deps) error {
	address := fmt.Sprintf(":%d", port)

	srv := &http.Server{
		BaseContext:       func(net.Listener) context.Context { return ctx },
		Addr:              address,
		Handler:           NewRouter(deps),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", address, err)
	}

	logger.Infof("starting HTTP server on %s", address)

	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server stopped with error: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	logger.Info("HTTP server stopped")
	return nil
}
