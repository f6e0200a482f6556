package app

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/authfold/rolodex/pkg/api"
	"github.com/authfold/rolodex/pkg/authz"
	"github.com/authfold/rolodex/pkg/config"
	"github.com/authfold/rolodex/pkg/idp"
	"github.com/authfold/rolodex/pkg/logger"
	"github.com/authfold/rolodex/pkg/session"
	"github.com/authfold/rolodex/pkg/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the rolodex HTTP server",
	RunE:  serveCmdFunc,
}

func serveCmdFunc(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger.Initialize()
	logger.Infow("configuration loaded",
		"port", cfg.Port,
		"idp_url", cfg.IdPURL,
		"pdp_url", cfg.PDPURL,
	)

	idpClient, err := idp.NewClient(&idp.Config{
		BaseURL:      cfg.IdPURL,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
	})
	if err != nil {
		return err
	}

	gateway, err := authz.NewPDPClient(cfg.PDPURL)
	if err != nil {
		return err
	}

	sessions := session.NewManager(cfg.SessionTTL)
	defer sessions.Stop()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return api.Serve(ctx, cfg.Port, api.Deps{
		Sessions: sessions,
		Store:    store.NewInMemoryStore(store.SeedContacts()...),
		IdP:      idpClient,
		Gateway:  gateway,
		ClientID: cfg.ClientID,
	})
}
