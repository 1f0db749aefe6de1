package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jwalitptl/optica-admin/internal/config"
	"github.com/jwalitptl/optica-admin/pkg/apiclient"
	"github.com/jwalitptl/optica-admin/pkg/collection"
	"github.com/jwalitptl/optica-admin/pkg/logger"
)

// app carries what every console command needs.
type app struct {
	cfg    *config.ConsoleConfig
	log    *logger.Logger
	client *apiclient.Client
	cache  *collection.Cache
	out    io.Writer
}

// setup loads the config, builds the API client and signs in. It is a
// no-op when the client has already been provided.
func (a *app) setup(ctx context.Context, configPath string) error {
	if a.client != nil {
		return nil
	}

	cfg, err := config.LoadConsole(configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = logger.NewLogger(&cfg.Log).With("console")
	a.cache = collection.NewCache(cfg.CacheTTL, 0)
	a.client = apiclient.New(apiclient.Config{
		BaseURL: cfg.APIURL,
		Token:   cfg.Token,
		Timeout: cfg.Timeout,
	}, apiclient.WithLogger(a.log.Zerolog()))

	if cfg.Token != "" {
		return nil
	}
	if cfg.Email == "" || cfg.Password == "" {
		return fmt.Errorf("either token or email and password must be configured")
	}
	if _, err := a.client.Login(ctx, cfg.Email, cfg.Password); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	return nil
}

func (a *app) perPage() int {
	if a.cfg != nil && a.cfg.PerPage > 0 {
		return a.cfg.PerPage
	}
	return collection.DefaultPerPage
}

func newRootCmd(a *app) *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "optica",
		Short:         "Operator console for the optica admin API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if a.out == nil {
				a.out = cmd.OutOrStdout()
			}
			return a.setup(cmd.Context(), configPath)
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to console.yml")

	root.AddCommand(
		newListCmd(a),
		newDeleteCmd(a),
		newBrandsCmd(a),
		newPatientsCmd(a),
		newDiscountsCmd(a),
		newDocumentsCmd(a),
		newWatchCmd(a),
	)
	return root
}

func main() {
	if err := newRootCmd(&app{}).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
