package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jwalitptl/optica-admin/internal/model"
	"github.com/jwalitptl/optica-admin/internal/repository/postgres"
	authservice "github.com/jwalitptl/optica-admin/internal/service/auth"
	"github.com/jwalitptl/optica-admin/pkg/auth"
	"github.com/jwalitptl/optica-admin/pkg/security"
)

func newMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, log, db, err := bootstrap(*configPath)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := postgres.Migrate(cmd.Context(), db); err != nil {
				return err
			}
			log.Info("Schema is up to date")
			return nil
		},
	}
}

func newCreateUserCmd(configPath *string) *cobra.Command {
	var email, name, password, role string

	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create an operator account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, db, err := bootstrap(*configPath)
			if err != nil {
				return err
			}
			defer db.Close()

			users := postgres.NewUserRepository(postgres.NewBaseRepository(db))
			svc := authservice.NewService(users, security.NewBcryptHasher(0), auth.NewJWTManager(cfg.JWT), log.Zerolog())

			user, err := svc.Register(cmd.Context(), email, name, password, role)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s user %s (id %d)\n", user.Role, user.Email, user.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "login e-mail")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&password, "password", "", "password (at least 8 characters)")
	cmd.Flags().StringVar(&role, "role", model.UserRoleAdmin, "admin or clinician")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
