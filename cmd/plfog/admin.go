package main

import (
	"context"
	"fmt"
	"os"

	"github.com/plfog/backoffice/internal/application/admin"
	appidentity "github.com/plfog/backoffice/internal/application/identity"
	"github.com/plfog/backoffice/internal/bootstrap"
	"github.com/plfog/backoffice/internal/infrastructure/persistence"
	"github.com/plfog/backoffice/internal/infrastructure/seed"
	"github.com/spf13/cobra"
)

func newSeedDataCommand(opts *options) *cobra.Command {
	var (
		flush bool
		file  string
	)
	cmd := &cobra.Command{
		Use:   "seed-data",
		Short: "Load demo data for every model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ds, err := dataset(file)
			if err != nil {
				return err
			}
			return opts.run(cmd, true, func(ctx context.Context, a *bootstrap.App) error {
				s := seed.NewSeeder(a.DB.DB, a.Files, cmd.OutOrStdout(), a.Logger)
				return s.Run(ctx, ds, flush)
			})
		},
	}
	cmd.Flags().BoolVar(&flush, "flush", false, "delete existing data (superusers are kept) before seeding")
	cmd.Flags().StringVar(&file, "file", "", "YAML dataset to load instead of the built-in demo data")
	return cmd
}

func dataset(file string) (*seed.Dataset, error) {
	if file == "" {
		return seed.Demo()
	}
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return seed.ParseDataset(f)
}

func newSetupRolesCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "setup-roles",
		Short: "Create permission groups and assign permissions for all roles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd, true, func(ctx context.Context, a *bootstrap.App) error {
				// the catalogue covers every model, including those the admin hides
				catalogue := admin.NewRegistry(a.DB.DB, admin.WithExcludedGroups(), admin.WithHidden())
				if _, _, err := catalogue.RegisterAll(persistence.AllModels()); err != nil {
					return err
				}
				created, err := a.Services.Roles.SyncPermissions(ctx, catalogue.PermissionModels())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if created > 0 {
					fmt.Fprintf(out, "Created %d permissions\n", created)
				}

				results, err := a.Services.Roles.SetupRoles(ctx)
				for _, r := range results {
					fmt.Fprintln(out, r.Message())
				}
				return err
			})
		},
	}
}

func newCreateUserCommand(opts *options) *cobra.Command {
	var in appidentity.CreateUserInput
	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a login account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd, true, func(ctx context.Context, a *bootstrap.App) error {
				user, err := a.Services.Users.Create(ctx, in)
				if err != nil {
					return err
				}
				kind := "user"
				if user.IsSuperuser {
					kind = "superuser"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created %s '%s'\n", kind, user.Username)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&in.Username, "username", "", "login name")
	cmd.Flags().StringVar(&in.Email, "email", "", "email address")
	cmd.Flags().StringVar(&in.Password, "password", "", "initial password")
	cmd.Flags().StringVar(&in.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&in.LastName, "last-name", "", "last name")
	cmd.Flags().BoolVar(&in.Superuser, "superuser", false, "grant every permission")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
