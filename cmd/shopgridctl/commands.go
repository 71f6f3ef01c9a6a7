package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tair/shopgrid/internal/app"
	"github.com/tair/shopgrid/internal/user/domain"
	"github.com/tair/shopgrid/internal/user/usecase/command"
	"github.com/tair/shopgrid/pkg/config"
)

const commandTimeout = 30 * time.Second

// openStores is swapped in tests
var openStores = app.OpenStores

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "shopgridctl",
		Short:         "Administrative tasks for the ShopGrid catalog",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")

	load := func() (*config.Config, error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		// the CLI never serves traffic
		cfg.RateLimit.Enabled = false
		cfg.Cache.Driver = config.CacheMemory
		return cfg, nil
	}

	root.AddCommand(newMigrateCmd(load), newPromoteAdminCmd(load))
	return root
}

func newMigrateCmd(load func() (*config.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create tables or indexes for the configured store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
			defer cancel()

			stores, err := openStores(ctx, cfg)
			if err != nil {
				return err
			}
			defer stores.Close(context.Background())

			if err := stores.Migrate(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Migrated %s store\n", cfg.Store.Driver)
			return nil
		},
	}
}

func newPromoteAdminCmd(load func() (*config.Config, error)) *cobra.Command {
	var (
		email string
		role  string
	)

	cmd := &cobra.Command{
		Use:   "promote-admin",
		Short: "Grant the admin role to the account with the given email",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
			defer cancel()

			stores, err := openStores(ctx, cfg)
			if err != nil {
				return err
			}
			defer stores.Close(context.Background())

			user, err := command.NewChangeRoleHandler(stores.Users).Handle(ctx, command.ChangeRoleCommand{
				Email: email,
				Role:  role,
			})
			if errors.Is(err, domain.ErrUserNotFound) {
				return fmt.Errorf("user with email %s not found", email)
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "User %s promoted to %s successfully.\n", user.Email, user.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email of the account to promote")
	cmd.Flags().StringVar(&role, "role", domain.RoleAdmin, "role to grant")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
